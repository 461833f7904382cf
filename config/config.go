// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Protocol rules: constants in protocol.go, must match across all validators
//   - Tool settings: runtime configuration, can vary per operator
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Store backends.
const (
	StoreBadger = "badger"
	StoreMemory = "memory"
)

// =============================================================================
// Tool Configuration (runtime, per-operator settings)
// =============================================================================

// Config holds runtime configuration for the covenant tools.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Contract deployment parameters the validator checks spends against.
	Contract ContractConfig

	// Transaction archive used to assemble backtrace proofs.
	Store StoreConfig

	// Logging
	Log LogConfig
}

// ContractConfig identifies one token contract instance. Both scripts are
// hex-encoded canonical script bytes and are fixed for the life of the
// contract.
type ContractConfig struct {
	MinterScript string `conf:"contract.minter"`
	GuardScript  string `conf:"contract.guard"`
}

// StoreConfig holds transaction archive settings.
type StoreConfig struct {
	Backend string `conf:"store.backend"` // badger or memory
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-covenant
//	macOS:   ~/Library/Application Support/KlingnetCovenant
//	Windows: %APPDATA%\KlingnetCovenant
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-covenant"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetCovenant")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetCovenant")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetCovenant")
	default:
		return filepath.Join(home, ".klingnet-covenant")
	}
}

// ChainDataDir returns the network-specific data directory.
func (c *Config) ChainDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// TxStoreDir returns the transaction archive directory.
func (c *Config) TxStoreDir() string {
	return filepath.Join(c.ChainDataDir(), "txstore")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.ChainDataDir(), "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "covenant.conf")
}
