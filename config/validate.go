package config

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}

	switch cfg.Store.Backend {
	case "":
		cfg.Store.Backend = StoreBadger
	case StoreBadger, StoreMemory:
	default:
		return fmt.Errorf("store.backend must be %q or %q", StoreBadger, StoreMemory)
	}

	if err := validateScript(cfg.Contract.MinterScript, "contract.minter"); err != nil {
		return err
	}
	if err := validateScript(cfg.Contract.GuardScript, "contract.guard"); err != nil {
		return err
	}
	if cfg.Contract.MinterScript != "" && cfg.Contract.MinterScript == cfg.Contract.GuardScript {
		return fmt.Errorf("contract.minter and contract.guard must differ")
	}
	return nil
}

// ContractScripts decodes the configured minter and guard scripts.
func (c *Config) ContractScripts() (minter, guard types.Script, err error) {
	if c.Contract.MinterScript == "" || c.Contract.GuardScript == "" {
		return minter, guard, fmt.Errorf("contract.minter and contract.guard are required")
	}
	minter, err = types.ParseScript(c.Contract.MinterScript)
	if err != nil {
		return minter, guard, fmt.Errorf("contract.minter: %w", err)
	}
	guard, err = types.ParseScript(c.Contract.GuardScript)
	if err != nil {
		return minter, guard, fmt.Errorf("contract.guard: %w", err)
	}
	return minter, guard, nil
}

func validateScript(s, field string) error {
	if s == "" {
		return nil
	}
	script, err := types.ParseScript(s)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if len(script.Data) > MaxScriptData {
		return fmt.Errorf("%s: script data too large: %d bytes, max %d", field, len(script.Data), MaxScriptData)
	}
	return nil
}
