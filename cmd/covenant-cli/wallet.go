package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-covenant/config"
	klog "github.com/Klingon-tech/klingnet-covenant/internal/log"
	"github.com/Klingon-tech/klingnet-covenant/internal/wallet"
)

const walletUsage = "Usage: covenant-cli wallet <create|import|list|new-owner|owners> [flags]"

func cmdWallet(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal(walletUsage)
	}
	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}

	switch args[0] {
	case "create":
		cmdWalletCreate(ks, args[1:])
	case "import":
		cmdWalletImport(ks, args[1:])
	case "list":
		cmdWalletList(ks)
	case "new-owner":
		cmdWalletNewOwner(ks, args[1:])
	case "owners":
		cmdWalletOwners(ks, args[1:])
	default:
		fatal("Unknown wallet command: %s\n%s", args[0], walletUsage)
	}
}

func cmdWalletCreate(ks *wallet.Keystore, args []string) {
	fs := flag.NewFlagSet("wallet create", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	words := fs.Int("words", 24, "Mnemonic length")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: covenant-cli wallet create --name <name> [--words 24]")
	}
	mnemonic, err := wallet.GenerateMnemonic(*words)
	if err != nil {
		fatal("generate mnemonic: %v", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)
	createWallet(ks, *name, mnemonic)
}

func cmdWalletImport(ks *wallet.Keystore, args []string) {
	fs := flag.NewFlagSet("wallet import", flag.ExitOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic")
	fs.Parse(args)

	if *name == "" || *mnemonic == "" {
		fatal("Usage: covenant-cli wallet import --name <name> --mnemonic \"...\"")
	}
	m := strings.Join(strings.Fields(*mnemonic), " ")
	if !wallet.ValidateMnemonic(m) {
		fatal("invalid mnemonic")
	}
	createWallet(ks, *name, m)
}

func createWallet(ks *wallet.Keystore, name, mnemonic string) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fatal("derive seed: %v", err)
	}
	if err := ks.Create(name, seed, password, wallet.DefaultKDFParams()); err != nil {
		fatal("create wallet: %v", err)
	}
	entry, _, err := ks.NewOwner(name, password, "default")
	if err != nil {
		fatal("derive owner: %v", err)
	}

	klog.Wallet.Info().Str("wallet", name).Msg("Wallet created")
	fmt.Printf("Wallet %q created\n", name)
	fmt.Printf("Owner:  %s\n", entry.Address)
}

func cmdWalletList(ks *wallet.Keystore) {
	names, err := ks.List()
	if err != nil {
		fatal("list wallets: %v", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return
	}
	for _, n := range names {
		fmt.Println(n)
	}
}

func cmdWalletNewOwner(ks *wallet.Keystore, args []string) {
	fs := flag.NewFlagSet("wallet new-owner", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	label := fs.String("label", "", "Owner label")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: covenant-cli wallet new-owner --wallet <name> [--label <label>]")
	}
	password, err := readPassword("Wallet password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	entry, _, err := ks.NewOwner(*name, password, *label)
	if err != nil {
		fatal("new owner: %v", err)
	}
	fmt.Printf("Owner %d: %s\n", entry.Index, entry.Address)
}

func cmdWalletOwners(ks *wallet.Keystore, args []string) {
	fs := flag.NewFlagSet("wallet owners", flag.ExitOnError)
	name := fs.String("wallet", "", "Wallet name")
	fs.Parse(args)

	if *name == "" {
		fatal("Usage: covenant-cli wallet owners --wallet <name>")
	}
	owners, err := ks.Owners(*name)
	if err != nil {
		fatal("%v", err)
	}
	for _, o := range owners {
		fmt.Printf("%3d  %-12s %s\n", o.Index, o.Label, o.Address)
	}
}
