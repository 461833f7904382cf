package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	"github.com/Klingon-tech/klingnet-covenant/internal/lineage"
	klog "github.com/Klingon-tech/klingnet-covenant/internal/log"
	"github.com/Klingon-tech/klingnet-covenant/internal/token"
	"github.com/Klingon-tech/klingnet-covenant/internal/wallet"
	"github.com/Klingon-tech/klingnet-covenant/pkg/crypto"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
)

func cmdVerify(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Dump the decoded spend to stderr")
	fs.Parse(flagsFirst(args))

	if fs.NArg() != 1 {
		fatal("Usage: covenant-cli verify <bundle.json> [--dump]")
	}
	b, err := readBundle(fs.Arg(0))
	if err != nil {
		fatal("%v", err)
	}
	if err := checkConfiguredContract(cfg, b.Contract); err != nil {
		fatal("%v", err)
	}

	logger := klog.Covenant
	if b.Tx != nil {
		logger = klog.WithTx(b.Tx.Hash().String(), b.InputIndex)
	}
	reason, err := verifyBundle(b, logger, *dump)
	if err != nil && reason == "" {
		fatal("%v", err)
	}
	fmt.Println(reason)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		os.Exit(1)
	}
}

// verifyBundle evaluates b. A rejected spend returns its reason with the
// error; an empty reason means the bundle could not be evaluated at all.
func verifyBundle(b *Bundle, logger zerolog.Logger, dump bool) (string, error) {
	spend, checker, err := b.Spend()
	if err != nil {
		return "", err
	}
	if dump {
		spew.Fdump(os.Stderr, spend)
	}
	err = covenant.NewValidator(b.Contract, logger).Validate(spend, checker)
	return covenant.Reason(err), err
}

// checkConfiguredContract rejects bundles for a contract other than the
// configured one. An unconfigured tool accepts any contract.
func checkConfiguredContract(cfg *config.Config, c covenant.Contract) error {
	if cfg.Contract.MinterScript == "" && cfg.Contract.GuardScript == "" {
		return nil
	}
	minter, guard, err := cfg.ContractScripts()
	if err != nil {
		return err
	}
	if !minter.Equal(c.MinterScript) || !guard.Equal(c.GuardScript) {
		configured := covenant.Contract{MinterScript: minter, GuardScript: guard}
		return fmt.Errorf("bundle token %s is not the configured token %s",
			token.ContractID(c), token.ContractID(configured))
	}
	return nil
}

// demoOptions shapes the sample transfer written by the demo command.
type demoOptions struct {
	Amount uint64
	// GuardAmount overrides the guard's recorded amount for the token
	// input when non-negative.
	GuardAmount int64
	// ContractInput spends by contract at this input when non-negative.
	ContractInput int64
	// Owner, when set, owns the issued coin and the bundle is left
	// unsigned for the sign command.
	Owner *types.Address
}

// buildDemo issues a coin and transfers it in full to a fresh owner.
func buildDemo(opts demoOptions) (*Bundle, *lineage.Scenario, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	owner := crypto.AddressFromPubKey(key.PublicKey())
	if opts.Owner != nil {
		owner = *opts.Owner
	}
	recipient, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}

	contract, err := lineage.NewContract(token.Metadata{Name: "Demo", Symbol: "DMO", Decimals: 2, Creator: owner}, "demo")
	if err != nil {
		return nil, nil, err
	}
	s := lineage.New(contract)
	coins, err := s.Issue(types.TokenState{Owner: owner, Amount: opts.Amount})
	if err != nil {
		return nil, nil, fmt.Errorf("issue: %w", err)
	}

	plan := lineage.TransferPlan{
		Inputs:  coins,
		Outputs: []types.TokenState{{Owner: crypto.AddressFromPubKey(recipient.PublicKey()), Amount: opts.Amount}},
	}
	if opts.GuardAmount >= 0 {
		amounts := [config.MaxTxInputs]uint64{uint64(opts.GuardAmount)}
		plan.GuardAmounts = &amounts
	}
	tr, err := s.Transfer(plan)
	if err != nil {
		return nil, nil, fmt.Errorf("transfer: %w", err)
	}

	var unlock covenant.UnlockArgs = covenant.ContractSpend{ContractInputIndex: uint32(max(opts.ContractInput, 0))}
	if opts.ContractInput < 0 && opts.Owner == nil {
		if unlock, err = tr.SignUser(0, key); err != nil {
			return nil, nil, fmt.Errorf("sign: %w", err)
		}
	}
	spend, _, err := tr.Spend(0, unlock)
	if err != nil {
		return nil, nil, err
	}
	b, err := newBundle(contract, tr, spend, 0)
	if err != nil {
		return nil, nil, err
	}
	if opts.ContractInput < 0 && opts.Owner != nil {
		b.Args = nil
	}
	return b, s, nil
}

func cmdDemo(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	out := fs.String("out", "-", "Output file")
	amount := fs.Uint64("amount", 100, "Issued and transferred amount")
	guardAmount := fs.Int64("guard-amount", -1, "Amount the guard records for the token input")
	contractInput := fs.Int64("contract-input", -1, "Spend by contract, naming this input")
	ownerStr := fs.String("owner", "", "Issue to this address and leave the spend unsigned")
	archive := fs.Bool("archive", false, "Archive the demo transactions")
	fs.Parse(args)

	opts := demoOptions{Amount: *amount, GuardAmount: *guardAmount, ContractInput: *contractInput}
	if *ownerStr != "" {
		owner, err := types.ParseAddress(*ownerStr)
		if err != nil {
			fatal("invalid owner: %v", err)
		}
		opts.Owner = &owner
	}

	b, s, err := buildDemo(opts)
	if err != nil {
		fatal("build demo: %v", err)
	}
	if *archive {
		store, db := openArchive(cfg)
		defer db.Close()
		if err := s.Archive(store); err != nil {
			fatal("archive: %v", err)
		}
		klog.CLI.Info().Int("txs", len(s.Transactions())).Msg("Demo transactions archived")
	}
	if err := writeBundle(*out, b); err != nil {
		fatal("write bundle: %v", err)
	}
	if *out != "-" {
		fmt.Fprintf(os.Stderr, "Minter script: %s\nGuard script:  %s\n", b.Contract.MinterScript.Hex(), b.Contract.GuardScript.Hex())
	}
}

func cmdCommit(args []string) {
	fs := flag.NewFlagSet("commit", flag.ExitOnError)
	ownerStr := fs.String("owner", "", "Owner address")
	amountStr := fs.String("amount", "", "Amount in base units")
	fs.Parse(args)

	if *ownerStr == "" || *amountStr == "" {
		fatal("Usage: covenant-cli commit --owner <addr> --amount <n>")
	}
	owner, err := types.ParseAddress(*ownerStr)
	if err != nil {
		fatal("invalid owner: %v", err)
	}
	amount, err := strconv.ParseUint(*amountStr, 10, 64)
	if err != nil {
		fatal("invalid amount: %v", err)
	}
	fmt.Println(covenant.TokenStateHash(types.TokenState{Owner: owner, Amount: amount}))
}

func cmdSign(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	walletName := fs.String("wallet", "", "Wallet holding the owner key")
	out := fs.String("out", "", "Output file (default: overwrite the bundle)")
	fs.Parse(flagsFirst(args))

	if fs.NArg() != 1 || *walletName == "" {
		fatal("Usage: covenant-cli sign <bundle.json> --wallet <name> [--out <file>]")
	}
	path := fs.Arg(0)
	b, err := readBundle(path)
	if err != nil {
		fatal("%v", err)
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	password, err := readPassword("Wallet password: ")
	if err != nil {
		fatal("read password: %v", err)
	}

	if err := signBundle(b, ks, *walletName, password); err != nil {
		fatal("%v", err)
	}
	if *out == "" {
		*out = path
	}
	if err := writeBundle(*out, b); err != nil {
		fatal("write bundle: %v", err)
	}
	klog.CLI.Info().Str("owner", b.PreState.Owner.String()).Uint32("input", b.InputIndex).Msg("Bundle signed")
}

// signBundle replaces b's unlock arguments with a user spend signed by the
// wallet key owning the spent token.
func signBundle(b *Bundle, ks *wallet.Keystore, name string, password []byte) error {
	key, err := ks.OwnerKey(name, password, b.PreState.Owner)
	if err != nil {
		return err
	}
	checker, err := covenant.EngineFor(b.Tx, b.Spent, b.InputIndex)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	unlock, err := key.SignSpend(checker.Digest)
	if err != nil {
		return err
	}
	raw, err := covenant.MarshalUnlockArgs(unlock)
	if err != nil {
		return err
	}
	b.Args = json.RawMessage(raw)
	return nil
}
