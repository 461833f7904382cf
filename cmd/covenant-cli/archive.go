package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Klingon-tech/klingnet-covenant/config"
	"github.com/Klingon-tech/klingnet-covenant/internal/backtrace"
	"github.com/Klingon-tech/klingnet-covenant/internal/covenant"
	klog "github.com/Klingon-tech/klingnet-covenant/internal/log"
	"github.com/Klingon-tech/klingnet-covenant/internal/storage"
	"github.com/Klingon-tech/klingnet-covenant/internal/token"
	"github.com/Klingon-tech/klingnet-covenant/internal/txstore"
	"github.com/Klingon-tech/klingnet-covenant/pkg/tx"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
)

// openArchive opens the configured database. The transaction archive and
// the token metadata index live in separate namespaces of it.
func openArchive(cfg *config.Config) (*txstore.Store, storage.DB) {
	db, err := storage.Open(cfg.Store.Backend, cfg.TxStoreDir())
	if err != nil {
		fatal("open archive: %v", err)
	}
	return txstore.New(db), db
}

func configuredContract(cfg *config.Config) covenant.Contract {
	minter, guard, err := cfg.ContractScripts()
	if err != nil {
		fatal("%v (set them in the config file or with --minter/--guard)", err)
	}
	c, err := covenant.NewContract(minter, guard)
	if err != nil {
		fatal("%v", err)
	}
	return c
}

// parseOutpoint parses "txid:index".
func parseOutpoint(s string) (types.Outpoint, error) {
	txid, idx, ok := strings.Cut(s, ":")
	if !ok {
		return types.Outpoint{}, fmt.Errorf("outpoint %q: want txid:index", s)
	}
	h, err := types.HexToHash(txid)
	if err != nil {
		return types.Outpoint{}, err
	}
	n, err := strconv.ParseUint(idx, 10, 32)
	if err != nil {
		return types.Outpoint{}, fmt.Errorf("outpoint index: %w", err)
	}
	return types.Outpoint{TxID: h, Index: uint32(n)}, nil
}

// transactionsIn returns every transaction carried by a transaction or
// bundle JSON document.
func transactionsIn(data []byte) ([]*tx.Transaction, error) {
	var shape struct {
		Tx json.RawMessage `json:"tx"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, err
	}
	if shape.Tx == nil {
		var t tx.Transaction
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return []*tx.Transaction{&t}, nil
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	txs := []*tx.Transaction{b.Tx, b.PrevTx, b.Guard.Tx}
	if b.Backtrace != nil {
		txs = append(txs, b.Backtrace.PrevTx, b.Backtrace.PrevPrevTx)
	}
	out := txs[:0]
	for _, t := range txs {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func cmdImport(cfg *config.Config, args []string) {
	if len(args) == 0 {
		fatal("Usage: covenant-cli import <tx.json|bundle.json>...")
	}
	store, db := openArchive(cfg)
	defer db.Close()

	imported := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fatal("%v", err)
		}
		txs, err := transactionsIn(data)
		if err != nil {
			fatal("parse %s: %v", path, err)
		}
		ids, err := store.PutAll(txs)
		if err != nil {
			fatal("archive %s: %v", path, err)
		}
		for _, txid := range ids {
			klog.Storage.Debug().Str("txid", txid.String()).Str("file", path).Msg("Transaction archived")
		}
		imported += len(ids)
	}
	n, err := store.Count()
	if err != nil {
		fatal("count: %v", err)
	}
	fmt.Printf("Imported %d transactions (%d archived)\n", imported, n)
}

func cmdProve(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("prove", flag.ExitOnError)
	outpoint := fs.String("outpoint", "", "Token output (txid:index)")
	fs.Parse(args)

	if *outpoint == "" {
		fatal("Usage: covenant-cli prove --outpoint <txid:index>")
	}
	op, err := parseOutpoint(*outpoint)
	if err != nil {
		fatal("%v", err)
	}
	c := configuredContract(cfg)
	store, db := openArchive(cfg)
	defer db.Close()

	done := klog.Benchmark("prove")
	info, err := backtrace.NewProver(store, klog.Prover).Prove(op, c.MinterScript, c.TokenScript())
	if err != nil {
		fatal("prove %s: %v", op, err)
	}
	done()
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(string(data))
}

func cmdTrace(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	outpoint := fs.String("outpoint", "", "Token output (txid:index)")
	fs.Parse(args)

	if *outpoint == "" {
		fatal("Usage: covenant-cli trace --outpoint <txid:index>")
	}
	op, err := parseOutpoint(*outpoint)
	if err != nil {
		fatal("%v", err)
	}
	c := configuredContract(cfg)
	store, db := openArchive(cfg)
	defer db.Close()

	done := klog.Benchmark("trace")
	path, err := backtrace.NewProver(store, klog.Prover).Trace(op, c.MinterScript, c.TokenScript())
	if err != nil {
		fatal("trace %s: %v", op, err)
	}
	done()
	for i, p := range path {
		label := "transfer"
		switch i {
		case len(path) - 1:
			label = "minter"
		case len(path) - 2:
			label = "issued"
		}
		fmt.Printf("%3d  %-8s  %s\n", i, label, p)
	}
}

func cmdToken(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fatal("Usage: covenant-cli token <info|list|format|parse> [flags]")
	}
	switch args[0] {
	case "info":
		cmdTokenInfo(cfg)
	case "list":
		cmdTokenList(cfg)
	case "format":
		cmdTokenFormat(args[1:])
	case "parse":
		cmdTokenParse(args[1:])
	default:
		fatal("Unknown token command: %s", args[0])
	}
}

func cmdTokenInfo(cfg *config.Config) {
	c := configuredContract(cfg)
	_, db := openArchive(cfg)
	defer db.Close()
	store := token.NewStore(db)

	if _, err := token.ExtractAndStoreMetadata(store, c); err != nil {
		fatal("token metadata: %v", err)
	}
	id := token.ContractID(c)
	meta, err := store.Get(id)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Token ID:     %s\n", id)
	fmt.Printf("Name:         %s\n", meta.Name)
	fmt.Printf("Symbol:       %s\n", meta.Symbol)
	fmt.Printf("Decimals:     %d\n", meta.Decimals)
	fmt.Printf("Creator:      %s\n", meta.Creator)
	fmt.Printf("Token script: %s\n", c.TokenScript().Hex())
}

func cmdTokenList(cfg *config.Config) {
	_, db := openArchive(cfg)
	defer db.Close()

	entries, err := token.NewStore(db).List()
	if err != nil {
		fatal("%v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No tokens indexed.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s %s (%d decimals)\n", e.ID, e.Metadata.Symbol, e.Metadata.Name, e.Metadata.Decimals)
	}
}

func cmdTokenFormat(args []string) {
	fs := flag.NewFlagSet("token format", flag.ExitOnError)
	amount := fs.Uint64("amount", 0, "Amount in base units")
	decimals := fs.Uint("decimals", 0, "Token decimals")
	fs.Parse(args)

	if *decimals > 255 {
		fatal("decimals must be at most 255")
	}
	fmt.Println(token.FormatAmount(*amount, uint8(*decimals)))
}

func cmdTokenParse(args []string) {
	fs := flag.NewFlagSet("token parse", flag.ExitOnError)
	decimals := fs.Uint("decimals", 0, "Token decimals")
	fs.Parse(flagsFirst(args))

	if fs.NArg() != 1 || *decimals > 255 {
		fatal("Usage: covenant-cli token parse <amount> [--decimals <d>]")
	}
	units, err := token.ParseAmount(fs.Arg(0), uint8(*decimals))
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(units)
}
