// covenant-cli validates token covenant spends offline and manages the
// transaction archive and owner keys used to build them.
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Klingon-tech/klingnet-covenant/config"
	klog "github.com/Klingon-tech/klingnet-covenant/internal/log"
	"github.com/Klingon-tech/klingnet-covenant/pkg/types"
	"golang.org/x/term"
)

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		usage()
		os.Exit(2)
	}
	if flags.Version {
		fmt.Printf("covenant-cli %s\n", config.Version)
		return
	}
	if flags.Help || len(flags.Args) == 0 {
		usage()
		return
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fatal("%v", err)
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}
	if cfg.Network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	cmd, args := flags.Args[0], flags.Args[1:]
	klog.CLI.Debug().Str("command", cmd).Str("network", string(cfg.Network)).Msg("Starting")

	switch cmd {
	case "verify":
		cmdVerify(cfg, args)
	case "demo":
		cmdDemo(cfg, args)
	case "commit":
		cmdCommit(args)
	case "import":
		cmdImport(cfg, args)
	case "prove":
		cmdProve(cfg, args)
	case "trace":
		cmdTrace(cfg, args)
	case "sign":
		cmdSign(cfg, args)
	case "wallet":
		cmdWallet(cfg, args)
	case "token":
		cmdToken(cfg, args)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: covenant-cli [global flags] <command> [flags]

Global flags:
  --network <net>        mainnet (default) or testnet
  --datadir <path>       Data directory (default: %s)
  --config, -c <file>    Config file
  --minter <hex>         Contract minter script
  --guard <hex>          Contract guard script
  --store <backend>      Transaction archive: badger (default) or memory
  --log-level <lvl>      trace, debug, info, warn, error
  --log-file <path>      Also write JSON logs to a file
  --log-json             JSON logs on stderr
  --version              Show version

Commands:
  verify <bundle.json> [--dump]
                         Evaluate a spend bundle; exit 1 if rejected
  demo [--out <file>] [--amount <n>] [--guard-amount <n>] [--contract-input <i>]
       [--owner <addr>] [--archive]
                         Write a sample bundle (valid unless overridden)
  commit --owner <addr> --amount <n>
                         Print the state hash of a token state
  import <tx.json|bundle.json>...
                         Archive transactions
  prove --outpoint <txid:index>
                         Build a backtrace proof from the archive
  trace --outpoint <txid:index>
                         Walk a token's lineage back to its issuance
  sign <bundle.json> --wallet <w> [--out <file>]
                         Sign a bundle's token input with an owner key

  wallet create --name <n> [--words 24]
  wallet import --name <n> --mnemonic "..."
  wallet list
  wallet new-owner --wallet <w> [--label <l>]
  wallet owners --wallet <w>

  token info             Show the configured contract's token
  token list             List indexed tokens
  token format --amount <units> [--decimals <d>]
  token parse <amount> [--decimals <d>]
`, config.DefaultDataDir())
}

// flagsFirst moves a leading positional argument behind the flags so
// "verify bundle.json --dump" parses like "verify --dump bundle.json".
func flagsFirst(args []string) []string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return args
	}
	return append(append([]string{}, args[1:]...), args[0])
}

func readPassword(prompt string) ([]byte, error) {
	if env := os.Getenv("COVENANT_PASSWORD"); env != "" {
		return []byte(env), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return password, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
