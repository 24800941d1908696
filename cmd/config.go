package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

const (
	defaultPort = 8000

	storeFile    = "file"
	storeLevelDB = "leveldb"
)

// Config holds the settings of every subcommand. Each subcommand only
// registers the flags it reads.
type Config struct {
	Addr            string
	Store           string
	SnapshotPath    string
	LevelDBPath     string
	Difficulty      uint
	RecoverCorrupt  bool
	ShutdownTimeout time.Duration
	TLS             bool
	CertPath        string
	Debug           bool

	Server  string
	CAPath  string
	Timeout time.Duration

	Sender   string
	Receiver string
	Amount   uint64
	TxFile   string
}

func DefaultConfig() Config {
	return Config{
		Addr:            fmt.Sprintf("127.0.0.1:%d", defaultPort),
		Store:           storeFile,
		SnapshotPath:    "blockchain.txt",
		LevelDBPath:     "chaindata",
		Difficulty:      ledger.DefaultDifficulty,
		ShutdownTimeout: 30 * time.Second,
		CertPath:        "ledger-cert.pem",
		Server:          fmt.Sprintf("127.0.0.1:%d", defaultPort),
	}
}

// parseFlags fills a DefaultConfig from the arguments of subcommand name.
func parseFlags(name string, args []string, output io.Writer) (Config, error) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	switch name {
	case "serve":
		fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address (host:port, port defaults to 8000)")
		fs.UintVar(&cfg.Difficulty, "difficulty", cfg.Difficulty, "leading zero hex digits required for a new chain")
		fs.BoolVar(&cfg.RecoverCorrupt, "recover-corrupt", cfg.RecoverCorrupt, "start a fresh chain when the snapshot cannot be used")
		fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "time to wait for in-flight requests on shutdown")
		fs.BoolVar(&cfg.TLS, "tls", cfg.TLS, "serve HTTPS with a self-signed certificate")
		fs.StringVar(&cfg.CertPath, "cert-out", cfg.CertPath, "where to write the PEM certificate when -tls is set")
		registerStoreFlags(fs, &cfg)
	case "verify":
		registerStoreFlags(fs, &cfg)
	case "submit":
		registerClientFlags(fs, &cfg)
		fs.StringVar(&cfg.Sender, "sender", cfg.Sender, "transaction sender")
		fs.StringVar(&cfg.Receiver, "receiver", cfg.Receiver, "transaction receiver")
		fs.Uint64Var(&cfg.Amount, "amount", cfg.Amount, "transaction amount")
		fs.StringVar(&cfg.TxFile, "file", cfg.TxFile, "JSON file holding an array of transactions")
	case "chain":
		registerClientFlags(fs, &cfg)
	default:
		return Config{}, fmt.Errorf("unknown command %q", name)
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("%s: unexpected arguments %v", name, fs.Args())
	}
	if cfg.Store != storeFile && cfg.Store != storeLevelDB {
		return Config{}, fmt.Errorf("%s: unknown store %q, expected %s or %s", name, cfg.Store, storeFile, storeLevelDB)
	}
	if cfg.Difficulty > ledger.MaxDifficulty {
		return Config{}, fmt.Errorf("%s: difficulty %d exceeds maximum %d", name, cfg.Difficulty, ledger.MaxDifficulty)
	}
	return cfg, nil
}

func registerStoreFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Store, "store", cfg.Store, "snapshot store: file or leveldb")
	fs.StringVar(&cfg.SnapshotPath, "snapshot", cfg.SnapshotPath, "snapshot file for the file store, - reads stdin in verify")
	fs.StringVar(&cfg.LevelDBPath, "leveldb", cfg.LevelDBPath, "database directory for the leveldb store")
}

func registerClientFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Server, "server", cfg.Server, "ledger server address (host:port)")
	fs.StringVar(&cfg.CAPath, "ca", cfg.CAPath, "PEM certificate to trust; switches to HTTPS")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout, 0 waits for mining indefinitely")
}
