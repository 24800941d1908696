package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/luca-patrignani/pow-ledger/ledger"
	"github.com/luca-patrignani/pow-ledger/network"
	"github.com/luca-patrignani/pow-ledger/storage"
	"github.com/pterm/pterm"
)

// serve runs the HTTP server until ctx is cancelled, then validates and
// persists the chain.
func serve(ctx context.Context, cfg Config, logger *slog.Logger) (err error) {
	addr, err := listenAddress(cfg.Addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", cfg.Addr, err)
	}
	store, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(closer, &err)

	chain, err := loadChain(store, cfg, logger)
	if err != nil {
		return err
	}
	guarded := network.NewGuardedChain(chain)

	opts := []network.ServerOption{network.WithLogger(logger)}
	if cfg.TLS {
		cert, certPEM, err := network.GenerateSelfSignedCert(addr)
		if err != nil {
			return fmt.Errorf("generate certificate: %w", err)
		}
		if err := os.WriteFile(cfg.CertPath, certPEM, 0o644); err != nil {
			return fmt.Errorf("write certificate: %w", err)
		}
		logger.Info("wrote self-signed certificate", "path", cfg.CertPath)
		opts = append(opts, network.WithCertificate(cert))
	}
	srv := network.NewServer(guarded, opts...)

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	pterm.Info.Printfln("Listening on %s", l.Addr().String())

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(l)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "error", err)
		}
		cancel()
		serveErr = <-served
	case serveErr = <-served:
	}

	// Do waits for a mining run that outlived the shutdown timeout.
	persistErr := guarded.Do(func(chain *ledger.Blockchain) error {
		return persistChain(chain, store, logger)
	})
	if serveErr != nil {
		serveErr = fmt.Errorf("serve: %w", serveErr)
	}
	return errors.Join(serveErr, persistErr)
}

// loadChain restores the chain held by store. A missing snapshot starts a
// new chain; an unusable one is an error unless RecoverCorrupt is set.
func loadChain(store ledger.Storage, cfg Config, logger *slog.Logger) (*ledger.Blockchain, error) {
	chain, err := ledger.Restore(store)
	switch {
	case err == nil:
		logger.Info("restored chain", "blocks", chain.Len(), "difficulty", chain.Difficulty())
		if chain.Difficulty() != cfg.Difficulty {
			logger.Warn("keeping the difficulty recorded in the snapshot",
				"snapshot", chain.Difficulty(), "configured", cfg.Difficulty)
		}
		return chain, nil
	case errors.Is(err, ledger.ErrSnapshotNotFound):
		logger.Info("no snapshot found, starting a new chain", "difficulty", cfg.Difficulty)
	case cfg.RecoverCorrupt:
		logger.Warn("discarding unusable snapshot, starting a new chain", "error", err)
	default:
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return ledger.New(ledger.WithDifficulty(cfg.Difficulty))
}

// persistChain logs the validation result and writes the snapshot. An
// invalid chain is still written.
func persistChain(chain *ledger.Blockchain, store ledger.Storage, logger *slog.Logger) error {
	if err := chain.Verify(); err != nil {
		logger.Warn("chain failed validation", "error", err)
	} else {
		logger.Info("chain is valid", "blocks", chain.Len())
	}
	if err := chain.Persist(store); err != nil {
		return err
	}
	logger.Info("saved chain", "blocks", chain.Len())
	return nil
}

// closeStore closes c and joins a failure into *err, so a snapshot that
// never reached the disk is reported.
func closeStore(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil {
		*err = errors.Join(*err, fmt.Errorf("close store: %w", cerr))
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore opens the snapshot store selected by cfg.
func openStore(cfg Config) (ledger.Storage, io.Closer, error) {
	switch cfg.Store {
	case storeLevelDB:
		db, err := storage.OpenLevelDB(cfg.LevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		f, err := storage.NewFile(cfg.SnapshotPath)
		if err != nil {
			return nil, nil, err
		}
		return f, nopCloser{}, nil
	}
}
