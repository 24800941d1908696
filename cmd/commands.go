package main

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/luca-patrignani/pow-ledger/ledger"
	"github.com/luca-patrignani/pow-ledger/network"
	"github.com/luca-patrignani/pow-ledger/storage"
	"github.com/pterm/pterm"
)

func newClient(cfg Config) (*network.Client, error) {
	url, err := baseURL(cfg.Server, cfg.CAPath != "")
	if err != nil {
		return nil, fmt.Errorf("invalid server %q: %w", cfg.Server, err)
	}
	opts := []network.ClientOption{network.WithClientTimeout(cfg.Timeout)}
	if cfg.CAPath != "" {
		certPEM, err := os.ReadFile(cfg.CAPath)
		if err != nil {
			return nil, err
		}
		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(certPEM) {
			return nil, fmt.Errorf("no certificate found in %s", cfg.CAPath)
		}
		opts = append(opts, network.WithRootCAs(certPool))
	}
	return network.NewClient(url, opts...), nil
}

// transactions returns the batch described by the submit flags.
func transactions(cfg Config) ([]ledger.Transaction, error) {
	if cfg.TxFile != "" {
		data, err := os.ReadFile(cfg.TxFile)
		if err != nil {
			return nil, err
		}
		var txs []ledger.Transaction
		if err := json.Unmarshal(data, &txs); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.TxFile, err)
		}
		if txs == nil {
			return nil, fmt.Errorf("%s: expected an array of transactions", cfg.TxFile)
		}
		return txs, nil
	}
	if cfg.Sender == "" || cfg.Receiver == "" {
		return nil, errors.New("submit: -sender and -receiver are required unless -file is given")
	}
	return []ledger.Transaction{{Sender: cfg.Sender, Receiver: cfg.Receiver, Amount: cfg.Amount}}, nil
}

func submit(ctx context.Context, cfg Config) error {
	txs, err := transactions(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining a block with %d transactions...", len(txs)))
	resp, err := client.AddBlock(ctx, txs)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}
	spinner.Success(fmt.Sprintf("Block %d mined with nonce %d", resp.Index, resp.Nonce))
	pterm.Info.Printfln("Hash: %s", resp.Hash)
	return nil
}

func showChain(ctx context.Context, cfg Config) error {
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	chain, err := client.Chain(ctx)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("%d blocks at difficulty %d", chain.Len(), chain.Difficulty())
	return pterm.DefaultTable.WithHasHeader().WithData(chainTableData(chain.Blocks())).Render()
}

// verify restores a snapshot without a server and reports every block.
func verify(cfg Config, stdin io.Reader) (err error) {
	var (
		store  ledger.Storage
		closer io.Closer = nopCloser{}
	)
	if cfg.Store == storeFile && cfg.SnapshotPath == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		mem := storage.NewMemory()
		if err := mem.Store(data); err != nil {
			return err
		}
		store = mem
	} else {
		store, closer, err = openStore(cfg)
		if err != nil {
			return err
		}
	}
	defer closeStore(closer, &err)

	chain, err := ledger.Restore(store)
	if err != nil {
		return err
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(verifyTableData(chain)).Render(); err != nil {
		return err
	}
	if err := chain.Verify(); err != nil {
		return fmt.Errorf("chain is invalid: %w", err)
	}
	pterm.Success.Printfln("Chain of %d blocks is valid", chain.Len())
	return nil
}
