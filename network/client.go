package network

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to a Server.
type Client struct {
	baseURL string
	client  http.Client
}

type ClientOption func(*Client)

// NewClient creates a client for the server at baseURL, for example
// "http://127.0.0.1:8000". No timeout is set by default because adding a
// block waits for mining.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// WithRootCAs trusts the certificates in certPool, for servers using
// GenerateSelfSignedCert.
func WithRootCAs(certPool *x509.CertPool) ClientOption {
	return func(c *Client) {
		c.client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: certPool, MinVersion: tls.VersionTLS12},
		}
	}
}

// Chain fetches and decodes the whole chain.
func (c *Client) Chain(ctx context.Context) (*ledger.Blockchain, error) {
	var chain ledger.Blockchain
	if err := c.do(ctx, http.MethodGet, "/chain", nil, &chain); err != nil {
		return nil, err
	}
	return &chain, nil
}

// AddBlock submits transactions and waits until the block is mined.
func (c *Client) AddBlock(ctx context.Context, txs []ledger.Transaction) (AddBlockResponse, error) {
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	body, err := json.Marshal(txs)
	if err != nil {
		return AddBlockResponse{}, err
	}
	var resp AddBlockResponse
	err = c.do(ctx, http.MethodPost, "/add_block", body, &resp)
	return resp, err
}

func (c *Client) Valid(ctx context.Context) (ValidResponse, error) {
	var resp ValidResponse
	err := c.do(ctx, http.MethodGet, "/chain/valid", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
