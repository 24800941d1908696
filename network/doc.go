// Package network serves a ledger over HTTP.
//
// # Core Components
//
// GuardedChain: The single shared handle to the process's blockchain. Every
// read and every append goes through one mutex, so a mining run blocks all
// other requests until it finishes.
//
// Server: HTTP server exposing the chain (GET /chain), its validity
// (GET /chain/valid) and block submission (POST /add_block).
//
// Client: Typed client for the same endpoints.
//
// # TLS
//
// WithCertificate switches the server to HTTPS. GenerateSelfSignedCert
// creates a certificate for a listen address, and WithRootCAs lets a client
// trust it.
package network
