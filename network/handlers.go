package network

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

// maxBodyBytes caps a submitted transaction batch.
const maxBodyBytes = 1 << 20

// AddBlockResponse confirms a mined block.
type AddBlockResponse struct {
	Message string `json:"message"`
	Index   int    `json:"index"`
	Hash    string `json:"hash"`
	Nonce   uint64 `json:"nonce"`
}

// ValidResponse reports the result of validating the whole chain.
type ValidResponse struct {
	Valid  bool   `json:"valid"`
	Length int    `json:"length"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleGetChain(w http.ResponseWriter, r *http.Request) {
	var body []byte
	err := s.chain.Do(func(chain *ledger.Blockchain) error {
		var err error
		body, err = json.Marshal(chain)
		return err
	})
	if err != nil {
		s.logger.Error("failed to encode chain", "error", err)
		http.Error(w, "Failed to encode chain", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("failed to write chain", "error", err)
	}
}

func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		http.Error(w, "Expected request with `Content-Type: application/json`", http.StatusUnsupportedMediaType)
		return
	}
	txs, err := decodeTransactions(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Debug("rejected transaction batch", "error", err)
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	var (
		block ledger.Block
		index int
	)
	start := time.Now()
	s.chain.Use(func(chain *ledger.Blockchain) {
		block = chain.Append(txs)
		index = chain.Len() - 1
	})
	s.logger.Info("block mined",
		"index", index,
		"hash", block.Hash,
		"nonce", block.Nonce,
		"transactions", len(block.Transactions),
		"elapsed", time.Since(start).String(),
	)

	s.writeJSON(w, http.StatusOK, AddBlockResponse{
		Message: "Block added successfully",
		Index:   index,
		Hash:    block.Hash,
		Nonce:   block.Nonce,
	})
}

func (s *Server) handleValid(w http.ResponseWriter, r *http.Request) {
	var resp ValidResponse
	s.chain.Use(func(chain *ledger.Blockchain) {
		resp.Length = chain.Len()
		if err := chain.Verify(); err != nil {
			resp.Error = err.Error()
			return
		}
		resp.Valid = true
	})
	if !resp.Valid {
		s.logger.Warn("chain failed validation", "error", resp.Error)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// decodeTransactions reads exactly one JSON array of transactions from r.
func decodeTransactions(r io.Reader) ([]ledger.Transaction, error) {
	dec := json.NewDecoder(r)
	// A pointer tells a JSON null apart from an empty list.
	var txs *[]ledger.Transaction
	if err := dec.Decode(&txs); err != nil {
		return nil, err
	}
	if txs == nil {
		return nil, errors.New("expected an array of transactions")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the transaction array")
	}
	return *txs, nil
}

// isJSONContentType accepts application/json and application/*+json.
func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
