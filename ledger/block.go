package ledger

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.dedis.ch/kyber/v4/suites"
)

// The Ed25519 suite hashes with SHA-256.
var suite suites.Suite = suites.MustFind("Ed25519")

// GenesisPrevHash is the sentinel previous hash carried by the first block.
const GenesisPrevHash = "0"

// Transaction is a transfer recorded in a block. It has no identity beyond
// its field values.
type Transaction struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   uint64 `json:"amount"`
}

// Block groups an ordered list of transactions under a proof-of-work hash
// linked to the previous block.
type Block struct {
	Hash         string        `json:"hash"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    int64         `json:"time_stamp"`
	PrevHash     string        `json:"prev_hash"`
	Nonce        uint64        `json:"nonce"`
}

// NewBlock builds an unmined block stamped with the current time of now.
func NewBlock(transactions []Transaction, prevHash string, now func() time.Time) Block {
	b := Block{
		Transactions: copyTransactions(transactions),
		Timestamp:    now().Unix(),
		PrevHash:     prevHash,
		Nonce:        0,
	}
	b.Hash = b.calculateHash()
	return b
}

// Digest returns the lowercase hex SHA-256 of the canonical encoding of the
// four hashed fields. The encoding is part of the snapshot format and must
// not change: decimal timestamp, structural transaction list, previous hash,
// decimal nonce, with no separators.
func Digest(timestamp int64, transactions []Transaction, prevHash string, nonce uint64) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(timestamp, 10))
	writeTransactions(&sb, transactions)
	sb.WriteString(prevHash)
	sb.WriteString(strconv.FormatUint(nonce, 10))

	h := suite.Hash()
	h.Write([]byte(sb.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// Mine searches nonces until the hash starts with difficulty zero digits.
// There is no cancellation: the expected work is about 16^difficulty hashes.
func (b *Block) Mine(difficulty uint) {
	for !MeetsDifficulty(b.Hash, difficulty) {
		b.Nonce++
		b.Hash = b.calculateHash()
	}
}

// Verify reports whether the stored hash matches the block contents.
func (b Block) Verify() bool {
	return b.Hash == b.calculateHash()
}

// MeetsDifficulty reports whether the first difficulty characters of hash
// are all '0'.
func MeetsDifficulty(hash string, difficulty uint) bool {
	if difficulty > uint(len(hash)) {
		return false
	}
	for i := uint(0); i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

func (b Block) calculateHash() string {
	return Digest(b.Timestamp, b.Transactions, b.PrevHash, b.Nonce)
}

func (b Block) clone() Block {
	b.Transactions = copyTransactions(b.Transactions)
	return b
}

// copyTransactions never returns nil so an empty list encodes as [].
func copyTransactions(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}

// writeTransactions renders the list as
// [Transaction { sender: "A", receiver: "B", amount: 10 }, ...].
func writeTransactions(sb *strings.Builder, txs []Transaction) {
	sb.WriteByte('[')
	for i, tx := range txs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("Transaction { sender: ")
		writeQuoted(sb, tx.Sender)
		sb.WriteString(", receiver: ")
		writeQuoted(sb, tx.Receiver)
		sb.WriteString(", amount: ")
		sb.WriteString(strconv.FormatUint(tx.Amount, 10))
		sb.WriteString(" }")
	}
	sb.WriteByte(']')
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if escapedAsCodePoint(r) {
				sb.WriteString(`\u{`)
				sb.WriteString(strconv.FormatInt(int64(r), 16))
				sb.WriteByte('}')
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}

// escapedAsCodePoint reports whether r is written as \u{hex}: grapheme
// extenders, and everything that does not print on its own (controls,
// format characters, private use, line and paragraph separators, spaces
// other than U+0020 and unassigned code points).
func escapedAsCodePoint(r rune) bool {
	switch {
	case unicode.In(r, unicode.Mn, unicode.Me, unicode.Other_Grapheme_Extend):
		return true
	case r == ' ':
		return false
	case unicode.In(r, unicode.Cc, unicode.Cf, unicode.Co, unicode.Cs, unicode.Zl, unicode.Zp, unicode.Zs):
		return true
	}
	return !unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z, unicode.C)
}
