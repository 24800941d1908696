package ledger

import (
	"encoding/json"
	"errors"
)

// UnmarshalJSON requires all three fields to be present.
func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var w struct {
		Sender   *string `json:"sender"`
		Receiver *string `json:"receiver"`
		Amount   *uint64 `json:"amount"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Sender == nil:
		return errors.New("transaction: missing field sender")
	case w.Receiver == nil:
		return errors.New("transaction: missing field receiver")
	case w.Amount == nil:
		return errors.New("transaction: missing field amount")
	}
	*tx = Transaction{Sender: *w.Sender, Receiver: *w.Receiver, Amount: *w.Amount}
	return nil
}
