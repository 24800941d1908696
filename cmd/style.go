package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/luca-patrignani/pow-ledger/ledger"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

func renderBanner() {
	_ = pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("PoW", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle(" Ledger", pterm.FgDarkGray.ToStyle()),
	).Render()
}

func chainTableData(blocks []ledger.Block) pterm.TableData {
	data := pterm.TableData{{"Index", "Time", "Transactions", "Nonce", "Hash", "Previous"}}
	for i, b := range blocks {
		data = append(data, []string{
			strconv.Itoa(i),
			time.Unix(b.Timestamp, 0).UTC().Format(time.RFC3339),
			describeTransactions(b.Transactions),
			strconv.FormatUint(b.Nonce, 10),
			shortHash(b.Hash),
			shortHash(b.PrevHash),
		})
	}
	return data
}

func verifyTableData(chain *ledger.Blockchain) pterm.TableData {
	data := pterm.TableData{{"Index", "Hash", "Status"}}
	for i, b := range chain.Blocks() {
		status := pterm.LightGreen("ok")
		if err := chain.VerifyBlock(i); err != nil {
			status = pterm.LightRed(err.Error())
		}
		data = append(data, []string{strconv.Itoa(i), shortHash(b.Hash), status})
	}
	return data
}

func describeTransactions(txs []ledger.Transaction) string {
	if len(txs) == 0 {
		return "-"
	}
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = tx.Sender + " -> " + tx.Receiver + ": " + strconv.FormatUint(tx.Amount, 10)
	}
	return strings.Join(lines, "\n")
}

func shortHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}
