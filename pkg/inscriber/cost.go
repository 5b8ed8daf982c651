package inscriber

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/mirror"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
	"github.com/shopspring/decimal"
)

const tinybarsPerHbar = 8

// FormatTinybarToHBAR renders a tinybar amount as an exact HBAR string with
// trailing zeros removed.
func FormatTinybarToHBAR(tinybar int64) string {
	return decimal.New(tinybar, -tinybarsPerHbar).String()
}

// resolveInscriptionCostSummary reads the executed payment transaction from
// the mirror node and reports what the payer spent. It returns nil when the
// mirror node has not indexed the transaction yet.
func resolveInscriptionCostSummary(
	ctx context.Context,
	transactionID string,
	network Network,
	mirrorBaseURL string,
) (*InscriptionCostSummary, error) {
	normalizedTxID := shared.NormalizeTransactionID(transactionID)
	if normalizedTxID == "" {
		return nil, nil
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{
		Network: string(network),
		BaseURL: mirrorBaseURL,
	})
	if err != nil {
		return nil, err
	}

	transaction, err := mirrorClient.GetTransaction(ctx, normalizedTxID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, nil
	}

	payer := payerAccount(normalizedTxID)
	total := decimal.Zero
	for _, transfer := range transaction.Transfers {
		if transfer.Account == payer && transfer.Amount < 0 {
			total = decimal.NewFromInt(transfer.Amount).Abs()
			break
		}
	}
	if total.IsZero() {
		for _, transfer := range transaction.Transfers {
			if transfer.Amount > 0 {
				total = total.Add(decimal.NewFromInt(transfer.Amount))
			}
		}
	}
	if total.IsZero() && transaction.ChargedTxFee > 0 {
		total = decimal.NewFromInt(transaction.ChargedTxFee)
	}
	if !total.IsPositive() {
		return nil, nil
	}

	summary := &InscriptionCostSummary{
		TotalCostHBAR: FormatTinybarToHBAR(total.IntPart()),
	}
	for _, transfer := range transaction.Transfers {
		if transfer.Amount <= 0 {
			continue
		}
		summary.Transfers = append(summary.Transfers, QuoteTransfer{
			To:          transfer.Account,
			Amount:      FormatTinybarToHBAR(transfer.Amount),
			Description: fmt.Sprintf("HBAR transfer from %s", payer),
		})
	}
	if len(summary.Transfers) == 0 {
		summary.Transfers = []QuoteTransfer{{
			To:          "Hedera network",
			Amount:      summary.TotalCostHBAR,
			Description: fmt.Sprintf("Transaction fee debited from %s", payer),
		}}
	}

	return summary, nil
}

// payerAccount extracts the account from a mirror-form transaction ID
// (0.0.x-seconds-nanos).
func payerAccount(transactionID string) string {
	account, _, _ := strings.Cut(strings.TrimSpace(transactionID), "-")
	return account
}
