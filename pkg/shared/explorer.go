package shared

import (
	"fmt"
	"strings"
)

const hashScanBaseURL = "https://hashscan.io"

// ExplorerAccountURL returns the HashScan page for an account.
func ExplorerAccountURL(network string, accountID string) string {
	return explorerURL(network, "account", strings.TrimSpace(accountID))
}

// ExplorerTokenURL returns the HashScan page for a token.
func ExplorerTokenURL(network string, tokenID string) string {
	return explorerURL(network, "token", strings.TrimSpace(tokenID))
}

// ExplorerNftURL returns the HashScan page for a single serial of a token.
func ExplorerNftURL(network string, tokenID string, serial int64) string {
	return explorerURL(network, "token", fmt.Sprintf("%s/%d", strings.TrimSpace(tokenID), serial))
}

// ExplorerTransactionURL returns the HashScan page for a transaction. Both
// 0.0.1@1700000000.5 and 0.0.1-1700000000-5 forms are accepted.
func ExplorerTransactionURL(network string, transactionID string) string {
	return explorerURL(network, "transaction", NormalizeTransactionID(transactionID))
}

// NormalizeTransactionID rewrites 0.0.x@seconds.nanos as 0.0.x-seconds-nanos,
// the form used by the mirror node and HashScan.
func NormalizeTransactionID(transactionID string) string {
	trimmed := strings.TrimSpace(transactionID)
	parts := strings.Split(trimmed, "@")
	if len(parts) != 2 {
		return trimmed
	}
	return parts[0] + "-" + strings.ReplaceAll(parts[1], ".", "-")
}

func explorerURL(network string, kind string, id string) string {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		normalized = NetworkTestnet
	}
	return fmt.Sprintf("%s/%s/%s/%s", hashScanBaseURL, normalized, kind, id)
}
