package shared

import (
	"fmt"
	"os"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// OperatorConfig identifies the account that pays for and signs every
// transaction the demo submits.
type OperatorConfig struct {
	AccountID  string
	PrivateKey string
	Network    string
	// KeyType is the account key type reported by the mirror node, such as
	// ED25519 or ECDSA_SECP256K1. Raw hex keys are ambiguous without it.
	KeyType string
}

var (
	accountIDEnvKeys  = []string{"HEDERA_ACCOUNT_ID", "HEDERA_OPERATOR_ID", "ACCOUNT_ID", "OPERATOR_ID"}
	privateKeyEnvKeys = []string{"HEDERA_PRIVATE_KEY", "HEDERA_OPERATOR_KEY", "PRIVATE_KEY", "OPERATOR_KEY"}
)

// scopedEnvKeys returns the network-prefixed variants of the given keys,
// skipping the generic fallbacks that have no prefixed form.
func scopedEnvKeys(network string, keys []string) []string {
	prefix := strings.ToUpper(network) + "_"
	scoped := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "ACCOUNT_ID" || key == "PRIVATE_KEY" {
			continue
		}
		scoped = append(scoped, prefix+key)
	}
	return scoped
}

// OperatorConfigFromEnv reads the operator account from the process
// environment, loading the nearest .env file first. Network-scoped variables
// such as TESTNET_HEDERA_ACCOUNT_ID win over the generic ones.
func OperatorConfigFromEnv() (OperatorConfig, error) {
	loadDotEnvIfPresent()

	network := firstNonEmptyEnv("HEDERA_NETWORK", "NETWORK")
	if network == "" {
		network = NetworkTestnet
	}
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return OperatorConfig{}, err
	}

	accountID := firstNonEmptyEnv(scopedEnvKeys(normalized, accountIDEnvKeys)...)
	if accountID == "" {
		accountID = firstNonEmptyEnv(accountIDEnvKeys...)
	}
	privateKey := firstNonEmptyEnv(scopedEnvKeys(normalized, privateKeyEnvKeys)...)
	if privateKey == "" {
		privateKey = firstNonEmptyEnv(privateKeyEnvKeys...)
	}

	if accountID == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_ACCOUNT_ID is required")
	}
	if privateKey == "" {
		return OperatorConfig{}, fmt.Errorf("HEDERA_PRIVATE_KEY is required")
	}

	return OperatorConfig{
		AccountID:  accountID,
		PrivateKey: privateKey,
		Network:    normalized,
	}, nil
}

func firstNonEmptyEnv(keys ...string) string {
	for _, key := range keys {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" {
			return value
		}
	}
	return ""
}

// ParsePrivateKeyForKeyType parses the key as the given account key type.
// An empty or unknown keyType falls back to ParsePrivateKey.
func ParsePrivateKeyForKeyType(raw string, keyType string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	var parse func(string) (hedera.PrivateKey, error)
	hint := strings.ToLower(strings.TrimSpace(keyType))
	switch {
	case strings.Contains(hint, "ecdsa"):
		parse = hedera.PrivateKeyFromStringECDSA
	case strings.Contains(hint, "ed25519"):
		parse = hedera.PrivateKeyFromStringEd25519
	default:
		return ParsePrivateKey(candidate)
	}

	key, err := parse(candidate)
	if err == nil {
		return key, nil
	}
	// DER keys carry their own type.
	if derKey, derErr := hedera.PrivateKeyFromString(candidate); derErr == nil {
		return derKey, nil
	}
	return hedera.PrivateKey{}, fmt.Errorf("failed to parse private key as %s: %w", keyType, err)
}

// ParsePrivateKey accepts ED25519, ECDSA and DER-encoded keys in that order.
func ParsePrivateKey(raw string) (hedera.PrivateKey, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return hedera.PrivateKey{}, fmt.Errorf("private key cannot be empty")
	}

	ed25519Key, edErr := hedera.PrivateKeyFromStringEd25519(candidate)
	if edErr == nil {
		return ed25519Key, nil
	}

	ecdsaKey, ecdsaErr := hedera.PrivateKeyFromStringECDSA(candidate)
	if ecdsaErr == nil {
		return ecdsaKey, nil
	}

	genericKey, genericErr := hedera.PrivateKeyFromString(candidate)
	if genericErr == nil {
		return genericKey, nil
	}

	return hedera.PrivateKey{}, fmt.Errorf(
		"failed to parse private key as ED25519 (%v), ECDSA (%v), or generic (%v)",
		edErr,
		ecdsaErr,
		genericErr,
	)
}
