package shared

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
)

// NormalizeNetwork lower-cases and validates a network name. Blank means testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkTestnet, nil
	}

	switch normalized {
	case NetworkMainnet, NetworkTestnet:
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported network %q", network)
	}
}

// NewHederaClient creates a client for the network without an operator.
func NewHederaClient(network string) (*hedera.Client, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return nil, err
	}

	if normalized == NetworkMainnet {
		return hedera.ClientForMainnet(), nil
	}
	return hedera.ClientForTestnet(), nil
}

// NewOperatorClient creates a client for the operator's network with the
// operator set as payer and default signer. Set config.KeyType for raw hex
// keys, which otherwise parse as ED25519.
func NewOperatorClient(config OperatorConfig) (*hedera.Client, hedera.AccountID, hedera.PrivateKey, error) {
	accountID, err := hedera.AccountIDFromString(strings.TrimSpace(config.AccountID))
	if err != nil {
		return nil, hedera.AccountID{}, hedera.PrivateKey{}, fmt.Errorf("invalid operator account ID: %w", err)
	}
	privateKey, err := ParsePrivateKeyForKeyType(config.PrivateKey, config.KeyType)
	if err != nil {
		return nil, hedera.AccountID{}, hedera.PrivateKey{}, err
	}

	client, err := NewHederaClient(config.Network)
	if err != nil {
		return nil, hedera.AccountID{}, hedera.PrivateKey{}, err
	}
	client.SetOperator(accountID, privateKey)

	return client, accountID, privateKey, nil
}
