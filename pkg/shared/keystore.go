package shared

import (
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	DefaultTokenKeyEnv  = "NFT_TOKEN_PRIVATE_KEY"
	DefaultTokenKeyFile = ".env"
)

type KeyType string

const (
	KeyTypeEd25519 KeyType = "ed25519"
	KeyTypeECDSA   KeyType = "ecdsa"
)

type KeyStoreOptions struct {
	// EnvKey names the variable holding the key. Defaults to NFT_TOKEN_PRIVATE_KEY.
	EnvKey string
	// EnvFile is where a generated key is appended. Defaults to .env.
	EnvFile string
	// KeyType selects the curve for a generated key. Defaults to ed25519.
	KeyType KeyType
}

type KeyPair struct {
	PrivateKey hedera.PrivateKey
	PublicKey  hedera.PublicKey
	Created    bool
	Path       string
}

// LoadOrCreateKey returns the key stored under options.EnvKey, generating and
// persisting a fresh one when the variable is unset.
func LoadOrCreateKey(options KeyStoreOptions) (KeyPair, error) {
	envKey := strings.TrimSpace(options.EnvKey)
	if envKey == "" {
		envKey = DefaultTokenKeyEnv
	}
	envFile := strings.TrimSpace(options.EnvFile)
	if envFile == "" {
		envFile = DefaultTokenKeyFile
	}

	loadDotEnvIfPresent()
	loadDotEnvFile(envFile)

	if existing := strings.TrimSpace(os.Getenv(envKey)); existing != "" {
		privateKey, err := ParsePrivateKey(existing)
		if err != nil {
			return KeyPair{}, fmt.Errorf("invalid %s: %w", envKey, err)
		}
		return KeyPair{
			PrivateKey: privateKey,
			PublicKey:  privateKey.PublicKey(),
			Path:       envFile,
		}, nil
	}

	privateKey, err := GeneratePrivateKey(options.KeyType)
	if err != nil {
		return KeyPair{}, err
	}

	encoded := privateKey.StringDer()
	if err := appendDotEnv(envFile, envKey, encoded); err != nil {
		return KeyPair{}, err
	}
	if err := os.Setenv(envKey, encoded); err != nil {
		return KeyPair{}, fmt.Errorf("failed to export %s: %w", envKey, err)
	}

	return KeyPair{
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
		Created:    true,
		Path:       envFile,
	}, nil
}

// GeneratePrivateKey creates a new key of the given type. ECDSA keys are
// drawn from btcec so they are valid secp256k1 scalars.
func GeneratePrivateKey(keyType KeyType) (hedera.PrivateKey, error) {
	switch KeyType(strings.ToLower(string(keyType))) {
	case "", KeyTypeEd25519:
		privateKey, err := hedera.PrivateKeyGenerateEd25519()
		if err != nil {
			return hedera.PrivateKey{}, fmt.Errorf("failed to generate ed25519 key: %w", err)
		}
		return privateKey, nil
	case KeyTypeECDSA:
		secpKey, err := btcec.NewPrivateKey()
		if err != nil {
			return hedera.PrivateKey{}, fmt.Errorf("failed to generate secp256k1 key: %w", err)
		}
		privateKey, err := hedera.PrivateKeyFromBytesECDSA(secpKey.Serialize())
		if err != nil {
			return hedera.PrivateKey{}, fmt.Errorf("failed to load secp256k1 key: %w", err)
		}
		return privateKey, nil
	default:
		return hedera.PrivateKey{}, fmt.Errorf("unsupported key type %q", keyType)
	}
}
