package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/hcs1"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/inscriber"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/mirror"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/nft"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// minimumOperatorBalance is 1 HBAR in tinybars.
const minimumOperatorBalance = 100_000_000

type demoOptions struct {
	Network         string
	AssetsDir       string
	DescriptorsPath string
	KeyFile         string
	KeyType         string
	AwaitRecords    bool
}

type balanceReader interface {
	GetAccountBalance(ctx context.Context, accountID string) (int64, error)
}

type keyTypeReader interface {
	GetAccountKeyType(ctx context.Context, accountID string) (string, error)
}

// demo is everything runDemo needs, already wired.
type demo struct {
	Network     string
	OperatorID  string
	PublicKey   string
	Accounts    balanceReader
	Client      *nft.Client
	Descriptors nft.DescriptorSet
}

func setupDemo(ctx context.Context, options demoOptions, logger *zap.Logger) (demo, func(), error) {
	tokenKeyType, err := parseKeyType(options.KeyType)
	if err != nil {
		return demo{}, nil, err
	}
	if strings.TrimSpace(options.Network) != "" {
		normalized, err := shared.NormalizeNetwork(options.Network)
		if err != nil {
			return demo{}, nil, err
		}
		if err := os.Setenv("HEDERA_NETWORK", normalized); err != nil {
			return demo{}, nil, fmt.Errorf("failed to select network: %w", err)
		}
	}

	operator, err := shared.OperatorConfigFromEnv()
	if err != nil {
		return demo{}, nil, err
	}

	descriptors := nft.DefaultDescriptors()
	if strings.TrimSpace(options.DescriptorsPath) != "" {
		descriptors, err = nft.LoadDescriptors(options.DescriptorsPath)
		if err != nil {
			return demo{}, nil, err
		}
	}

	tokenKey, err := shared.LoadOrCreateKey(shared.KeyStoreOptions{EnvFile: options.KeyFile, KeyType: tokenKeyType})
	if err != nil {
		return demo{}, nil, err
	}
	if tokenKey.Created {
		logger.Info("generated token key", zap.String("file", tokenKey.Path))
	}

	mirrorClient, err := mirror.NewClient(mirror.Config{Network: operator.Network})
	if err != nil {
		return demo{}, nil, err
	}
	operator.KeyType = resolveOperatorKeyType(ctx, mirrorClient, operator.AccountID, logger)

	hederaClient, operatorID, _, err := shared.NewOperatorClient(operator)
	if err != nil {
		return demo{}, nil, err
	}
	closeClient := func() {
		if err := hederaClient.Close(); err != nil {
			logger.Debug("failed to close hedera client", zap.Error(err))
		}
	}

	resolver, err := hcs1.NewResolver(mirrorClient, logger)
	if err != nil {
		closeClient()
		return demo{}, nil, err
	}

	confirmation := nft.ConfirmationReceipt
	if options.AwaitRecords {
		confirmation = nft.ConfirmationRecord
	}
	ledger, err := nft.NewHederaLedger(nft.HederaLedgerConfig{
		Client:       hederaClient,
		TokenKey:     &tokenKey.PrivateKey,
		Mirror:       mirrorClient,
		Resolver:     resolver,
		Confirmation: confirmation,
		Logger:       logger,
	})
	if err != nil {
		closeClient()
		return demo{}, nil, err
	}

	storage, err := nft.NewInscriberStorage(nft.InscriberStorageConfig{
		Network:            operator.Network,
		OperatorAccountID:  operatorID.String(),
		OperatorPrivateKey: operator.PrivateKey,
		ConnectionMode:     inscriber.ConnectionModeAuto,
		Logger:             logger,
	})
	if err != nil {
		closeClient()
		return demo{}, nil, err
	}

	client, err := nft.NewClient(nft.ClientConfig{
		Storage:   storage,
		Ledger:    ledger,
		AssetDirs: assetDirs(options.AssetsDir),
		Logger:    logger,
	})
	if err != nil {
		closeClient()
		return demo{}, nil, err
	}

	return demo{
		Network:     operator.Network,
		OperatorID:  operatorID.String(),
		PublicKey:   tokenKey.PublicKey.String(),
		Accounts:    mirrorClient,
		Client:      client,
		Descriptors: descriptors,
	}, closeClient, nil
}

// runDemo mints the create descriptor's NFT and updates it to the update
// descriptor, printing progress to out.
func runDemo(ctx context.Context, out io.Writer, d demo) error {
	fmt.Fprintf(out, "PublicKey: %s\n", d.PublicKey)

	balance, err := d.Accounts.GetAccountBalance(ctx, d.OperatorID)
	if err != nil {
		return fmt.Errorf("failed to read operator balance: %w", err)
	}
	fmt.Fprintf(out, "Operator: %s  balance: %s ℏ\n", d.OperatorID, inscriber.FormatTinybarToHBAR(balance))
	fmt.Fprintf(out, "Account: %s\n", shared.ExplorerAccountURL(d.Network, d.OperatorID))
	if balance < minimumOperatorBalance {
		fmt.Fprintf(out, "warning: operator balance is below %s ℏ, transactions may fail\n",
			decimal.New(minimumOperatorBalance, -8).String())
	}

	created, err := d.Client.UploadMetadata(ctx, d.Descriptors.Create)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "metadata uri: %s\n", created.MetadataURI)

	minted, err := d.Client.CreateNft(ctx, created.MetadataURI, d.Descriptors.Create)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Token Mint: %s\n", nftURL(d.Network, minted))
	fmt.Fprintf(out, "Token: %s  royalty: %s\n",
		shared.ExplorerTokenURL(d.Network, minted.ID.TokenID.String()), d.Descriptors.Create.RoyaltyPercent())
	printConsensus(out, minted.ConsensusTimestamp)

	updated, err := d.Client.UploadMetadata(ctx, d.Descriptors.Update)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "metadata uri: %s\n", updated.MetadataURI)

	result, err := d.Client.UpdateNftURI(ctx, updated.MetadataURI, minted.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Token Mint: %s\n", nftURL(d.Network, minted))
	printConsensus(out, result.ConsensusTimestamp)
	fmt.Fprintf(out, "Transaction: %s\n", shared.ExplorerTransactionURL(d.Network, result.TransactionID))
	fmt.Fprintln(out, "Finished successfully")
	return nil
}

// printConsensus is a no-op for receipt confirmations, which carry no
// consensus timestamp.
func printConsensus(out io.Writer, timestamp time.Time) {
	if timestamp.IsZero() {
		return
	}
	fmt.Fprintf(out, "Consensus: %s\n", timestamp.UTC().Format(time.RFC3339))
}

// resolveOperatorKeyType asks the mirror node for the operator's key type so
// raw hex ECDSA keys are not parsed as ED25519. Lookup failures leave the
// type empty.
func resolveOperatorKeyType(ctx context.Context, accounts keyTypeReader, accountID string, logger *zap.Logger) string {
	keyType, err := accounts.GetAccountKeyType(ctx, accountID)
	if err != nil {
		logger.Debug("failed to resolve operator key type", zap.String("account", accountID), zap.Error(err))
		return ""
	}
	return keyType
}

func parseKeyType(value string) (shared.KeyType, error) {
	switch keyType := shared.KeyType(strings.ToLower(strings.TrimSpace(value))); keyType {
	case "", shared.KeyTypeEd25519:
		return shared.KeyTypeEd25519, nil
	case shared.KeyTypeECDSA:
		return keyType, nil
	default:
		return "", fmt.Errorf("unsupported key type %q, expected ed25519 or ecdsa", value)
	}
}

func nftURL(network string, minted nft.Nft) string {
	return shared.ExplorerNftURL(network, minted.ID.TokenID.String(), minted.ID.SerialNumber)
}

// assetDirs returns the directories searched for images: the flag value
// alone when set, otherwise ./assets and the assets directory shipped with
// this command.
func assetDirs(flagValue string) []string {
	if strings.TrimSpace(flagValue) != "" {
		return []string{flagValue}
	}
	dirs := []string{"assets"}
	if _, source, _, ok := runtime.Caller(0); ok {
		dirs = append(dirs, filepath.Join(filepath.Dir(source), "assets"))
	}
	return dirs
}
