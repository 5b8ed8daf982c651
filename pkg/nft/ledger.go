package nft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/mirror"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the mirror node never reports the NFT.
var ErrNotFound = errors.New("nft not found")

const (
	defaultFindAttempts = 15
	defaultFindInterval = 2 * time.Second
)

type HederaLedgerConfig struct {
	// Client must have the operator set; the operator pays for, and is
	// treasury and admin of, every token.
	Client       *hedera.Client
	TokenKey     *hedera.PrivateKey
	Mirror       *mirror.Client
	Resolver     MetadataResolver
	Confirmation Confirmation
	FindAttempts int
	FindInterval time.Duration
	Logger       *zap.Logger
}

// HederaLedger implements Ledger with the Hedera token service. Reads go
// through the mirror node.
type HederaLedger struct {
	client       *hedera.Client
	operatorID   hedera.AccountID
	operatorKey  hedera.PublicKey
	tokenKey     hedera.PrivateKey
	mirror       *mirror.Client
	resolver     MetadataResolver
	confirmation Confirmation
	findAttempts int
	findInterval time.Duration
	logger       *zap.Logger
}

func NewHederaLedger(config HederaLedgerConfig) (*HederaLedger, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("hedera client is required")
	}
	operatorID := config.Client.GetOperatorAccountID()
	if operatorID == (hedera.AccountID{}) {
		return nil, fmt.Errorf("hedera client has no operator")
	}
	if config.TokenKey == nil {
		return nil, fmt.Errorf("token key is required")
	}
	if config.Mirror == nil {
		return nil, fmt.Errorf("mirror client is required")
	}

	confirmation := config.Confirmation
	if confirmation == "" {
		confirmation = ConfirmationReceipt
	}
	if confirmation != ConfirmationReceipt && confirmation != ConfirmationRecord {
		return nil, fmt.Errorf("confirmation must be receipt or record, got %q", confirmation)
	}

	findAttempts := config.FindAttempts
	if findAttempts <= 0 {
		findAttempts = defaultFindAttempts
	}
	findInterval := config.FindInterval
	if findInterval <= 0 {
		findInterval = defaultFindInterval
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HederaLedger{
		client:       config.Client,
		operatorID:   operatorID,
		operatorKey:  config.Client.GetOperatorPublicKey(),
		tokenKey:     *config.TokenKey,
		mirror:       config.Mirror,
		resolver:     config.Resolver,
		confirmation: confirmation,
		findAttempts: findAttempts,
		findInterval: findInterval,
		logger:       logger,
	}, nil
}

// CreateNft creates a single-serial token and mints serial 1 with the URI
// as its metadata.
func (l *HederaLedger) CreateNft(ctx context.Context, request CreateRequest) (Nft, error) {
	if err := ctx.Err(); err != nil {
		return Nft{}, err
	}
	if _, err := metadataBytes(request.URI); err != nil {
		return Nft{}, err
	}

	tokenPublicKey := l.tokenKey.PublicKey()
	createTx, err := BuildCreateTokenTx(TokenCreateParams{
		Name:               request.Name,
		Symbol:             request.Symbol,
		Treasury:           l.operatorID,
		AdminKey:           l.operatorKey,
		SupplyKey:          tokenPublicKey,
		MetadataKey:        tokenPublicKey,
		RoyaltyBasisPoints: request.SellerFeeBasisPoints,
		FeeCollector:       l.operatorID,
	})
	if err != nil {
		return Nft{}, err
	}
	frozenCreate, err := createTx.FreezeWith(l.client)
	if err != nil {
		return Nft{}, fmt.Errorf("failed to freeze token create transaction: %w", err)
	}
	createResponse, err := frozenCreate.Execute(l.client)
	if err != nil {
		return Nft{}, fmt.Errorf("failed to execute token create transaction: %w", err)
	}
	createReceipt, _, err := l.confirm(createResponse, "token create")
	if err != nil {
		return Nft{}, err
	}
	if createReceipt.TokenID == nil {
		return Nft{}, fmt.Errorf("token create receipt did not include a token ID")
	}
	tokenID := *createReceipt.TokenID
	l.logger.Debug("token created",
		zap.String("tokenId", tokenID.String()),
		zap.String("transactionId", createResponse.TransactionID.String()),
	)

	if err := ctx.Err(); err != nil {
		return Nft{}, err
	}
	mintTx, err := BuildMintTx(tokenID, request.URI)
	if err != nil {
		return Nft{}, err
	}
	frozenMint, err := mintTx.FreezeWith(l.client)
	if err != nil {
		return Nft{}, fmt.Errorf("failed to freeze mint transaction: %w", err)
	}
	mintResponse, err := frozenMint.Sign(l.tokenKey).Execute(l.client)
	if err != nil {
		return Nft{}, fmt.Errorf("failed to execute mint transaction: %w", err)
	}
	mintReceipt, consensusTimestamp, err := l.confirm(mintResponse, "mint")
	if err != nil {
		return Nft{}, err
	}
	if len(mintReceipt.SerialNumbers) == 0 {
		return Nft{}, fmt.Errorf("mint receipt did not include a serial number")
	}

	nftID := hedera.NftID{TokenID: tokenID, SerialNumber: mintReceipt.SerialNumbers[0]}
	l.logger.Debug("nft minted", zap.String("nftId", nftID.String()))

	return Nft{
		ID:                   nftID,
		Name:                 request.Name,
		Symbol:               request.Symbol,
		URI:                  strings.TrimSpace(request.URI),
		SellerFeeBasisPoints: request.SellerFeeBasisPoints,
		Owner:                l.operatorID.String(),
		TransactionID:        mintResponse.TransactionID.String(),
		ConsensusTimestamp:   consensusTimestamp,
	}, nil
}

// FindByNftID reads the NFT from the mirror node, polling until the serial
// has been indexed. The metadata JSON is loaded when a resolver is set;
// failing to load it is not an error.
func (l *HederaLedger) FindByNftID(ctx context.Context, id hedera.NftID) (Nft, error) {
	tokenID := id.TokenID.String()

	var (
		record  mirror.Nft
		lastErr error
		found   bool
	)
	for attempt := 1; attempt <= l.findAttempts; attempt++ {
		current, err := l.mirror.GetNft(ctx, tokenID, id.SerialNumber)
		if err == nil {
			record = current
			found = true
			break
		}
		if !errors.Is(err, mirror.ErrNotFound) {
			return Nft{}, fmt.Errorf("failed to look up %s: %w", id.String(), err)
		}
		lastErr = err
		l.logger.Debug("nft not indexed yet", zap.String("nftId", id.String()), zap.Int("attempt", attempt))

		if attempt == l.findAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return Nft{}, ctx.Err()
		case <-time.After(l.findInterval):
		}
	}
	if !found {
		return Nft{}, fmt.Errorf("%w: %s after %d attempts: %w", ErrNotFound, id.String(), l.findAttempts, lastErr)
	}
	if record.Deleted {
		return Nft{}, fmt.Errorf("%w: %s has been burned", ErrNotFound, id.String())
	}

	metadata, err := mirror.DecodeNftMetadata(record)
	if err != nil {
		return Nft{}, err
	}

	nft := Nft{
		ID:    id,
		URI:   string(metadata),
		Owner: record.AccountID,
	}

	token, err := l.mirror.GetToken(ctx, tokenID)
	if err != nil {
		return Nft{}, fmt.Errorf("failed to look up token %s: %w", tokenID, err)
	}
	nft.Name = token.Name
	nft.Symbol = token.Symbol
	if token.CustomFees != nil && len(token.CustomFees.RoyaltyFees) > 0 {
		amount := token.CustomFees.RoyaltyFees[0].Amount
		if amount.Denominator > 0 {
			nft.SellerFeeBasisPoints = int(amount.Numerator * basisPointsDenominator / amount.Denominator)
		}
	}

	if l.resolver != nil {
		var loaded Metadata
		if err := l.resolver.ResolveJSON(ctx, nft.URI, &loaded); err != nil {
			l.logger.Debug("metadata not loaded", zap.String("uri", nft.URI), zap.Error(err))
		} else {
			nft.Metadata = &loaded
		}
	}

	return nft, nil
}

// UpdateMetadata points the serial at a new metadata URI, signed with the
// token's metadata key.
func (l *HederaLedger) UpdateMetadata(ctx context.Context, request UpdateRequest) (UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return UpdateResult{}, err
	}

	updateTx, err := BuildUpdateNftsTx(request.NftID, request.URI)
	if err != nil {
		return UpdateResult{}, err
	}
	frozen, err := updateTx.FreezeWith(l.client)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to freeze NFT update transaction: %w", err)
	}
	response, err := frozen.Sign(l.tokenKey).Execute(l.client)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to execute NFT update transaction: %w", err)
	}
	_, consensusTimestamp, err := l.confirm(response, "NFT update")
	if err != nil {
		return UpdateResult{}, err
	}

	return UpdateResult{
		NftID:              request.NftID,
		TransactionID:      response.TransactionID.String(),
		ConsensusTimestamp: consensusTimestamp,
	}, nil
}

// confirm waits for the receipt and, with ConfirmationRecord, the record.
// The timestamp is zero for receipt confirmation.
func (l *HederaLedger) confirm(response hedera.TransactionResponse, action string) (hedera.TransactionReceipt, time.Time, error) {
	receipt, err := response.GetReceipt(l.client)
	if err != nil {
		return hedera.TransactionReceipt{}, time.Time{}, fmt.Errorf("failed to get %s receipt: %w", action, err)
	}
	if receipt.Status != hedera.StatusSuccess {
		return hedera.TransactionReceipt{}, time.Time{}, fmt.Errorf("%s transaction failed with status %s", action, receipt.Status.String())
	}
	if l.confirmation != ConfirmationRecord {
		return receipt, time.Time{}, nil
	}

	record, err := response.GetRecord(l.client)
	if err != nil {
		return hedera.TransactionReceipt{}, time.Time{}, fmt.Errorf("failed to get %s record: %w", action, err)
	}
	return receipt, record.ConsensusTimestamp, nil
}
