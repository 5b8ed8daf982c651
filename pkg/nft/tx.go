package nft

import (
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const basisPointsDenominator = 10000

// TokenCreateParams configures a single-serial NFT collection.
type TokenCreateParams struct {
	Name               string
	Symbol             string
	Memo               string
	Treasury           hedera.AccountID
	AdminKey           hedera.Key
	SupplyKey          hedera.Key
	MetadataKey        hedera.Key
	RoyaltyBasisPoints int
	FeeCollector       hedera.AccountID
}

// BuildCreateTokenTx builds the token create transaction for a
// non-fungible token with a finite supply of one. A royalty fee of
// RoyaltyBasisPoints/10000 is attached when the basis points are positive.
func BuildCreateTokenTx(params TokenCreateParams) (*hedera.TokenCreateTransaction, error) {
	name := strings.TrimSpace(params.Name)
	symbol := strings.TrimSpace(params.Symbol)
	if name == "" {
		return nil, fmt.Errorf("token name is required")
	}
	if symbol == "" {
		return nil, fmt.Errorf("token symbol is required")
	}
	if params.SupplyKey == nil {
		return nil, fmt.Errorf("supply key is required")
	}
	if params.RoyaltyBasisPoints < 0 || params.RoyaltyBasisPoints > basisPointsDenominator {
		return nil, fmt.Errorf("royalty basis points must be between 0 and %d, got %d", basisPointsDenominator, params.RoyaltyBasisPoints)
	}

	transaction := hedera.NewTokenCreateTransaction().
		SetTokenName(name).
		SetTokenSymbol(symbol).
		SetTokenType(hedera.TokenTypeNonFungibleUnique).
		SetSupplyType(hedera.TokenSupplyTypeFinite).
		SetMaxSupply(1).
		SetInitialSupply(0).
		SetDecimals(0).
		SetTreasuryAccountID(params.Treasury).
		SetSupplyKey(params.SupplyKey)

	if params.AdminKey != nil {
		transaction.SetAdminKey(params.AdminKey)
	}
	if params.MetadataKey != nil {
		transaction.SetMetadataKey(params.MetadataKey)
	}
	if strings.TrimSpace(params.Memo) != "" {
		transaction.SetTokenMemo(params.Memo)
	}

	if params.RoyaltyBasisPoints > 0 {
		numerator, denominator := RoyaltyFraction(params.RoyaltyBasisPoints)
		royalty := hedera.NewCustomRoyaltyFee().
			SetNumerator(numerator).
			SetDenominator(denominator).
			SetFeeCollectorAccountID(params.FeeCollector)
		transaction.SetCustomFees([]hedera.Fee{royalty})
	}

	return transaction, nil
}

// RoyaltyFraction reduces basisPoints/10000 to lowest terms.
func RoyaltyFraction(basisPoints int) (int64, int64) {
	numerator := int64(basisPoints)
	denominator := int64(basisPointsDenominator)
	if numerator == 0 {
		return 0, 1
	}
	divisor := gcd(numerator, denominator)
	return numerator / divisor, denominator / divisor
}

func gcd(a int64, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// BuildMintTx mints one serial whose metadata is the URI.
func BuildMintTx(tokenID hedera.TokenID, uri string) (*hedera.TokenMintTransaction, error) {
	metadata, err := metadataBytes(uri)
	if err != nil {
		return nil, err
	}

	return hedera.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetMetadata(metadata), nil
}

// BuildUpdateNftsTx points an existing serial at a new metadata URI.
func BuildUpdateNftsTx(nftID hedera.NftID, uri string) (*hedera.TokenUpdateNfts, error) {
	if nftID.SerialNumber <= 0 {
		return nil, fmt.Errorf("serial number must be positive, got %d", nftID.SerialNumber)
	}
	metadata, err := metadataBytes(uri)
	if err != nil {
		return nil, err
	}

	return hedera.NewTokenUpdateNftsTransaction().
		SetTokenID(nftID.TokenID).
		SetSerialNumbers([]int64{nftID.SerialNumber}).
		SetMetadata(metadata), nil
}

func metadataBytes(uri string) ([]byte, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return nil, fmt.Errorf("metadata URI is required")
	}
	if len(trimmed) > MaxMetadataBytes {
		return nil, fmt.Errorf("metadata URI is %d bytes, the limit is %d", len(trimmed), MaxMetadataBytes)
	}
	return []byte(trimmed), nil
}
