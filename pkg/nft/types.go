package nft

import (
	"context"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// MetadataFormat is the HIP-412 version written into every metadata file.
const MetadataFormat = "HIP412@2.0.0"

// MaxMetadataBytes is the ledger limit for the metadata stored on a serial.
const MaxMetadataBytes = 100

// Descriptor describes the NFT to mint or the metadata to point it at.
type Descriptor struct {
	Name                 string `yaml:"name" json:"name" validate:"required,max=100"`
	Symbol               string `yaml:"symbol" json:"symbol" validate:"required,max=100"`
	Description          string `yaml:"description" json:"description"`
	SellerFeeBasisPoints int    `yaml:"sellerFeeBasisPoints" json:"sellerFeeBasisPoints" validate:"min=0,max=10000"`
	ImageFile            string `yaml:"imageFile" json:"imageFile" validate:"required"`
}

// Metadata is the HIP-412 JSON document the token's metadata URI points at.
type Metadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Type        string `json:"type"`
	Format      string `json:"format"`
}

// File is a named blob handed to Storage.
type File struct {
	Name     string
	Data     []byte
	MimeType string
}

type MetadataUpload struct {
	ImageURI    string
	MetadataURI string
	Metadata    Metadata
}

type CreateRequest struct {
	URI                  string
	Name                 string
	Symbol               string
	SellerFeeBasisPoints int
}

// Nft is a minted serial as seen by the ledger. Metadata is set only when
// the JSON behind URI could be loaded.
type Nft struct {
	ID                   hedera.NftID
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints int
	Owner                string
	Metadata             *Metadata
	TransactionID        string
	ConsensusTimestamp   time.Time
}

// Address is the NFT's ledger address, serial@tokenID.
func (n Nft) Address() string {
	return n.ID.String()
}

type UpdateRequest struct {
	NftID hedera.NftID
	URI   string
}

type UpdateResult struct {
	NftID              hedera.NftID
	TransactionID      string
	ConsensusTimestamp time.Time
}

// Confirmation selects how long a submitted transaction is awaited.
type Confirmation string

const (
	// ConfirmationReceipt waits for the consensus receipt.
	ConfirmationReceipt Confirmation = "receipt"
	// ConfirmationRecord also fetches the record for its consensus timestamp.
	ConfirmationRecord Confirmation = "record"
)

// Storage uploads files to decentralized storage and returns their URI.
type Storage interface {
	Upload(ctx context.Context, file File) (string, error)
}

// Ledger mints, finds and updates NFTs.
type Ledger interface {
	CreateNft(ctx context.Context, request CreateRequest) (Nft, error)
	FindByNftID(ctx context.Context, id hedera.NftID) (Nft, error)
	UpdateMetadata(ctx context.Context, request UpdateRequest) (UpdateResult, error)
}

// MetadataResolver loads the JSON a metadata URI points at.
type MetadataResolver interface {
	ResolveJSON(ctx context.Context, reference string, target any) error
}
