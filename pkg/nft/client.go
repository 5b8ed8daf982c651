package nft

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/inscriber"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"go.uber.org/zap"
)

const metadataFileName = "metadata.json"

type ClientConfig struct {
	Storage Storage
	Ledger  Ledger
	// AssetDirs are searched in order for descriptor images.
	AssetDirs []string
	Logger    *zap.Logger
}

// Client runs the upload, mint and update operations against one storage
// backend and one ledger.
type Client struct {
	storage   Storage
	ledger    Ledger
	assetDirs []string
	logger    *zap.Logger
}

func NewClient(config ClientConfig) (*Client, error) {
	if config.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if config.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		storage:   config.Storage,
		ledger:    config.Ledger,
		assetDirs: append([]string(nil), config.AssetDirs...),
		logger:    logger,
	}, nil
}

// UploadImage uploads the descriptor's image file and returns its URI.
func (c *Client) UploadImage(ctx context.Context, descriptor Descriptor) (string, error) {
	uri, _, err := c.uploadImage(ctx, descriptor)
	return uri, err
}

func (c *Client) uploadImage(ctx context.Context, descriptor Descriptor) (string, string, error) {
	path, err := descriptor.ResolveImage(c.assetDirs...)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read image %s: %w", path, err)
	}

	fileName := filepath.Base(path)
	mimeType := inscriber.DetectMimeType(fileName, data)
	uri, err := c.storage.Upload(ctx, File{
		Name:     fileName,
		Data:     data,
		MimeType: mimeType,
	})
	if err != nil {
		return "", "", err
	}
	return uri, mimeType, nil
}

// UploadMetadata uploads the image and then the metadata JSON that
// references it.
func (c *Client) UploadMetadata(ctx context.Context, descriptor Descriptor) (MetadataUpload, error) {
	if err := descriptor.Validate(); err != nil {
		return MetadataUpload{}, err
	}

	imageURI, imageType, err := c.uploadImage(ctx, descriptor)
	if err != nil {
		return MetadataUpload{}, err
	}
	c.logger.Debug("image uploaded", zap.String("name", descriptor.Name), zap.String("uri", imageURI))

	metadata := Metadata{
		Name:        descriptor.Name,
		Symbol:      descriptor.Symbol,
		Description: descriptor.Description,
		Image:       imageURI,
		Type:        imageType,
		Format:      MetadataFormat,
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return MetadataUpload{}, fmt.Errorf("failed to encode metadata: %w", err)
	}

	metadataURI, err := c.storage.Upload(ctx, File{
		Name:     metadataFileName,
		Data:     encoded,
		MimeType: "application/json",
	})
	if err != nil {
		return MetadataUpload{}, err
	}

	return MetadataUpload{
		ImageURI:    imageURI,
		MetadataURI: metadataURI,
		Metadata:    metadata,
	}, nil
}

// CreateNft mints an NFT whose metadata is uri.
func (c *Client) CreateNft(ctx context.Context, uri string, descriptor Descriptor) (Nft, error) {
	nft, err := c.ledger.CreateNft(ctx, CreateRequest{
		URI:                  uri,
		Name:                 descriptor.Name,
		Symbol:               descriptor.Symbol,
		SellerFeeBasisPoints: descriptor.SellerFeeBasisPoints,
	})
	if err != nil {
		return Nft{}, err
	}
	c.logger.Debug("nft created", zap.String("address", nft.Address()), zap.String("uri", uri))
	return nft, nil
}

// UpdateNftURI looks the NFT up by its ID and points it at uri.
func (c *Client) UpdateNftURI(ctx context.Context, uri string, id hedera.NftID) (UpdateResult, error) {
	nft, err := c.ledger.FindByNftID(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}

	result, err := c.ledger.UpdateMetadata(ctx, UpdateRequest{NftID: nft.ID, URI: uri})
	if err != nil {
		return UpdateResult{}, err
	}
	c.logger.Debug("nft updated",
		zap.String("address", nft.Address()),
		zap.String("uri", uri),
		zap.String("transactionId", result.TransactionID),
	)
	return result, nil
}
