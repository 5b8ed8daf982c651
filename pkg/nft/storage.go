package nft

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/hcs1"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/inscriber"
	"go.uber.org/zap"
)

type InscriberStorageConfig struct {
	Network            string
	OperatorAccountID  string
	OperatorPrivateKey string
	AuthBaseURL        string
	APIBaseURL         string
	MirrorBaseURL      string
	ConnectionMode     inscriber.ConnectionMode
	WaitMaxAttempts    int
	WaitInterval       time.Duration
	// Executor overrides how the inscription payment is submitted.
	Executor inscriber.TransactionExecutor
	Logger   *zap.Logger
}

// InscriberStorage implements Storage by inscribing each file as an HCS-1
// topic. The inscription service is authenticated on the first upload and
// the client is reused afterwards.
type InscriberStorage struct {
	config InscriberStorageConfig
	logger *zap.Logger

	mu     sync.Mutex
	client *inscriber.Client
}

func NewInscriberStorage(config InscriberStorageConfig) (*InscriberStorage, error) {
	if strings.TrimSpace(config.OperatorAccountID) == "" {
		return nil, fmt.Errorf("operator account ID is required")
	}
	if strings.TrimSpace(config.OperatorPrivateKey) == "" {
		return nil, fmt.Errorf("operator private key is required")
	}
	if strings.TrimSpace(config.Network) == "" {
		config.Network = string(inscriber.NetworkTestnet)
	}
	if config.ConnectionMode == "" {
		config.ConnectionMode = inscriber.ConnectionModeAuto
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &InscriberStorage{config: config, logger: logger}, nil
}

// Upload inscribes the file and returns its hcs://1/<topicID> URI once the
// inscription has completed.
func (s *InscriberStorage) Upload(ctx context.Context, file File) (string, error) {
	if len(file.Data) == 0 {
		return "", fmt.Errorf("file %s is empty", file.Name)
	}

	client, err := s.inscriberClient(ctx)
	if err != nil {
		return "", err
	}

	fileName := uniqueFileName(file.Name)
	s.logger.Debug("uploading file",
		zap.String("file", fileName),
		zap.String("mimeType", file.MimeType),
		zap.Int("bytes", len(file.Data)),
	)

	response, err := inscriber.Inscribe(
		ctx,
		inscriber.InscriptionInput{
			Type:     inscriber.InscriptionInputTypeBuffer,
			Buffer:   file.Data,
			FileName: fileName,
			MimeType: file.MimeType,
		},
		s.hederaClientConfig(),
		inscriber.InscriptionOptions{
			Mode:            inscriber.ModeFile,
			FileStandard:    inscriber.FileStandardHCS1,
			WaitMaxAttempts: s.config.WaitMaxAttempts,
			WaitInterval:    s.config.WaitInterval,
			MirrorBaseURL:   s.config.MirrorBaseURL,
		},
		client,
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", file.Name, err)
	}
	if !response.Confirmed {
		return "", fmt.Errorf("upload of %s did not complete (status %q)", file.Name, response.Result.Status)
	}
	if strings.TrimSpace(response.Result.TopicID) == "" {
		return "", fmt.Errorf("upload of %s completed without a topic ID", file.Name)
	}
	if response.CostSummary != nil {
		s.logger.Info("file inscribed",
			zap.String("file", fileName),
			zap.String("topicId", response.Result.TopicID),
			zap.String("costHbar", response.CostSummary.TotalCostHBAR),
		)
	}

	return hcs1.BuildReference(response.Result.TopicID), nil
}

func (s *InscriberStorage) inscriberClient(ctx context.Context) (*inscriber.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	network := inscriber.Network(s.config.Network)
	auth, err := inscriber.NewAuthClient(s.config.AuthBaseURL).Authenticate(
		ctx,
		s.config.OperatorAccountID,
		s.config.OperatorPrivateKey,
		network,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with the inscription service: %w", err)
	}

	client, err := inscriber.NewClient(inscriber.Config{
		APIKey:         auth.APIKey,
		Network:        network,
		BaseURL:        s.config.APIBaseURL,
		ConnectionMode: s.config.ConnectionMode,
		Executor:       s.config.Executor,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

func (s *InscriberStorage) hederaClientConfig() inscriber.HederaClientConfig {
	return inscriber.HederaClientConfig{
		AccountID:     s.config.OperatorAccountID,
		PrivateKey:    s.config.OperatorPrivateKey,
		Network:       inscriber.Network(s.config.Network),
		MirrorBaseURL: s.config.MirrorBaseURL,
	}
}

// uniqueFileName inserts a UUID before the file extension.
func uniqueFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	extension := filepath.Ext(base)
	stem := strings.TrimSuffix(base, extension)
	return fmt.Sprintf("%s-%s%s", stem, uuid.NewString(), extension)
}
