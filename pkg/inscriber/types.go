package inscriber

import (
	"context"
	"time"
)

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

type InscriptionMode string

const (
	ModeFile   InscriptionMode = "file"
	ModeUpload InscriptionMode = "upload"
)

// FileStandardHCS1 stores the file as chunked messages on a dedicated topic.
const FileStandardHCS1 = "hcs-1"

type FileInput struct {
	Type     string `json:"type"`
	URL      string `json:"url,omitempty"`
	Base64   string `json:"base64,omitempty"`
	FileName string `json:"fileName,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type ConnectionMode string

const (
	ConnectionModeHTTP      ConnectionMode = "http"
	ConnectionModeWebSocket ConnectionMode = "websocket"
	ConnectionModeAuto      ConnectionMode = "auto"
)

type InscriptionInputType string

const (
	InscriptionInputTypeURL    InscriptionInputType = "url"
	InscriptionInputTypeFile   InscriptionInputType = "file"
	InscriptionInputTypeBuffer InscriptionInputType = "buffer"
)

type InscriptionInput struct {
	Type     InscriptionInputType
	URL      string
	Path     string
	Buffer   []byte
	FileName string
	MimeType string
}

type ProgressStage string

const (
	ProgressStagePreparing  ProgressStage = "preparing"
	ProgressStageSubmitting ProgressStage = "submitting"
	ProgressStageConfirming ProgressStage = "confirming"
	ProgressStageCompleted  ProgressStage = "completed"
)

type ProgressData struct {
	Stage           ProgressStage
	Message         string
	ProgressPercent float64
	Details         map[string]any
}

type ProgressCallback func(data ProgressData)

// TransactionExecutor signs and submits the base64 transaction returned by
// start-inscription and reports the executed transaction ID.
type TransactionExecutor func(ctx context.Context, transactionBytes string, config HederaClientConfig) (string, error)

type InscriptionOptions struct {
	Mode                InscriptionMode
	ConnectionMode      ConnectionMode
	WaitForConfirmation *bool
	WaitMaxAttempts     int
	WaitInterval        time.Duration
	APIKey              string
	BaseURL             string
	MirrorBaseURL       string
	Tags                []string
	Metadata            map[string]any
	FileStandard        string
	ChunkSize           int
	Network             Network
	ProgressCallback    ProgressCallback
}

type QuoteTransfer struct {
	To          string `json:"to"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type InscriptionCostSummary struct {
	TotalCostHBAR string          `json:"totalCostHbar"`
	Transfers     []QuoteTransfer `json:"transfers"`
}

type InscriptionResponse struct {
	Confirmed   bool                    `json:"confirmed"`
	Result      InscriptionResult       `json:"result"`
	Inscription *InscriptionJob         `json:"inscription,omitempty"`
	CostSummary *InscriptionCostSummary `json:"costSummary,omitempty"`
}

type StartInscriptionRequest struct {
	File         FileInput       `json:"file"`
	HolderID     string          `json:"holderId"`
	Mode         InscriptionMode `json:"mode"`
	Network      Network         `json:"network,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
	Creator      string          `json:"creator,omitempty"`
	Description  string          `json:"description,omitempty"`
	FileStandard string          `json:"fileStandard,omitempty"`
	ChunkSize    int             `json:"chunkSize,omitempty"`
}

type HederaClientConfig struct {
	AccountID     string
	PrivateKey    string
	Network       Network
	MirrorBaseURL string
}

type InscriptionJob struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	Completed        bool   `json:"completed"`
	TransactionID    string `json:"transactionId,omitempty"`
	TransactionBytes string `json:"transactionBytes,omitempty"`
	TxID             string `json:"tx_id,omitempty"`
	TopicID          string `json:"topic_id,omitempty"`
	Error            string `json:"error,omitempty"`
	TotalCost        int64  `json:"totalCost,omitempty"`
	TotalMessages    int64  `json:"totalMessages,omitempty"`
}

type InscriptionResult struct {
	JobID         string `json:"jobId"`
	TransactionID string `json:"transactionId"`
	TopicID       string `json:"topicId,omitempty"`
	Status        string `json:"status,omitempty"`
	Completed     bool   `json:"completed"`
}

type AuthResult struct {
	APIKey string `json:"apiKey"`
}
