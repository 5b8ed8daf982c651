package inscriber

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/mirror"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://v2-api.tier.bot/api"

// APIError is a non-2xx response from the inscription service.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inscriber API %s %s failed with status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

type Config struct {
	APIKey                       string
	Network                      Network
	BaseURL                      string
	HTTPClient                   *http.Client
	ConnectionMode               ConnectionMode
	WebSocketBaseURL             string
	WebSocketInactivityTimeoutMs int64
	Executor                     TransactionExecutor
	Logger                       *zap.Logger
}

type Client struct {
	apiKey                       string
	network                      Network
	baseURL                      string
	httpClient                   *http.Client
	connectionMode               ConnectionMode
	webSocketBaseURL             string
	webSocketInactivityTimeoutMs int64
	executor                     TransactionExecutor
	logger                       *zap.Logger
}

type WaitOptions struct {
	MaxAttempts int
	Interval    time.Duration
}

// NewClient creates an inscription API client. The API key comes from
// AuthClient.Authenticate.
func NewClient(config Config) (*Client, error) {
	apiKey := strings.TrimSpace(config.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	network := config.Network
	if network == "" {
		network = NetworkTestnet
	}
	if network != NetworkMainnet && network != NetworkTestnet {
		return nil, fmt.Errorf("network must be mainnet or testnet")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	connectionMode := config.ConnectionMode
	if connectionMode == "" {
		connectionMode = ConnectionModeWebSocket
	}
	if connectionMode != ConnectionModeHTTP &&
		connectionMode != ConnectionModeWebSocket &&
		connectionMode != ConnectionModeAuto {
		return nil, fmt.Errorf("connection mode must be http, websocket, or auto")
	}

	executor := config.Executor
	if executor == nil {
		executor = ExecuteTransaction
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:                       apiKey,
		network:                      network,
		baseURL:                      baseURL,
		httpClient:                   httpClient,
		connectionMode:               connectionMode,
		webSocketBaseURL:             strings.TrimSpace(config.WebSocketBaseURL),
		webSocketInactivityTimeoutMs: config.WebSocketInactivityTimeoutMs,
		executor:                     executor,
		logger:                       logger,
	}, nil
}

// StartInscription registers the file with the inscription service and
// returns the job, including the payment transaction the holder must sign.
func (c *Client) StartInscription(
	ctx context.Context,
	request StartInscriptionRequest,
) (InscriptionJob, error) {
	if strings.TrimSpace(request.HolderID) == "" {
		return InscriptionJob{}, fmt.Errorf("holderId is required")
	}
	if request.Mode == "" {
		return InscriptionJob{}, fmt.Errorf("mode is required")
	}
	if request.File.Type != "url" && request.File.Type != "base64" {
		return InscriptionJob{}, fmt.Errorf("file.type must be url or base64")
	}

	body := map[string]any{
		"holderId": request.HolderID,
		"mode":     request.Mode,
		"network":  c.network,
	}
	if len(request.Metadata) > 0 {
		body["metadata"] = request.Metadata
	}
	if len(request.Tags) > 0 {
		body["tags"] = request.Tags
	}
	if request.ChunkSize > 0 {
		body["chunkSize"] = request.ChunkSize
	}
	if strings.TrimSpace(request.Creator) != "" {
		body["creator"] = request.Creator
	}
	if strings.TrimSpace(request.Description) != "" {
		body["description"] = request.Description
	}
	if strings.TrimSpace(request.FileStandard) != "" {
		body["fileStandard"] = request.FileStandard
	}

	if request.File.Type == "url" {
		body["fileURL"] = request.File.URL
	} else {
		body["fileBase64"] = request.File.Base64
		body["fileName"] = request.File.FileName
		if request.File.MimeType != "" {
			body["fileMimeType"] = request.File.MimeType
		}
	}

	c.logger.Debug("starting inscription",
		zap.String("holder", request.HolderID),
		zap.String("mode", string(request.Mode)),
		zap.String("fileName", request.File.FileName),
	)

	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/inscriptions/start-inscription", body, &raw); err != nil {
		return InscriptionJob{}, err
	}

	return parseInscriptionJob(raw)
}

// RetrieveInscription fetches the current state of the job created by the
// given payment transaction.
func (c *Client) RetrieveInscription(ctx context.Context, txID string) (InscriptionJob, error) {
	normalizedID := shared.NormalizeTransactionID(txID)
	if normalizedID == "" {
		return InscriptionJob{}, fmt.Errorf("transaction ID is required")
	}

	endpoint := "/inscriptions/retrieve-inscription?id=" + url.QueryEscape(normalizedID)
	var raw map[string]any
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return InscriptionJob{}, err
	}

	job, err := parseInscriptionJob(raw)
	if err != nil {
		return InscriptionJob{}, err
	}
	if strings.EqualFold(job.Status, "completed") {
		job.Completed = true
	}
	if job.TxID == "" {
		job.TxID = normalizedID
	}

	return job, nil
}

// WaitForInscription polls RetrieveInscription until the job completes,
// fails, or the attempts run out.
func (c *Client) WaitForInscription(
	ctx context.Context,
	txID string,
	options WaitOptions,
) (InscriptionJob, error) {
	maxAttempts := options.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	interval := options.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	var latest InscriptionJob
	for attempt := 0; attempt < maxAttempts; attempt++ {
		job, err := c.RetrieveInscription(ctx, txID)
		if err != nil {
			if !isRetryableWaitError(err) || attempt == maxAttempts-1 {
				return InscriptionJob{}, err
			}
		} else {
			latest = job
			if strings.EqualFold(job.Status, "failed") {
				if job.Error == "" {
					job.Error = "inscription failed"
				}
				return job, errors.New(job.Error)
			}
			if job.Completed {
				return job, nil
			}
			c.logger.Debug("inscription pending",
				zap.String("txId", txID),
				zap.String("status", job.Status),
				zap.Int("attempt", attempt+1),
			)
		}

		select {
		case <-ctx.Done():
			return InscriptionJob{}, ctx.Err()
		case <-time.After(interval):
		}
	}

	return latest, fmt.Errorf("inscription did not complete within %d attempts", maxAttempts)
}

func isRetryableWaitError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// ExecuteTransaction decodes the base64 transaction returned by the
// inscription service, signs it as the operator and submits it, requiring a
// SUCCESS receipt. The first attempt relies on the client operator signing
// at execution; if the node rejects the signature the transaction is signed
// explicitly and submitted again.
func ExecuteTransaction(
	ctx context.Context,
	transactionBytes string,
	config HederaClientConfig,
) (string, error) {
	network, err := shared.NormalizeNetwork(string(config.Network))
	if err != nil {
		return "", err
	}

	accountID, err := hedera.AccountIDFromString(strings.TrimSpace(config.AccountID))
	if err != nil {
		return "", fmt.Errorf("invalid account ID: %w", err)
	}
	privateKey, err := parseOperatorPrivateKey(ctx, network, config.MirrorBaseURL, accountID.String(), config.PrivateKey)
	if err != nil {
		return "", err
	}

	rawBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(transactionBytes))
	if err != nil {
		return "", fmt.Errorf("transaction bytes must be base64: %w", err)
	}

	attempts := []struct {
		label      string
		manualSign bool
	}{
		{label: "operator-auto-sign"},
		{label: "operator-manual-sign", manualSign: true},
	}

	var (
		invalidSignatureErrors []string
		executionClients       []*hedera.Client
	)
	defer func() {
		for _, executionClient := range executionClients {
			_ = executionClient.Close()
		}
	}()
	for _, attempt := range attempts {
		executionClient, clientErr := shared.NewHederaClient(network)
		if clientErr != nil {
			return "", clientErr
		}
		executionClients = append(executionClients, executionClient)
		executionClient.SetOperator(accountID, privateKey)

		transaction, decodeErr := hedera.TransactionFromBytes(rawBytes)
		if decodeErr != nil {
			return "", fmt.Errorf("failed to decode transaction bytes: %w", decodeErr)
		}

		executable := transaction
		if attempt.manualSign {
			signed, signErr := hedera.TransactionSign(transaction, privateKey)
			if signErr != nil {
				return "", fmt.Errorf("failed to sign transaction during %s: %w", attempt.label, signErr)
			}
			executable = signed
		}

		response, executeErr := hedera.TransactionExecute(executable, executionClient)
		if executeErr != nil {
			if strings.Contains(strings.ToUpper(executeErr.Error()), "INVALID_SIGNATURE") {
				invalidSignatureErrors = append(invalidSignatureErrors, fmt.Sprintf("%s=%v", attempt.label, executeErr))
				continue
			}
			return "", fmt.Errorf("failed to execute transaction via %s: %w", attempt.label, executeErr)
		}

		receipt, receiptErr := response.GetReceipt(executionClient)
		if receiptErr != nil {
			return "", fmt.Errorf("failed to get transaction receipt via %s: %w", attempt.label, receiptErr)
		}
		if receipt.Status != hedera.StatusSuccess {
			return "", fmt.Errorf("transaction via %s failed with status %s", attempt.label, receipt.Status.String())
		}

		return response.TransactionID.String(), nil
	}

	return "", fmt.Errorf("all execution attempts failed with INVALID_SIGNATURE: %s", strings.Join(invalidSignatureErrors, "; "))
}

// parseOperatorPrivateKey uses the account's key type from the mirror node
// to disambiguate raw hex keys.
func parseOperatorPrivateKey(
	ctx context.Context,
	network string,
	mirrorBaseURL string,
	accountID string,
	rawPrivateKey string,
) (hedera.PrivateKey, error) {
	keyType := resolveMirrorKeyType(ctx, network, mirrorBaseURL, accountID)
	privateKey, err := shared.ParsePrivateKeyForKeyType(rawPrivateKey, keyType)
	if err != nil {
		return hedera.PrivateKey{}, fmt.Errorf("invalid private key for account %s: %w", accountID, err)
	}
	return privateKey, nil
}

func resolveMirrorKeyType(ctx context.Context, network string, mirrorBaseURL string, accountID string) string {
	mirrorClient, err := mirror.NewClient(mirror.Config{Network: network, BaseURL: mirrorBaseURL})
	if err != nil {
		return ""
	}
	keyType, err := mirrorClient.GetAccountKeyType(ctx, accountID)
	if err != nil {
		return ""
	}
	return keyType
}

func (c *Client) doJSON(ctx context.Context, method string, endpoint string, payload any, target any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.resolveURL(endpoint), body)
	if err != nil {
		return err
	}
	request.Header.Set("x-api-key", c.apiKey)
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(string(responseBody)),
		}
	}

	if err := json.Unmarshal(responseBody, target); err != nil {
		return fmt.Errorf("failed to decode inscriber API response: %w", err)
	}

	return nil
}

func (c *Client) resolveURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if strings.HasPrefix(endpoint, "/") {
		return c.baseURL + endpoint
	}
	return c.baseURL + "/" + endpoint
}

func parseInscriptionJob(raw map[string]any) (InscriptionJob, error) {
	job := InscriptionJob{}

	job.ID, _ = raw["id"].(string)
	job.Status, _ = raw["status"].(string)
	job.Completed, _ = raw["completed"].(bool)
	job.TxID, _ = raw["tx_id"].(string)
	job.TopicID, _ = raw["topic_id"].(string)
	job.TransactionID, _ = raw["transactionId"].(string)
	job.Error, _ = raw["error"].(string)
	if totalCost, ok := raw["totalCost"].(float64); ok {
		job.TotalCost = int64(totalCost)
	}
	if totalMessages, ok := raw["totalMessages"].(float64); ok {
		job.TotalMessages = int64(totalMessages)
	}

	transactionBytes, err := normalizeTransactionBytes(raw["transactionBytes"])
	if err != nil {
		return InscriptionJob{}, err
	}
	job.TransactionBytes = transactionBytes

	return job, nil
}

// normalizeTransactionBytes accepts either a base64 string or a serialized
// Node.js Buffer ({"type":"Buffer","data":[...]}) and returns base64.
func normalizeTransactionBytes(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case map[string]any:
		typeValue, _ := typed["type"].(string)
		if typeValue != "Buffer" {
			return "", fmt.Errorf("unsupported transactionBytes object type %q", typeValue)
		}
		items, ok := typed["data"].([]any)
		if !ok {
			return "", fmt.Errorf("transactionBytes Buffer object missing data array")
		}

		byteValues := make([]byte, 0, len(items))
		for _, item := range items {
			number, ok := item.(float64)
			if !ok {
				return "", fmt.Errorf("transactionBytes data includes non-numeric value %T", item)
			}
			byteValues = append(byteValues, byte(number))
		}

		return base64.StdEncoding.EncodeToString(byteValues), nil
	default:
		return "", fmt.Errorf("unsupported transactionBytes type %T", value)
	}
}
