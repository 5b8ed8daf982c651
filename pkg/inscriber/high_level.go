package inscriber

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
	"go.uber.org/zap"
)

// Inscribe writes the input to the ledger: it starts the inscription, pays
// for it by executing the returned transaction as the holder, and by default
// waits for the inscription to complete. When existingClient is nil a client
// is authenticated with clientConfig.
func Inscribe(
	ctx context.Context,
	input InscriptionInput,
	clientConfig HederaClientConfig,
	options InscriptionOptions,
	existingClient *Client,
) (InscriptionResponse, error) {
	normalizedOptions := normalizeInscriptionOptions(options, clientConfig)

	client, err := resolveInscriberClient(ctx, clientConfig, normalizedOptions, existingClient)
	if err != nil {
		return InscriptionResponse{}, err
	}

	request, err := buildStartInscriptionRequest(
		input,
		clientConfig.AccountID,
		normalizedOptions.Network,
		normalizedOptions,
	)
	if err != nil {
		return InscriptionResponse{}, err
	}

	reportProgress(normalizedOptions.ProgressCallback, ProgressStagePreparing, "Starting inscription", 0)
	job, err := client.StartInscription(ctx, request)
	if err != nil {
		return InscriptionResponse{}, err
	}
	if strings.TrimSpace(job.TransactionBytes) == "" {
		return InscriptionResponse{}, fmt.Errorf("inscription start did not return transaction bytes")
	}

	reportProgress(normalizedOptions.ProgressCallback, ProgressStageSubmitting, "Submitting payment transaction", 10)
	executedTransactionID, err := client.executor(ctx, job.TransactionBytes, clientConfig)
	if err != nil {
		return InscriptionResponse{}, err
	}
	client.logger.Debug("inscription paid",
		zap.String("transactionId", executedTransactionID),
		zap.String("topicId", job.TopicID),
	)

	result := InscriptionResult{
		JobID:         shared.NormalizeTransactionID(job.TxID),
		TransactionID: shared.NormalizeTransactionID(executedTransactionID),
		TopicID:       job.TopicID,
		Status:        job.Status,
	}

	response := InscriptionResponse{Result: result}
	if boolOptionOrDefault(normalizedOptions.WaitForConfirmation, true) {
		waited, err := waitForInscriptionWithConnection(ctx, client, executedTransactionID, normalizedOptions)
		if err != nil {
			return InscriptionResponse{}, err
		}
		if strings.TrimSpace(waited.TopicID) != "" {
			response.Result.TopicID = waited.TopicID
		}
		response.Result.Status = waited.Status
		response.Result.Completed = waited.Completed
		response.Confirmed = waited.Completed
		response.Inscription = &waited
		reportProgress(normalizedOptions.ProgressCallback, ProgressStageCompleted, "Inscription completed", 100)
	}

	costSummary, err := resolveInscriptionCostSummary(
		ctx,
		executedTransactionID,
		normalizedOptions.Network,
		normalizedOptions.MirrorBaseURL,
	)
	if err != nil {
		client.logger.Debug("cost summary unavailable", zap.Error(err))
	}
	response.CostSummary = costSummary

	return response, nil
}

func waitForInscriptionWithConnection(
	ctx context.Context,
	client *Client,
	transactionID string,
	options InscriptionOptions,
) (InscriptionJob, error) {
	waitOptions := WaitOptions{
		MaxAttempts: options.WaitMaxAttempts,
		Interval:    options.WaitInterval,
	}
	if waitOptions.MaxAttempts <= 0 {
		waitOptions.MaxAttempts = 450
	}

	connectionMode := options.ConnectionMode
	if connectionMode == "" {
		connectionMode = client.connectionMode
	}
	if connectionMode == ConnectionModeWebSocket || connectionMode == ConnectionModeAuto {
		job, err := client.waitForInscriptionWebSocket(ctx, transactionID, options.ProgressCallback)
		if err == nil {
			return job, nil
		}
		client.logger.Debug("websocket wait failed, polling instead", zap.Error(err))
	}

	return client.WaitForInscription(ctx, transactionID, waitOptions)
}

func normalizeInscriptionOptions(
	options InscriptionOptions,
	clientConfig HederaClientConfig,
) InscriptionOptions {
	normalizedOptions := options

	if normalizedOptions.Mode == "" {
		normalizedOptions.Mode = ModeFile
	}
	if normalizedOptions.Network == "" {
		normalizedOptions.Network = clientConfig.Network
	}
	if normalizedOptions.Network == "" {
		normalizedOptions.Network = NetworkTestnet
	}
	if normalizedOptions.MirrorBaseURL == "" {
		normalizedOptions.MirrorBaseURL = clientConfig.MirrorBaseURL
	}

	return normalizedOptions
}

func resolveInscriberClient(
	ctx context.Context,
	clientConfig HederaClientConfig,
	options InscriptionOptions,
	existingClient *Client,
) (*Client, error) {
	if existingClient != nil {
		return existingClient, nil
	}

	apiKey := strings.TrimSpace(options.APIKey)
	if apiKey == "" {
		authResult, err := NewAuthClient("").Authenticate(
			ctx,
			clientConfig.AccountID,
			clientConfig.PrivateKey,
			options.Network,
		)
		if err != nil {
			return nil, err
		}
		apiKey = authResult.APIKey
	}

	return NewClient(Config{
		APIKey:         apiKey,
		Network:        options.Network,
		BaseURL:        options.BaseURL,
		ConnectionMode: options.ConnectionMode,
	})
}

func reportProgress(callback ProgressCallback, stage ProgressStage, message string, percent float64) {
	if callback == nil {
		return
	}
	callback(ProgressData{
		Stage:           stage,
		Message:         message,
		ProgressPercent: percent,
	})
}

func boolOptionOrDefault(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}
