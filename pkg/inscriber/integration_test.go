package inscriber

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
)

func TestInscriberIntegration_InscribeHCS1File(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") != "1" {
		t.Skip("set RUN_INTEGRATION=1 to run live integration tests")
	}

	operatorConfig, err := shared.OperatorConfigFromEnv()
	if err != nil {
		t.Skipf("skipping inscriber integration test: %v", err)
	}
	network := Network(operatorConfig.Network)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	authResult, err := NewAuthClient(os.Getenv("INSCRIPTION_AUTH_BASE_URL")).Authenticate(
		ctx,
		operatorConfig.AccountID,
		operatorConfig.PrivateKey,
		network,
	)
	if err != nil {
		t.Fatalf("failed to authenticate inscription client: %v", err)
	}

	client, err := NewClient(Config{
		APIKey:         authResult.APIKey,
		Network:        network,
		BaseURL:        os.Getenv("INSCRIPTION_API_BASE_URL"),
		ConnectionMode: ConnectionModeAuto,
	})
	if err != nil {
		t.Fatalf("failed to create inscription client: %v", err)
	}

	response, err := Inscribe(
		ctx,
		InscriptionInput{
			Type:     InscriptionInputTypeBuffer,
			Buffer:   []byte(`{"name":"integration"}`),
			FileName: "integration.json",
		},
		HederaClientConfig{
			AccountID:  operatorConfig.AccountID,
			PrivateKey: operatorConfig.PrivateKey,
			Network:    network,
		},
		InscriptionOptions{
			Mode:         ModeFile,
			FileStandard: FileStandardHCS1,
		},
		client,
	)
	if err != nil {
		t.Fatalf("Inscribe failed: %v", err)
	}
	if !response.Confirmed {
		t.Fatalf("inscription did not complete, status=%s", response.Result.Status)
	}
	if strings.TrimSpace(response.Result.TopicID) == "" {
		t.Fatalf("expected completed inscription to report a topic ID")
	}
	t.Logf("inscribed to topic %s (tx %s)", response.Result.TopicID, response.Result.TransactionID)
}
