package nft

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/hcs1"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/mirror"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
)

func TestNftIntegration_MintAndUpdate(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") != "1" {
		t.Skip("set RUN_INTEGRATION=1 to run live integration tests")
	}

	operatorConfig, err := shared.OperatorConfigFromEnv()
	if err != nil {
		t.Skipf("skipping nft integration test: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	hederaClient, operatorID, _, err := shared.NewOperatorClient(operatorConfig)
	if err != nil {
		t.Fatalf("failed to create operator client: %v", err)
	}
	defer hederaClient.Close()

	tokenKey, err := shared.GeneratePrivateKey(shared.KeyTypeEd25519)
	if err != nil {
		t.Fatalf("failed to generate token key: %v", err)
	}
	mirrorClient, err := mirror.NewClient(mirror.Config{Network: operatorConfig.Network})
	if err != nil {
		t.Fatalf("failed to create mirror client: %v", err)
	}
	resolver, err := hcs1.NewResolver(mirrorClient, nil)
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}

	ledger, err := NewHederaLedger(HederaLedgerConfig{
		Client:       hederaClient,
		TokenKey:     &tokenKey,
		Mirror:       mirrorClient,
		Resolver:     resolver,
		Confirmation: ConfirmationRecord,
	})
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}
	storage, err := NewInscriberStorage(InscriberStorageConfig{
		Network:            operatorConfig.Network,
		OperatorAccountID:  operatorID.String(),
		OperatorPrivateKey: operatorConfig.PrivateKey,
	})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	client, err := NewClient(ClientConfig{
		Storage:   storage,
		Ledger:    ledger,
		AssetDirs: []string{filepath.Join("..", "..", "cmd", "nft-demo", "assets")},
	})
	if err != nil {
		t.Fatalf("failed to create nft client: %v", err)
	}

	created, err := client.UploadMetadata(ctx, DefaultCreateDescriptor)
	if err != nil {
		t.Fatalf("UploadMetadata failed: %v", err)
	}
	nft, err := client.CreateNft(ctx, created.MetadataURI, DefaultCreateDescriptor)
	if err != nil {
		t.Fatalf("CreateNft failed: %v", err)
	}
	if nft.ConsensusTimestamp.IsZero() {
		t.Fatalf("expected record confirmation to report a consensus timestamp")
	}

	updated, err := client.UploadMetadata(ctx, DefaultUpdateDescriptor)
	if err != nil {
		t.Fatalf("UploadMetadata failed: %v", err)
	}
	result, err := client.UpdateNftURI(ctx, updated.MetadataURI, nft.ID)
	if err != nil {
		t.Fatalf("UpdateNftURI failed: %v", err)
	}
	t.Logf("updated %s in %s", nft.Address(), result.TransactionID)
}
