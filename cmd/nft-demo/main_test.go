package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/nft"
	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"go.uber.org/zap/zaptest"
)

type fakeAccounts struct {
	balance int64
	err     error
}

func (f fakeAccounts) GetAccountBalance(ctx context.Context, accountID string) (int64, error) {
	return f.balance, f.err
}

type fakeStorage struct {
	uploads int
}

func (s *fakeStorage) Upload(ctx context.Context, file nft.File) (string, error) {
	s.uploads++
	return fmt.Sprintf("hcs://1/0.0.%d", 800+s.uploads), nil
}

type fakeLedger struct {
	minted   nft.Nft
	updates  []nft.UpdateRequest
	failMint error
	// consensus is returned as the mint and update consensus timestamps.
	consensus time.Time
}

func (l *fakeLedger) CreateNft(ctx context.Context, request nft.CreateRequest) (nft.Nft, error) {
	if l.failMint != nil {
		return nft.Nft{}, l.failMint
	}
	l.minted = nft.Nft{
		ID:   hedera.NftID{TokenID: hedera.TokenID{Token: 5005}, SerialNumber: 1},
		Name:               request.Name,
		URI:                request.URI,
		ConsensusTimestamp: l.consensus,
	}
	return l.minted, nil
}

func (l *fakeLedger) FindByNftID(ctx context.Context, id hedera.NftID) (nft.Nft, error) {
	if id != l.minted.ID {
		return nft.Nft{}, nft.ErrNotFound
	}
	return l.minted, nil
}

func (l *fakeLedger) UpdateMetadata(ctx context.Context, request nft.UpdateRequest) (nft.UpdateResult, error) {
	l.updates = append(l.updates, request)
	result := nft.UpdateResult{NftID: request.NftID, TransactionID: "0.0.1001@1700000000.000000009"}
	if !l.consensus.IsZero() {
		result.ConsensusTimestamp = l.consensus.Add(3 * time.Second)
	}
	return result, nil
}

func newTestDemo(t *testing.T, ledger *fakeLedger, balance int64) demo {
	t.Helper()
	client, err := nft.NewClient(nft.ClientConfig{
		Storage:   &fakeStorage{},
		Ledger:    ledger,
		AssetDirs: []string{filepath.Join(".", "assets")},
	})
	if err != nil {
		t.Fatalf("nft.NewClient failed: %v", err)
	}
	return demo{
		Network:     "testnet",
		OperatorID:  "0.0.1001",
		PublicKey:   "302a300506032b6570032100aa",
		Accounts:    fakeAccounts{balance: balance},
		Client:      client,
		Descriptors: nft.DefaultDescriptors(),
	}
}

func TestRunDemoPrintsProgress(t *testing.T) {
	ledger := &fakeLedger{}
	var out bytes.Buffer
	if err := runDemo(context.Background(), &out, newTestDemo(t, ledger, 2_500_000_000)); err != nil {
		t.Fatalf("runDemo failed: %v", err)
	}

	expected := []string{
		"PublicKey: 302a300506032b6570032100aa",
		"Operator: 0.0.1001  balance: 25 ℏ",
		"Account: https://hashscan.io/testnet/account/0.0.1001",
		"metadata uri: hcs://1/0.0.802",
		"Token Mint: https://hashscan.io/testnet/token/0.0.5005/1",
		"Token: https://hashscan.io/testnet/token/0.0.5005  royalty: 0%",
		"metadata uri: hcs://1/0.0.804",
		"Token Mint: https://hashscan.io/testnet/token/0.0.5005/1",
		"Transaction: https://hashscan.io/testnet/transaction/0.0.1001-1700000000-000000009",
		"Finished successfully",
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(expected), len(lines), out.String())
	}
	for index, line := range expected {
		if lines[index] != line {
			t.Fatalf("line %d: expected %q, got %q", index, line, lines[index])
		}
	}

	if ledger.minted.URI != "hcs://1/0.0.802" {
		t.Fatalf("expected the mint to use the first metadata uri, got %s", ledger.minted.URI)
	}
	if len(ledger.updates) != 1 || ledger.updates[0].NftID != ledger.minted.ID || ledger.updates[0].URI != "hcs://1/0.0.804" {
		t.Fatalf("unexpected updates: %+v", ledger.updates)
	}
}

func TestRunDemoPrintsConsensusTimestamps(t *testing.T) {
	ledger := &fakeLedger{consensus: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)}
	var out bytes.Buffer
	if err := runDemo(context.Background(), &out, newTestDemo(t, ledger, 2_500_000_000)); err != nil {
		t.Fatalf("runDemo failed: %v", err)
	}

	var consensus []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "Consensus: ") {
			consensus = append(consensus, line)
		}
	}
	expected := []string{"Consensus: 2024-03-01T12:30:00Z", "Consensus: 2024-03-01T12:30:03Z"}
	if len(consensus) != len(expected) || consensus[0] != expected[0] || consensus[1] != expected[1] {
		t.Fatalf("unexpected consensus lines %v in:\n%s", consensus, out.String())
	}
	if !strings.Contains(out.String(), "royalty: 0%\nConsensus: 2024-03-01T12:30:00Z\n") {
		t.Fatalf("expected the mint consensus line after the token line:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Consensus: 2024-03-01T12:30:03Z\nTransaction: ") {
		t.Fatalf("expected the update consensus line before the transaction line:\n%s", out.String())
	}
}

func TestRunDemoPrintsDescriptorRoyalty(t *testing.T) {
	d := newTestDemo(t, &fakeLedger{}, 2_500_000_000)
	d.Descriptors.Create.SellerFeeBasisPoints = 250
	var out bytes.Buffer
	if err := runDemo(context.Background(), &out, d); err != nil {
		t.Fatalf("runDemo failed: %v", err)
	}
	if !strings.Contains(out.String(), "Token: https://hashscan.io/testnet/token/0.0.5005  royalty: 2.5%\n") {
		t.Fatalf("expected royalty on the token line:\n%s", out.String())
	}
}

func TestRunDemoWarnsOnLowBalance(t *testing.T) {
	var out bytes.Buffer
	if err := runDemo(context.Background(), &out, newTestDemo(t, &fakeLedger{}, 5_000_000)); err != nil {
		t.Fatalf("runDemo failed: %v", err)
	}
	if !strings.Contains(out.String(), "balance: 0.05 ℏ") {
		t.Fatalf("expected formatted balance, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "warning: operator balance is below 1 ℏ") {
		t.Fatalf("expected low balance warning, got:\n%s", out.String())
	}
}

func TestRunDemoStopsOnError(t *testing.T) {
	var out bytes.Buffer
	ledger := &fakeLedger{failMint: errors.New("INSUFFICIENT_PAYER_BALANCE")}
	err := runDemo(context.Background(), &out, newTestDemo(t, ledger, 2_500_000_000))
	if err == nil || !strings.Contains(err.Error(), "INSUFFICIENT_PAYER_BALANCE") {
		t.Fatalf("expected mint error, got %v", err)
	}
	if strings.Contains(out.String(), "Finished successfully") {
		t.Fatalf("expected no success line after a failure")
	}

	d := newTestDemo(t, &fakeLedger{}, 0)
	d.Accounts = fakeAccounts{err: errors.New("mirror down")}
	if err := runDemo(context.Background(), &out, d); err == nil || !strings.Contains(err.Error(), "mirror down") {
		t.Fatalf("expected balance error, got %v", err)
	}
}

func TestAssetDirs(t *testing.T) {
	if dirs := assetDirs("/tmp/images"); len(dirs) != 1 || dirs[0] != "/tmp/images" {
		t.Fatalf("expected flag value only, got %v", dirs)
	}
	dirs := assetDirs("")
	if len(dirs) != 2 || dirs[0] != "assets" || !strings.HasSuffix(dirs[1], filepath.Join("nft-demo", "assets")) {
		t.Fatalf("unexpected default asset dirs: %v", dirs)
	}
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"network", "assets", "descriptors", "key-file", "key-type", "record", "verbose"} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Fatalf("expected --%s flag", name)
		}
	}
	if got := rootCmd.Flags().Lookup("key-file").DefValue; got != ".env" {
		t.Fatalf("unexpected key-file default %q", got)
	}
	if got := rootCmd.Flags().Lookup("key-type").DefValue; got != "ed25519" {
		t.Fatalf("unexpected key-type default %q", got)
	}
}

func TestParseKeyType(t *testing.T) {
	cases := map[string]shared.KeyType{
		"":        shared.KeyTypeEd25519,
		"ed25519": shared.KeyTypeEd25519,
		" ECDSA ": shared.KeyTypeECDSA,
		"ecdsa":   shared.KeyTypeECDSA,
	}
	for input, expected := range cases {
		got, err := parseKeyType(input)
		if err != nil || got != expected {
			t.Fatalf("parseKeyType(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := parseKeyType("rsa"); err == nil || !strings.Contains(err.Error(), "unsupported key type") {
		t.Fatalf("expected unsupported key type error, got %v", err)
	}
}

type fakeKeyTypes struct {
	keyType string
	err     error
}

func (f fakeKeyTypes) GetAccountKeyType(ctx context.Context, accountID string) (string, error) {
	return f.keyType, f.err
}

func TestResolveOperatorKeyType(t *testing.T) {
	logger := zaptest.NewLogger(t)
	if got := resolveOperatorKeyType(context.Background(), fakeKeyTypes{keyType: "ECDSA_SECP256K1"}, "0.0.1001", logger); got != "ECDSA_SECP256K1" {
		t.Fatalf("unexpected key type %q", got)
	}
	if got := resolveOperatorKeyType(context.Background(), fakeKeyTypes{err: errors.New("mirror down")}, "0.0.1001", logger); got != "" {
		t.Fatalf("expected empty key type on lookup failure, got %q", got)
	}
}

func TestRunReportsBadFlagsOnStdout(t *testing.T) {
	var out bytes.Buffer
	if code := run([]string{"--network", "previewnet"}, &out); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out.String(), "unsupported network") {
		t.Fatalf("expected network error on stdout, got %q", out.String())
	}

	out.Reset()
	if code := run([]string{"--network", "testnet", "--key-type", "rsa"}, &out); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(out.String(), "unsupported key type") {
		t.Fatalf("expected key type error on stdout, got %q", out.String())
	}
	rootCmd.SetArgs(nil)
	keyType = string(shared.KeyTypeEd25519)
	network = ""
}
