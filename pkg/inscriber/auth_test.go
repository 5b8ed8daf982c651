package inscriber

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
)

const testPrivateKey = "302e020100300506032b65700422042091132178e72057a1d7528025956fe39b0b847f200ab59b2fdd367017f3087137"

func TestAuthenticateSignsChallenge(t *testing.T) {
	key, err := shared.ParsePrivateKey(testPrivateKey)
	if err != nil {
		t.Fatalf("ParsePrivateKey failed: %v", err)
	}

	var authBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/api/auth/request-signature":
			if request.Header.Get("x-session") != "0.0.1001" {
				t.Fatalf("expected x-session header, got %q", request.Header.Get("x-session"))
			}
			_, _ = writer.Write([]byte(`{"message":"sign me"}`))
		case "/api/auth/authenticate":
			if err := json.NewDecoder(request.Body).Decode(&authBody); err != nil {
				t.Fatalf("failed to decode auth body: %v", err)
			}
			_, _ = writer.Write([]byte(`{"apiKey":"issued-key","user":{"sessionToken":"session"}}`))
		default:
			t.Fatalf("unexpected path %s", request.URL.Path)
		}
	}))
	defer server.Close()

	result, err := NewAuthClient(server.URL+"/api").Authenticate(
		context.Background(),
		"0.0.1001",
		testPrivateKey,
		NetworkTestnet,
	)
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if result.APIKey != "issued-key" {
		t.Fatalf("unexpected api key %q", result.APIKey)
	}

	authData, ok := authBody["authData"].(map[string]any)
	if !ok {
		t.Fatalf("expected authData object, got %#v", authBody)
	}
	if authData["data"] != "sign me" || authData["network"] != "testnet" || authData["id"] != "0.0.1001" {
		t.Fatalf("unexpected authData: %#v", authData)
	}
	signature, err := hex.DecodeString(authData["signature"].(string))
	if err != nil {
		t.Fatalf("signature is not hex: %v", err)
	}
	if !key.PublicKey().Verify([]byte("sign me"), signature) {
		t.Fatalf("signature does not verify against the account key")
	}
}

func TestAuthenticateRequiresAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if strings.HasSuffix(request.URL.Path, "request-signature") {
			_, _ = writer.Write([]byte(`{"message":"sign me"}`))
			return
		}
		_, _ = writer.Write([]byte(`{"user":{"sessionToken":"session"}}`))
	}))
	defer server.Close()

	_, err := NewAuthClient(server.URL).Authenticate(context.Background(), "0.0.1001", testPrivateKey, NetworkTestnet)
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestAuthenticateChallengeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewAuthClient(server.URL).Authenticate(context.Background(), "0.0.1001", testPrivateKey, NetworkTestnet)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected challenge status error, got %v", err)
	}
}

func TestNormalizeChallengeMessage(t *testing.T) {
	payload, data, err := normalizeChallengeMessage(json.RawMessage(`{ "b": 2, "a": "x" }`))
	if err != nil {
		t.Fatalf("normalizeChallengeMessage failed: %v", err)
	}
	if payload != `{"a":"x","b":2}` {
		t.Fatalf("unexpected signing payload %s", payload)
	}
	if _, ok := data.(map[string]any); !ok {
		t.Fatalf("expected object auth data, got %T", data)
	}

	if _, _, err := normalizeChallengeMessage(json.RawMessage(`""`)); err == nil {
		t.Fatalf("expected empty string challenge error")
	}
	if _, _, err := normalizeChallengeMessage(json.RawMessage(` `)); err == nil {
		t.Fatalf("expected empty challenge error")
	}
}

func TestNewAuthClientBaseURL(t *testing.T) {
	if got := NewAuthClient("").baseURL; got != defaultAuthBaseURL {
		t.Fatalf("unexpected default base URL %s", got)
	}
	if got := NewAuthClient("https://example.com/api/").baseURL; got != "https://example.com" {
		t.Fatalf("expected /api suffix to be trimmed, got %s", got)
	}
}
