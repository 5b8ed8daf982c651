package inscriber

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
)

const defaultAuthBaseURL = "https://kiloscribe.com"

// AuthClient exchanges a signed challenge for an inscription API key.
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthClient(baseURL string) *AuthClient {
	normalizedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if normalizedBaseURL == "" {
		normalizedBaseURL = defaultAuthBaseURL
	}
	normalizedBaseURL = strings.TrimSuffix(normalizedBaseURL, "/api")

	return &AuthClient{
		baseURL:    normalizedBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticate requests a challenge for the account, signs it with the
// account key and returns the API key issued for the session.
func (c *AuthClient) Authenticate(
	ctx context.Context,
	accountID string,
	privateKey string,
	network Network,
) (AuthResult, error) {
	key, err := shared.ParsePrivateKey(privateKey)
	if err != nil {
		return AuthResult{}, err
	}

	challenge, err := c.requestChallenge(ctx, accountID)
	if err != nil {
		return AuthResult{}, err
	}

	signingPayload, authData, err := normalizeChallengeMessage(challenge)
	if err != nil {
		return AuthResult{}, err
	}

	payload := map[string]any{
		"authData": map[string]any{
			"id":        accountID,
			"signature": hex.EncodeToString(key.Sign([]byte(signingPayload))),
			"data":      authData,
			"network":   string(network),
		},
		"include": "apiKey",
	}

	var result struct {
		APIKey string `json:"apiKey"`
		User   struct {
			SessionToken string `json:"sessionToken"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/authenticate", nil, payload, &result); err != nil {
		return AuthResult{}, fmt.Errorf("failed to authenticate inscription API client: %w", err)
	}
	if strings.TrimSpace(result.User.SessionToken) == "" {
		return AuthResult{}, fmt.Errorf("authenticate response did not include session token")
	}
	if strings.TrimSpace(result.APIKey) == "" {
		return AuthResult{}, fmt.Errorf("authenticate response did not include api key")
	}

	return AuthResult{APIKey: result.APIKey}, nil
}

func (c *AuthClient) requestChallenge(ctx context.Context, accountID string) (json.RawMessage, error) {
	var challenge struct {
		Message json.RawMessage `json:"message"`
	}
	headers := map[string]string{"x-session": accountID}
	if err := c.do(ctx, http.MethodGet, "/api/auth/request-signature", headers, nil, &challenge); err != nil {
		return nil, fmt.Errorf("failed to request signature challenge: %w", err)
	}
	if len(challenge.Message) == 0 {
		return nil, fmt.Errorf("signature challenge did not include message")
	}
	return challenge.Message, nil
}

func (c *AuthClient) do(
	ctx context.Context,
	method string,
	path string,
	headers map[string]string,
	payload any,
	target any,
) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		request.Header.Set(key, value)
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
		return fmt.Errorf(
			"%s %s failed with status %d: %s",
			method,
			path,
			response.StatusCode,
			strings.TrimSpace(string(responseBody)),
		)
	}
	if err := json.Unmarshal(responseBody, target); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// normalizeChallengeMessage returns the exact bytes to sign and the value to
// echo back as authData.data. String challenges are signed verbatim; object
// challenges are signed in their compact JSON form.
func normalizeChallengeMessage(raw json.RawMessage) (string, any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", nil, fmt.Errorf("signature challenge message cannot be empty")
	}

	if strings.HasPrefix(trimmed, "\"") {
		var challengeString string
		if err := json.Unmarshal(raw, &challengeString); err != nil {
			return "", nil, fmt.Errorf("failed to decode string challenge: %w", err)
		}
		if strings.TrimSpace(challengeString) == "" {
			return "", nil, fmt.Errorf("signature challenge string cannot be empty")
		}
		return challengeString, challengeString, nil
	}

	var challengeObject any
	if err := json.Unmarshal(raw, &challengeObject); err != nil {
		return "", nil, fmt.Errorf("failed to decode object challenge: %w", err)
	}
	normalizedBytes, err := json.Marshal(challengeObject)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode object challenge: %w", err)
	}

	return string(normalizedBytes), challengeObject, nil
}
