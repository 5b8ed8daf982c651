package mirror

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashgraph-online/nft-mint-demo-go/pkg/shared"
)

// ErrNotFound is matched by errors.Is for any 404 answer from the mirror node.
var ErrNotFound = errors.New("mirror node entity not found")

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mirror node request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Config struct {
	Network    string
	BaseURL    string
	HTTPClient *http.Client
	APIKey     string
	Headers    map[string]string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	headers    map[string]string
}

type MessageQueryOptions struct {
	SequenceNumber string
	Limit          int
	Order          string
}

// NewClient creates a mirror node client for the network, or for BaseURL
// when one is given.
func NewClient(config Config) (*Client, error) {
	network, err := shared.NormalizeNetwork(config.Network)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		if network == shared.NetworkMainnet {
			baseURL = "https://mainnet-public.mirrornode.hedera.com"
		} else {
			baseURL = "https://testnet.mirrornode.hedera.com"
		}
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid mirror base URL: %w", err)
	}
	if parsedBaseURL.Scheme != "http" && parsedBaseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid mirror base URL: scheme must be http or https")
	}
	if strings.TrimSpace(parsedBaseURL.Host) == "" {
		return nil, fmt.Errorf("invalid mirror base URL: host is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	headers := make(map[string]string, len(config.Headers))
	for key, value := range config.Headers {
		headers[key] = value
	}

	return &Client{
		baseURL:    strings.TrimRight(parsedBaseURL.String(), "/"),
		httpClient: httpClient,
		apiKey:     strings.TrimSpace(config.APIKey),
		headers:    headers,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAccount returns the account's key, memo and balance.
func (c *Client) GetAccount(ctx context.Context, accountID string) (AccountInfo, error) {
	var accountInfo AccountInfo
	normalizedAccountID := strings.TrimSpace(accountID)
	if normalizedAccountID == "" {
		return accountInfo, fmt.Errorf("account ID is required")
	}

	err := c.getJSON(ctx, "/api/v1/accounts/"+url.PathEscape(normalizedAccountID), &accountInfo)
	return accountInfo, err
}

// GetAccountBalance returns the account's balance in tinybars.
func (c *Client) GetAccountBalance(ctx context.Context, accountID string) (int64, error) {
	accountInfo, err := c.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return accountInfo.Balance.Balance, nil
}

// GetAccountKeyType returns the account key's type, such as ED25519 or
// ECDSA_SECP256K1. It is empty for key lists and threshold keys.
func (c *Client) GetAccountKeyType(ctx context.Context, accountID string) (string, error) {
	accountInfo, err := c.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	keyType, _ := accountInfo.Key["_type"].(string)
	return keyType, nil
}

// GetToken returns token level information, including royalty fees.
func (c *Client) GetToken(ctx context.Context, tokenID string) (TokenInfo, error) {
	var tokenInfo TokenInfo
	normalizedTokenID := strings.TrimSpace(tokenID)
	if normalizedTokenID == "" {
		return tokenInfo, fmt.Errorf("token ID is required")
	}

	err := c.getJSON(ctx, "/api/v1/tokens/"+url.PathEscape(normalizedTokenID), &tokenInfo)
	return tokenInfo, err
}

// GetNft returns one serial of a non-fungible token.
func (c *Client) GetNft(ctx context.Context, tokenID string, serial int64) (Nft, error) {
	var nft Nft
	normalizedTokenID := strings.TrimSpace(tokenID)
	if normalizedTokenID == "" {
		return nft, fmt.Errorf("token ID is required")
	}
	if serial <= 0 {
		return nft, fmt.Errorf("serial number must be positive")
	}

	path := fmt.Sprintf("/api/v1/tokens/%s/nfts/%d", url.PathEscape(normalizedTokenID), serial)
	err := c.getJSON(ctx, path, &nft)
	return nft, err
}

// DecodeNftMetadata returns the raw metadata bytes of an NFT.
func DecodeNftMetadata(nft Nft) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(nft.Metadata))
	if err != nil {
		return nil, fmt.Errorf("failed to decode NFT metadata: %w", err)
	}
	return decoded, nil
}

// GetTopicMessages follows links.next until every page has been read.
func (c *Client) GetTopicMessages(
	ctx context.Context,
	topicID string,
	options MessageQueryOptions,
) ([]TopicMessage, error) {
	if strings.TrimSpace(topicID) == "" {
		return nil, fmt.Errorf("topic ID is required")
	}

	values := url.Values{}
	if options.SequenceNumber != "" {
		values.Set("sequencenumber", options.SequenceNumber)
	}
	if options.Limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", options.Limit))
	}
	if options.Order != "" {
		values.Set("order", options.Order)
	}

	next := fmt.Sprintf("/api/v1/topics/%s/messages", url.PathEscape(strings.TrimSpace(topicID)))
	if encoded := values.Encode(); encoded != "" {
		next = next + "?" + encoded
	}

	result := make([]TopicMessage, 0)
	for next != "" {
		var page topicMessagesResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		result = append(result, page.Messages...)
		next = page.Links.Next
	}

	return result, nil
}

// DecodeMessageData returns the base64-decoded payload of a topic message.
func DecodeMessageData(message TopicMessage) ([]byte, error) {
	if strings.TrimSpace(message.Message) == "" {
		return nil, fmt.Errorf("message payload is empty")
	}
	return base64.StdEncoding.DecodeString(message.Message)
}

// GetTransaction returns nil without error when the mirror node knows no
// transaction with that ID yet.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	normalized := shared.NormalizeTransactionID(transactionID)
	if normalized == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}

	var response transactionsResponse
	if err := c.getJSON(ctx, "/api/v1/transactions/"+url.PathEscape(normalized), &response); err != nil {
		return nil, err
	}
	if len(response.Transactions) == 0 {
		return nil, nil
	}

	return &response.Transactions[0], nil
}

func (c *Client) getJSON(ctx context.Context, pathOrURL string, target any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolveURL(pathOrURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for key, value := range c.headers {
		request.Header.Set(key, value)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("mirror node request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read mirror node response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return &StatusError{
			StatusCode: response.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode mirror node response: %w", err)
	}

	return nil
}

func (c *Client) resolveURL(pathOrURL string) string {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL
	}
	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.baseURL + pathOrURL
}
