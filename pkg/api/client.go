// Package api is the typed client for the chain-abstraction backend. All
// quoting, routing, settlement and balance aggregation happen server-side;
// this client only shapes requests and decodes responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"omniswap/pkg/types"
)

// APIKeyHeader carries the backend credential on every request.
const APIKeyHeader = "x-api-key"

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx response decoded from the backend's {message, error}
// envelope.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status code %d", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the swap backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a backend client for the given base URL and API key.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAssets retrieves the aggregated asset reference list.
func (c *Client) ListAssets(ctx context.Context) ([]types.Asset, error) {
	var assets []types.Asset
	if err := c.getJSON(ctx, "/api/assets/list", nil, &assets); err != nil {
		return nil, fmt.Errorf("failed to get assets: %w", err)
	}
	return assets, nil
}

// SupportedChains retrieves the supported chain list.
func (c *Client) SupportedChains(ctx context.Context) ([]types.Chain, error) {
	var chains []types.Chain
	if err := c.getJSON(ctx, "/api/chains/supported-list", nil, &chains); err != nil {
		return nil, fmt.Errorf("failed to get chains: %w", err)
	}
	return chains, nil
}

// FindAsset looks up an aggregated asset by symbol, exact match first.
func (c *Client) FindAsset(ctx context.Context, symbol string) (*types.Asset, error) {
	assets, err := c.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if strings.EqualFold(assets[i].Symbol, symbol) {
			return &assets[i], nil
		}
	}
	upper := strings.ToUpper(symbol)
	for i := range assets {
		if strings.Contains(strings.ToUpper(assets[i].Symbol), upper) {
			return &assets[i], nil
		}
	}
	return nil, fmt.Errorf("asset '%s' not found", symbol)
}

// PredictAddress computes the deterministic smart-account address for a
// session/admin key pair before the account is deployed.
func (c *Client) PredictAddress(ctx context.Context, sessionAddress, adminAddress string) (string, error) {
	body := map[string]string{
		"sessionAddress": sessionAddress,
		"adminAddress":   adminAddress,
	}
	var resp struct {
		PredictedAddress string `json:"predictedAddress"`
	}
	if err := c.postJSON(ctx, "/api/account/predict-address", body, &resp); err != nil {
		return "", fmt.Errorf("failed to predict address: %w", err)
	}
	if resp.PredictedAddress == "" {
		return "", fmt.Errorf("empty predicted address in response")
	}
	return resp.PredictedAddress, nil
}

// SwapQuote requests a quote for the given asset pair and amount.
func (c *Client) SwapQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	var quote types.Quote
	if err := c.postJSON(ctx, "/api/quotes/swap-quote", req, &quote); err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.ID == "" {
		return nil, fmt.Errorf("empty quote response")
	}
	return &quote, nil
}

// ExecuteQuote submits a fully signed quote for settlement.
func (c *Client) ExecuteQuote(ctx context.Context, signed *types.SignedQuote) error {
	if err := c.postJSON(ctx, "/api/quotes/execute-quote", signed, nil); err != nil {
		return fmt.Errorf("failed to execute quote: %w", err)
	}
	return nil
}

// ExecutionStatus fetches the current execution status for a quote id.
func (c *Client) ExecutionStatus(ctx context.Context, quoteID string) (*types.QuoteStatus, error) {
	query := url.Values{}
	query.Set("quoteId", quoteID)
	var status types.QuoteStatus
	if err := c.getJSON(ctx, "/api/status/get-execution-status", query, &status); err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	if status.QuoteID == "" {
		status.QuoteID = quoteID
	}
	return &status, nil
}

// TransactionHistory fetches a page of swap history for a user address.
// Pass the previous page's continuation token to fetch the next page.
func (c *Client) TransactionHistory(ctx context.Context, user string, limit int, continuation string) (*types.TransactionPage, error) {
	query := url.Values{}
	query.Set("user", user)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if continuation != "" {
		query.Set("continuation", continuation)
	}
	var page types.TransactionPage
	if err := c.getJSON(ctx, "/status/get-tx-history", query, &page); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return &page, nil
}

// AggregatedBalance fetches balances for an account, optionally scoped to a
// single aggregated asset or a chain-specific asset id.
func (c *Client) AggregatedBalance(ctx context.Context, account, aggregatedAssetID, assetID string) (*types.AggregatedBalance, error) {
	query := url.Values{}
	query.Set("account", account)
	if aggregatedAssetID != "" {
		query.Set("aggregatedAssetId", aggregatedAssetID)
	}
	if assetID != "" {
		query.Set("assetId", assetID)
	}
	var balance types.AggregatedBalance
	if err := c.getJSON(ctx, "/v3/balances/aggregated-balance", query, &balance); err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	return &balance, nil
}

// LegacyAggregatedBalance fetches balances through the legacy v2 endpoint,
// which keys by plain address instead of account.
func (c *Client) LegacyAggregatedBalance(ctx context.Context, address string) (*types.AggregatedBalance, error) {
	query := url.Values{}
	query.Set("address", address)
	var balance types.AggregatedBalance
	if err := c.getJSON(ctx, "/v2/balances/aggregated-balance", query, &balance); err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	return &balance, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the backend's {message, error} envelope; when the
// body is not that shape the raw text is kept for the operator.
func decodeAPIError(statusCode int, body []byte) *APIError {
	var envelope struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return &APIError{StatusCode: statusCode, Message: envelope.Message, Detail: envelope.Err}
	}
	if len(body) > 0 {
		return &APIError{StatusCode: statusCode, Message: string(body)}
	}
	return &APIError{StatusCode: statusCode}
}
