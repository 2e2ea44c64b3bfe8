package shield

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultRequestTimeout = 5 * time.Second

	apiKeyHeader = "X-API-Key"
)

// ClientConfig holds settings for the sync client
type ClientConfig struct {
	// BaseURL is the server root, e.g. "https://game.example.com"
	BaseURL string
	// APIKey is sent on every request
	APIKey string
	// ConnectTimeout and RequestTimeout bound each call (default 5s each)
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	// HTTPClient overrides the built client (optional, mainly for tests)
	HTTPClient *http.Client
}

// SyncClient speaks the guardian wire protocol over HTTP. Timeouts are
// soft failures: the caller logs and moves on, retry policy is not the
// client's job.
type SyncClient struct {
	cfg  ClientConfig
	http *http.Client
}

// Ensure SyncClient satisfies the guardian's Reporter contract
var _ Reporter = (*SyncClient)(nil)

// NewSyncClient creates a client for the given server
func NewSyncClient(cfg ClientConfig) *SyncClient {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.ConnectTimeout,
				}).DialContext,
			},
		}
	}

	return &SyncClient{
		cfg:  cfg,
		http: httpClient,
	}
}

// Report sends a tampering report. A 403 with a ban action is a valid
// answer, not an error.
func (c *SyncClient) Report(ctx context.Context, report TamperingReport) (*TamperingResult, error) {
	var result TamperingResult
	if err := c.post(ctx, "/api/log-tampering", report, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates or updates the player on the server
func (c *SyncClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var result RegisterResult
	if err := c.post(ctx, "/api/register-player", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Sync submits the local value mirror and returns the server's verdict
func (c *SyncClient) Sync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	var result SyncResult
	if err := c.post(ctx, "/api/sync-game-values", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// post sends a JSON body and decodes the JSON answer. Status codes that
// carry a protocol verdict (200, 403) decode normally; anything else is
// an error.
func (c *SyncClient) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusForbidden:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", path, err)
		}
		return nil
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s answered %d: %s", path, resp.StatusCode, snippet)
	}
}
