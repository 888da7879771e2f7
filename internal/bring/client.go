package bring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client is the gateway contract the reconciliation engine depends on.
type Client interface {
	// CurrentItems returns the list's purchase bucket in server order.
	CurrentItems(ctx context.Context) ([]Item, error)

	// AddItem puts a name on the list. Adding a name that is already
	// present is an idempotent upsert on the Bring side.
	AddItem(ctx context.Context, name string) error

	// MarkConsumed moves a name from the purchase bucket to the
	// recently-purchased bucket.
	MarkConsumed(ctx context.Context, name string) error
}

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the Bring REST endpoint, e.g. https://api.getbring.com/rest/v2.
	BaseURL string

	// APIKey is sent as X-BRING-API-KEY.
	APIKey string

	// UserUUID is sent as X-BRING-USER-UUID.
	UserUUID string

	// ListUUID selects the shopping list.
	ListUUID string

	// Timeout bounds each request. Defaults to 15s.
	Timeout time.Duration
}

// HTTPClient implements Client against the Bring REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	userUUID   string
	listUUID   string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a Bring API client.
func NewHTTPClient(cfg Config, logger *zap.Logger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.UserUUID == "" {
		return nil, fmt.Errorf("user UUID is required")
	}
	if cfg.ListUUID == "" {
		return nil, fmt.Errorf("list UUID is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		userUUID: cfg.UserUUID,
		listUUID: cfg.ListUUID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// CurrentItems returns the purchase bucket of the configured list.
func (c *HTTPClient) CurrentItems(ctx context.Context) ([]Item, error) {
	body, err := c.do(ctx, "current_items", http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &TransportError{Op: "current_items", Message: "decode list response", Err: err}
	}

	c.logger.Debug("fetched list snapshot",
		zap.Int("purchase_count", len(list.Purchase)),
		zap.Int("recently_count", len(list.Recently)))

	return list.Purchase, nil
}

// AddItem puts name on the list with an empty specification.
func (c *HTTPClient) AddItem(ctx context.Context, name string) error {
	form := url.Values{
		"purchase":      {name},
		"specification": {""},
	}
	_, err := c.do(ctx, "add_item", http.MethodPut, form)
	if err != nil {
		return err
	}

	c.logger.Debug("added item", zap.String("item", name))
	return nil
}

// MarkConsumed moves name to the recently-purchased bucket.
func (c *HTTPClient) MarkConsumed(ctx context.Context, name string) error {
	form := url.Values{
		"recently": {name},
	}
	_, err := c.do(ctx, "mark_consumed", http.MethodPut, form)
	if err != nil {
		return err
	}

	c.logger.Debug("marked item consumed", zap.String("item", name))
	return nil
}

// do performs one exchange against the list endpoint and returns the
// response body. Every failure is reported as a *TransportError.
func (c *HTTPClient) do(ctx context.Context, op, method string, form url.Values) ([]byte, error) {
	endpoint := c.baseURL + "/bringlists/" + c.listUUID

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &TransportError{Op: op, Message: "build request", Err: err}
	}

	req.Header.Set("X-BRING-API-KEY", c.apiKey)
	req.Header.Set("X-BRING-USER-UUID", c.userUUID)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}
