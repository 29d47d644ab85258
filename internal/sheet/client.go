package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

// Logical table names used by the script endpoints.
const (
	SheetKantins      = "AkunKantin"
	SheetTransactions = "Pesanan"
	SheetMenus        = "Menus"
)

// Action values accepted by the script's POST handler.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Client talks to the per-vendor spreadsheet script endpoints. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	retries    uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries sets how many times a read is retried on transport failure.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.retries = n }
}

// NewClient creates a gateway client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		retries:    1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type mutation struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Fetch reads all rows of the named sheet. Transient transport failures are
// retried; config, format and app errors are not.
func (c *Client) Fetch(ctx context.Context, scriptURL, sheetName string) ([]Row, error) {
	if scriptURL == "" {
		return nil, newError(KindConfig, "script URL is not configured")
	}

	var rows []Row
	backoff := retry.WithMaxRetries(c.retries, retry.NewConstant(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		rows, err = c.do(ctx, http.MethodGet, scriptURL, sheetName, nil)
		if KindOf(err) == KindTransport {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create appends a row to the named sheet.
func (c *Client) Create(ctx context.Context, scriptURL, sheetName string, data any) error {
	return c.mutate(ctx, scriptURL, sheetName, mutation{Action: ActionCreate, Data: data})
}

// Update rewrites the row with the given id.
func (c *Client) Update(ctx context.Context, scriptURL, sheetName, id string, data any) error {
	return c.mutate(ctx, scriptURL, sheetName, mutation{Action: ActionUpdate, ID: id, Data: data})
}

// Delete removes the row with the given id.
func (c *Client) Delete(ctx context.Context, scriptURL, sheetName, id string) error {
	return c.mutate(ctx, scriptURL, sheetName, mutation{Action: ActionDelete, ID: id})
}

func (c *Client) mutate(ctx context.Context, scriptURL, sheetName string, m mutation) error {
	if scriptURL == "" {
		return newError(KindConfig, "script URL is not configured")
	}
	_, err := c.do(ctx, http.MethodPost, scriptURL, sheetName, &m)
	return err
}

func (c *Client) do(ctx context.Context, method, scriptURL, sheetName string, m *mutation) ([]Row, error) {
	u, err := url.Parse(scriptURL)
	if err != nil {
		return nil, wrapError(KindConfig, "invalid script URL", err)
	}

	// Cache-busting params; the script host aggressively caches GETs.
	q := u.Query()
	q.Set("sheet", sheetName)
	q.Set("t", fmt.Sprintf("%d", time.Now().UnixMilli()))
	q.Set("r", fmt.Sprintf("%06x", rand.Int32N(1<<24)))
	u.RawQuery = q.Encode()

	var body io.Reader
	if m != nil {
		payload, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal mutation: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapError(KindTransport, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, wrapError(KindTransport, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindTransport, fmt.Sprintf("script returned HTTP %d", resp.StatusCode))
	}

	rows, err := ParseResponse(raw)
	if err != nil {
		c.logger.Warn("sheet response rejected",
			"sheet", sheetName,
			"kind", string(KindOf(err)),
			"error", err)
		return nil, err
	}
	return rows, nil
}
