package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrUnavailable marks every failed gateway call: transport errors, bad HTTP
// statuses and non-zero envelope codes all wrap it, so callers can select the
// fallback path with a single errors.Is check.
var ErrUnavailable = errors.New("remote unavailable")

// APIError is a response the server delivered but rejected (code != 0).
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return ErrUnavailable }

// envelope is the wire format of every endpoint: code 0 means success and
// data is populated, anything else is a failure described by message.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

// do performs one request and returns the envelope data on success. Each call
// is attempted exactly once; retry policy belongs to the server side of this
// API, not here.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	c.log.Debug("gateway request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	c.log.Debug("gateway response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", err, ErrUnavailable)
	}
	if env.Code != 0 {
		return nil, &APIError{Code: env.Code, Message: env.Message}
	}

	return env.Data, nil
}

func decodeData(data json.RawMessage, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode data: %w: %w", err, ErrUnavailable)
	}
	return nil
}
