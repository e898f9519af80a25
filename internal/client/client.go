// Package client talks to the remote action item service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"actionTracker/internal/logger"
	"actionTracker/internal/models/actionitem"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	APIKeyHeader    = "x-api-key"
	RequestIDHeader = "X-Request-ID"
	defaultTimeout  = 15 * time.Second
)

var (
	ErrMissingBaseURL = errors.New("API base URL is missing")
	ErrMissingAPIKey  = errors.New("API key is missing")
)

// APIError is a non-2xx answer. Message is the best text the server gave.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New fails before any request is made when the base URL or key is missing.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)

	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("разбор API base URL: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every record. A non-array body yields an empty list.
func (c *Client) List(ctx context.Context) ([]actionitem.Wire, error) {
	var raw json.RawMessage
	ok, err := c.do(ctx, http.MethodGet, "/action-items", nil, &raw)
	if err != nil || !ok {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		logger.Warn("Client: Ответ списка не является массивом", zap.Int("bytes", len(raw)))
		return []actionitem.Wire{}, nil
	}

	var rows []actionitem.Wire
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("разбор списка: %w", err)
	}
	return rows, nil
}

func (c *Client) Create(ctx context.Context, payload actionitem.Payload) (*actionitem.Wire, error) {
	return c.record(ctx, http.MethodPost, "/action-items", payload)
}

func (c *Client) Update(ctx context.Context, id string, payload actionitem.Payload) (*actionitem.Wire, error) {
	return c.record(ctx, http.MethodPut, "/action-items/"+url.PathEscape(id), payload)
}

func (c *Client) SetStatus(ctx context.Context, id string, status actionitem.Status) (*actionitem.Wire, error) {
	return c.record(ctx, http.MethodPatch, "/action-items/"+url.PathEscape(id)+"/status", actionitem.StatusPayload{Status: status})
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/action-items/"+url.PathEscape(id), nil, nil)
	return err
}

// record returns nil without error for an empty or 204 answer.
func (c *Client) record(ctx context.Context, method, path string, body any) (*actionitem.Wire, error) {
	var w actionitem.Wire
	ok, err := c.do(ctx, method, path, body, &w)
	if err != nil || !ok {
		return nil, err
	}
	return &w, nil
}

// do reports whether the response carried a body that was decoded into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) (bool, error) {
	start := time.Now()
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("кодирование тела запроса: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Client: Ошибка сети",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debug("Client: Ошибка закрытия тела ответа", zap.Error(err))
		}
	}()

	// тело читается текстом до разбора: оно же нужно для сообщения об ошибке
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("чтение ответа: %w", err)
	}

	logger.Debug("Client: Ответ получен",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("ms", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, text),
		}
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(text)) == 0 || out == nil {
		return false, nil
	}
	if err := json.Unmarshal(text, out); err != nil {
		return false, fmt.Errorf("разбор ответа: %w", err)
	}
	return true, nil
}

// errorMessage prefers a JSON "message" or "error" field, then the raw text,
// then "HTTP {status}".
func errorMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("HTTP %d", status)
	}

	var parsed struct {
		Error   any `json:"error"`
		Message any `json:"message"`
	}
	if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &parsed) == nil {
		if s, ok := parsed.Message.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
		if s, ok := parsed.Error.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return text
}
