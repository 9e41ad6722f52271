package api

// API CLIENT

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
	"tintas-bot/internal/storage"

	"go.uber.org/zap"
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.Code, e.Message)
}

// IsBadRequest reports whether err is a 400 answer from the API.
func IsBadRequest(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusBadRequest
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) CalculatePaint(ctx context.Context, req PaintRequest) (*PaintResponse, error) {
	var resp PaintResponse
	if err := c.do(ctx, http.MethodPost, "/api/calculate-paint", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CalculateFloor(ctx context.Context, req FloorRequest) (*FloorResponse, error) {
	var resp FloorResponse
	if err := c.do(ctx, http.MethodPost, "/api/calculate-floor", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	var resp QuoteResponse
	if err := c.do(ctx, http.MethodPost, "/api/quote", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]storage.Product, error) {
	var resp ProductsResponse
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*storage.Product, error) {
	var product storage.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		c.logger.Debug("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", apiErr.Error))
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
