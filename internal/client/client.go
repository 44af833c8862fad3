package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"bitslow-market/internal/middlewares"

	"github.com/go-resty/resty/v2"
)

// Client is the caller-side wrapper over the marketplace API. When a
// request comes back 401 it exchanges the stored refresh token for a
// new access token and retries the original request exactly once; the
// retried response is returned unconditionally. If the exchange fails
// the original 401 is returned unchanged. This bounds every logical
// call to at most two round-trips plus one refresh.
type Client struct {
	rest *resty.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func New(baseURL, accessToken, refreshToken string) *Client {
	return &Client{
		rest:         resty.New().SetBaseURL(baseURL),
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

// Do executes one authenticated request with the refresh-and-retry
// protocol. body may be nil; result, when non-nil, receives the decoded
// success payload.
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}) (*resty.Response, error) {
	resp, err := c.send(ctx, method, path, body, result, c.token())
	if err != nil {
		return nil, fmt.Errorf("client.Do: %w", err)
	}

	if resp.StatusCode() != http.StatusUnauthorized {
		return resp, nil
	}

	newToken, refreshErr := c.refresh(ctx)
	if refreshErr != nil {
		// The refresh leg failed; hand back the original 401 as-is.
		return resp, nil
	}

	retried, err := c.send(ctx, method, path, body, result, newToken)
	if err != nil {
		return nil, fmt.Errorf("client.Do: retry: %w", err)
	}

	// No further retries regardless of the retried status.
	return retried, nil
}

// BuyCoin purchases coinID for the authenticated client.
func (c *Client) BuyCoin(ctx context.Context, coinID int64) (*resty.Response, error) {
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("/api/buy/%d", coinID), nil, nil)
}

// GenerateCoin mints a coin with the given components and value. The
// triple and amount travel as headers per the wire contract.
func (c *Client) GenerateCoin(ctx context.Context, bit1, bit2, bit3 int, amount float64) (*resty.Response, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetHeader(middlewares.TokenHeader, c.token()).
		SetHeader("Bit1", fmt.Sprintf("%d", bit1)).
		SetHeader("Bit2", fmt.Sprintf("%d", bit2)).
		SetHeader("Bit3", fmt.Sprintf("%d", bit3)).
		SetHeader("Amount", fmt.Sprintf("%g", amount))

	resp, err := req.Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("client.GenerateCoin: %w", err)
	}

	if resp.StatusCode() != http.StatusUnauthorized {
		return resp, nil
	}

	newToken, refreshErr := c.refresh(ctx)
	if refreshErr != nil {
		return resp, nil
	}

	retried, err := req.SetHeader(middlewares.TokenHeader, newToken).Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("client.GenerateCoin: retry: %w", err)
	}

	return retried, nil
}

func (c *Client) send(ctx context.Context, method, path string, body, result interface{}, token string) (*resty.Response, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetHeader(middlewares.TokenHeader, token)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	return req.Execute(method, path)
}

// refresh exchanges the stored refresh token for a new access token and
// remembers it for subsequent calls.
func (c *Client) refresh(ctx context.Context) (string, error) {
	type refreshResponse struct {
		AccessToken string `json:"accessToken"`
	}

	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	var out refreshResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader(middlewares.TokenHeader, refreshToken).
		SetResult(&out).
		Get("/api/refresh")
	if err != nil {
		return "", fmt.Errorf("client.refresh: %w", err)
	}
	if resp.IsError() || out.AccessToken == "" {
		return "", fmt.Errorf("client.refresh: status %d", resp.StatusCode())
	}

	c.mu.Lock()
	c.accessToken = out.AccessToken
	c.mu.Unlock()

	return out.AccessToken, nil
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}
