// Package voice talks to the conversational-voice provider that runs the
// voice intro. Only session setup happens server side: the client app opens
// the realtime connection itself with the signed URL returned here.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-dating-onboarding/internal/domain"
)

// Provider starts voice conversations with an agent.
type Provider interface {
	StartConversation(ctx context.Context, agentID string) (signedURL string, err error)
}

// Client requests signed conversation URLs from the provider's HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type signedURLResponse struct {
	SignedURL string `json:"signed_url"`
}

func (c *Client) StartConversation(ctx context.Context, agentID string) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("voice agent id not configured: %w", domain.ErrUnavailable)
	}
	u := c.baseURL + "/v1/convai/conversation/get_signed_url?agent_id=" + url.QueryEscape(agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("voice provider request: %w", domain.ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("voice provider rejected request", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("voice provider status %d: %w", resp.StatusCode, domain.ErrUnavailable)
	}
	var out signedURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.Warn("voice provider sent an unreadable response", "err", err)
		return "", fmt.Errorf("decode voice provider response: %w", domain.ErrUnavailable)
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("voice provider returned no signed url: %w", domain.ErrUnavailable)
	}
	return out.SignedURL, nil
}

// Stub is used when no provider key is configured. Conversations start
// without a signed URL so the flow can be exercised end to end in development.
type Stub struct{}

func (Stub) StartConversation(_ context.Context, agentID string) (string, error) {
	slog.Info("voice conversation not started, no provider configured", "agent_id", agentID)
	return "", nil
}
