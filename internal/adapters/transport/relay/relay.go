package relay

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

	"github.com/bnema/haggle/internal/adapters/wire"
	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

const (
	DefaultPath = "/relayMessage"

	maxResponseBytes = 64 << 10
)

type API struct {
	BaseURL string
	Path    string
}

// Client posts outbound messages to the environment orchestrator.
type Client struct {
	API            API
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.Transport = Client{}

func (c Client) Send(ctx context.Context, msg domain.OutboundMessage) error {
	path := c.API.Path
	if path == "" {
		path = DefaultPath
	}
	endpoint, err := buildAPIURL(c.API.BaseURL, path)
	if err != nil {
		return fmt.Errorf("relay message: %w", err)
	}

	body, err := json.Marshal(wire.FromOutbound(msg))
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("relay message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The orchestrator's reply is informational; drain a bounded amount so the
	// connection can be reused.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := strings.TrimSpace(string(snippet))
		if detail == "" {
			return fmt.Errorf("relay message: unexpected status %s", resp.Status)
		}
		return fmt.Errorf("relay message: unexpected status %s: %s", resp.Status, detail)
	}
	return nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("relay base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse relay base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("relay base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("relay base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse relay path: %w", err)
	}
	return endpoint.String(), nil
}
