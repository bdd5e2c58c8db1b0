package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

const (
	DefaultVersion = "2020-04-01"

	maxResponseBytes = 1 << 20

	entityNumber    = "sys-number"
	entityCurrency  = "sys-currency"
	entityGood      = "good"
	entityAddressee = "avatarName"
)

var (
	errSessionRejected = errors.New("assistant session rejected")
	whitespaceRun      = regexp.MustCompile(`[\t\r\n]+`)
)

type API struct {
	BaseURL     string
	AssistantID string
	Version     string
}

// Client classifies messages with an assistant-style v2 API. It keeps one
// session and renews it once when the service rejects it.
type Client struct {
	API            API
	APIKey         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration

	mu        sync.Mutex
	sessionID string
}

var _ ports.Classifier = (*Client)(nil)

type messageRequest struct {
	Input messageInput `json:"input"`
}

type messageInput struct {
	MessageType string         `json:"message_type"`
	Text        string         `json:"text"`
	Options     messageOptions `json:"options"`
}

type messageOptions struct {
	AlternateIntents bool `json:"alternate_intents"`
	ReturnContext    bool `json:"return_context"`
}

type messageResponse struct {
	Output struct {
		Intents  []intentPayload `json:"intents"`
		Entities []entityPayload `json:"entities"`
	} `json:"output"`
}

type intentPayload struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type entityPayload struct {
	Entity   string `json:"entity"`
	Value    string `json:"value"`
	Location []int  `json:"location"`
	Metadata struct {
		NumericValue *float64 `json:"numeric_value"`
		Unit         string   `json:"unit"`
	} `json:"metadata"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (c *Client) Classify(ctx context.Context, req ports.ClassifyRequest) (domain.Classification, error) {
	text := NormalizeText(req.Text)
	if text == "" {
		return domain.Classification{}, unavailable("text is required")
	}

	sessionID, err := c.session(ctx, "")
	if err != nil {
		return domain.Classification{}, err
	}

	payload, err := c.message(ctx, sessionID, text)
	if errors.Is(err, errSessionRejected) {
		sessionID, err = c.session(ctx, sessionID)
		if err != nil {
			return domain.Classification{}, err
		}
		payload, err = c.message(ctx, sessionID, text)
	}
	if err != nil {
		return domain.Classification{}, unavailable("send message: %w", err)
	}

	return toClassification(payload), nil
}

// NormalizeText folds tabs and line breaks into single spaces.
func NormalizeText(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// session returns the cached session, creating a new one when there is none
// or when the cached one equals stale.
func (c *Client) session(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != "" && c.sessionID != stale {
		return c.sessionID, nil
	}

	sessionID, err := c.createSession(ctx)
	if err != nil {
		return "", unavailable("create session: %w", err)
	}
	c.sessionID = sessionID
	return sessionID, nil
}

func (c *Client) createSession(ctx context.Context) (string, error) {
	endpoint, err := c.endpoint("sessions")
	if err != nil {
		return "", err
	}

	var payload sessionResponse
	if err := c.post(ctx, endpoint, nil, &payload); err != nil {
		return "", err
	}
	if payload.SessionID == "" {
		return "", errors.New("session response missing session_id")
	}
	return payload.SessionID, nil
}

func (c *Client) message(ctx context.Context, sessionID, text string) (messageResponse, error) {
	endpoint, err := c.endpoint("sessions/" + url.PathEscape(sessionID) + "/message")
	if err != nil {
		return messageResponse{}, err
	}

	body := messageRequest{Input: messageInput{
		MessageType: "text",
		Text:        text,
		Options:     messageOptions{AlternateIntents: true, ReturnContext: true},
	}}

	var payload messageResponse
	if err := c.post(ctx, endpoint, body, &payload); err != nil {
		return messageResponse{}, err
	}
	return payload, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Watson-Learning-Opt-Out", "true")
	if c.APIKey != "" {
		req.SetBasicAuth("apikey", c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", errSessionRejected, decodeError(resp))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status: %s", decodeError(resp))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) endpoint(suffix string) (string, error) {
	if c.API.AssistantID == "" {
		return "", errors.New("assistant id is required")
	}
	base, err := buildAPIURL(c.API.BaseURL, "v2/assistants/"+url.PathEscape(c.API.AssistantID)+"/"+suffix)
	if err != nil {
		return "", err
	}

	version := c.API.Version
	if version == "" {
		version = DefaultVersion
	}
	return base + "?version=" + url.QueryEscape(version), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func toClassification(payload messageResponse) domain.Classification {
	out := domain.Classification{
		Intents:  make([]domain.Intent, 0, len(payload.Output.Intents)),
		Entities: make([]domain.Entity, 0, len(payload.Output.Entities)),
	}
	for _, intent := range payload.Output.Intents {
		out.Intents = append(out.Intents, domain.Intent{Label: intent.Intent, Confidence: intent.Confidence})
	}

	entities := append([]entityPayload(nil), payload.Output.Entities...)
	sort.SliceStable(entities, func(i, j int) bool {
		return entityStart(entities[i]) < entityStart(entities[j])
	})
	for _, entity := range entities {
		out.Entities = append(out.Entities, toEntity(entity))
	}
	return out
}

// entityStart orders entities by text position. Entities without a location
// keep their relative order at the front.
func entityStart(entity entityPayload) int {
	if len(entity.Location) == 0 {
		return -1
	}
	return entity.Location[0]
}

func toEntity(entity entityPayload) domain.Entity {
	out := domain.Entity{Kind: domain.EntityOther, Value: entity.Value}
	switch entity.Entity {
	case entityNumber:
		out.Kind = domain.EntityNumber
		out.Number = numericValue(entity)
	case entityCurrency:
		out.Kind = domain.EntityCurrency
		out.Number = numericValue(entity)
		out.Unit = entity.Metadata.Unit
	case entityGood:
		out.Kind = domain.EntityGood
	case entityAddressee:
		out.Kind = domain.EntityAddressee
	}
	return out
}

func numericValue(entity entityPayload) float64 {
	if entity.Metadata.NumericValue != nil {
		return *entity.Metadata.NumericValue
	}
	value, err := strconv.ParseFloat(entity.Value, 64)
	if err != nil {
		return 0
	}
	return value
}

func decodeError(resp *http.Response) string {
	var payload errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil || payload.Error == "" {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, payload.Error)
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %w", domain.ErrClassificationUnavailable, fmt.Errorf(format, args...))
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	// Keep any instance path on the base URL.
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
