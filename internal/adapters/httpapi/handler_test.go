package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/haggle/internal/adapters/render/text"
	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
	"github.com/bnema/haggle/internal/ports/mocks"
)

const bakeryUtility = `{
	"roundId": 3,
	"name": "Celia",
	"currencyUnit": "USD",
	"utility": {"egg": {"type": "unitcost", "parameters": {"unitcost": 0.1}}}
}`

type apiHarness struct {
	routes     http.Handler
	service    *application.Service
	dispatcher *application.Dispatcher
	classifier *mocks.MockClassifier
	transport  *recordingTransport
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	classifier := mocks.NewMockClassifier(t)
	random := ports.NewRandom(1)
	service := application.NewService(classifier, text.NewRenderer(random), random, nil, application.Options{Logger: logger})
	transport := &recordingTransport{}
	dispatcher := application.NewDispatcher(service, transport, logger)

	return &apiHarness{
		routes:     Routes(&Handler{Service: service, Dispatcher: dispatcher, Logger: logger}),
		service:    service,
		dispatcher: dispatcher,
		classifier: classifier,
		transport:  transport,
	}
}

func (h *apiHarness) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	h.routes.ServeHTTP(w, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	return w, decoded
}

func (h *apiHarness) openRound(t *testing.T) {
	t.Helper()

	_, resp := h.do(t, http.MethodPost, "/setUtility", bakeryUtility)
	require.Equal(t, "Acknowledged", resp["status"])
	_, resp = h.do(t, http.MethodPost, "/startRound", `{"roundId":3,"roundDuration":600}`)
	require.Equal(t, "Acknowledged", resp["status"])
}

func offerClassification() domain.Classification {
	return domain.Classification{
		Intents: []domain.Intent{{Label: domain.IntentOffer, Confidence: 0.9}},
		Entities: []domain.Entity{
			{Kind: domain.EntityNumber, Value: "12", Number: 12},
			{Kind: domain.EntityGood, Value: "egg"},
			{Kind: domain.EntityCurrency, Value: "5", Number: 5, Unit: "USD"},
		},
	}
}

func TestSetUtilityAndReport(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)

	_, resp := h.do(t, http.MethodGet, "/reportUtility", "")
	assert.Equal(t, "utilityInfo not initialized.", resp["error"])

	w, resp := h.do(t, http.MethodPost, "/setUtility", bakeryUtility)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acknowledged", resp["status"])
	assert.EqualValues(t, 3, resp["roundId"])
	utility := resp["utility"].(map[string]any)
	assert.Equal(t, "Celia", utility["name"])

	_, resp = h.do(t, http.MethodGet, "/reportUtility", "")
	assert.EqualValues(t, 3, resp["roundId"])
	assert.Equal(t, "USD", resp["currencyUnit"])
	egg := resp["utility"].(map[string]any)["egg"].(map[string]any)
	assert.Equal(t, "unitcost", egg["type"])
	assert.InDelta(t, 0.1, egg["parameters"].(map[string]any)["unitcost"], 1e-9)
	assert.Equal(t, "Celia", h.service.Status().AgentID)
}

func TestSetUtilityFailures(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)

	w, resp := h.do(t, http.MethodPost, "/setUtility", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Failed; no message body", resp["status"])
	assert.Nil(t, resp["utility"])

	_, resp = h.do(t, http.MethodPost, "/setUtility", `{"utility":{"egg":{"parameters":{"unitcost":0.1}}}}`)
	assert.Contains(t, resp["status"], "Failed; malformed input")
	assert.Nil(t, resp["utility"])

	w, resp = h.do(t, http.MethodPost, "/setUtility", `{"currencyUnit":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "invalid request body")
}

func TestRoundLifecycle(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)

	_, resp := h.do(t, http.MethodPost, "/startRound", `{"roundId":"7","roundDuration":120}`)
	assert.Equal(t, "Acknowledged", resp["status"])
	assert.EqualValues(t, 7, resp["roundId"])
	assert.True(t, h.service.Status().Round.Active)

	_, resp = h.do(t, http.MethodPost, "/startRound", "")
	assert.Equal(t, "Acknowledged", resp["status"])
	assert.EqualValues(t, 7, resp["roundId"])
	assert.Equal(t, "2m0s", h.service.Status().Round.Duration.String())

	_, resp = h.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, true, resp["roundActive"])
	assert.Greater(t, resp["remainingSeconds"], 0.0)

	_, resp = h.do(t, http.MethodPost, "/endRound", "")
	assert.Equal(t, "Acknowledged", resp["status"])
	assert.False(t, h.service.Status().Round.Active)
}

func TestReceiveMessageRelaysDecision(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	h.openRound(t)
	h.classifier.EXPECT().Classify(mock.Anything, ports.ClassifyRequest{
		Text: "12 eggs for $5", Role: domain.RoleBuyer, Addressee: "Celia",
	}).Return(offerClassification(), nil).Once()

	_, resp := h.do(t, http.MethodPost, "/receiveMessage",
		`{"text":"12 eggs for $5","speaker":"Jeff","addressee":"Celia","role":"buyer","roundId":3,"environmentUUID":"env-1"}`)
	assert.Equal(t, "Acknowledged", resp["status"])
	assert.EqualValues(t, 3, resp["roundId"])
	assert.Equal(t, "12 eggs for $5", resp["interpretation"].(map[string]any)["text"])

	h.dispatcher.Wait()
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Celia", sent[0].Speaker)
	assert.Equal(t, "Jeff", sent[0].Addressee)
	assert.Equal(t, "3", sent[0].RoundID)
	assert.Equal(t, "env-1", sent[0].EnvironmentID)
	require.NotNil(t, sent[0].Bid)
	assert.Equal(t, domain.BidAccept, sent[0].Bid.Type)
	assert.Equal(t, "5", sent[0].Bid.Price.Value.String())
}

func TestReceiveMessageRejections(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)

	_, resp := h.do(t, http.MethodPost, "/receiveMessage", `{"text":"hello","speaker":"Jeff"}`)
	assert.Equal(t, "Failed; round not active", resp["status"])

	h.openRound(t)

	_, resp = h.do(t, http.MethodPost, "/receiveMessage", "")
	assert.Equal(t, "Failed; no message body", resp["status"])

	_, resp = h.do(t, http.MethodPost, "/receiveMessage", `{"text":"hello"}`)
	assert.Contains(t, resp["status"], "speaker is required")

	h.dispatcher.Wait()
	assert.Empty(t, h.transport.messages())
}

func TestReceiveRejectionSendsCourtesyMessage(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	h.openRound(t)

	_, resp := h.do(t, http.MethodPost, "/receiveRejection", `{
		"rationale":"Insufficient budget",
		"text":"Okay! I'm selling you 12 egg(s) for 5 USD.",
		"speaker":"Celia","addressee":"Jeff","role":"seller","roundId":3,
		"bid":{"type":"Accept","price":{"value":5,"unit":"USD"},"quantity":{"egg":12}}
	}`)
	assert.Equal(t, "Acknowledged", resp["status"])
	assert.Equal(t, "Insufficient budget", resp["message"].(map[string]any)["rationale"])

	h.dispatcher.Wait()
	sent := h.transport.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Jeff", sent[0].Addressee)
	assert.Contains(t, sent[0].Text, "I'm sorry, Jeff.")
	assert.Nil(t, sent[0].Bid)

	_, resp = h.do(t, http.MethodPost, "/receiveRejection", `{"rationale":"Too late","speaker":"Celia","addressee":"Jeff"}`)
	assert.Equal(t, "Acknowledged", resp["status"])
	h.dispatcher.Wait()
	assert.Len(t, h.transport.messages(), 1)
}

func TestClassifyRoutes(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	h.classifier.EXPECT().Classify(mock.Anything, ports.ClassifyRequest{
		Text: "12 eggs for $5", Role: domain.RoleBuyer, Addressee: application.DefaultAgentID,
	}).Return(offerClassification(), nil).Once()
	h.classifier.EXPECT().Classify(mock.Anything, ports.ClassifyRequest{
		Text: "how about 6 eggs", Role: domain.RoleBuyer,
	}).Return(domain.Classification{
		Intents:  []domain.Intent{{Label: domain.IntentOffer, Confidence: 0.8}},
		Entities: []domain.Entity{{Kind: domain.EntityNumber, Number: 6}, {Kind: domain.EntityGood, Value: "egg"}},
	}, nil).Once()

	_, resp := h.do(t, http.MethodGet, "/classifyMessage?text=12+eggs+for+%245", "")
	intents := resp["intents"].([]any)
	require.Len(t, intents, 1)
	assert.Equal(t, "Offer", intents[0].(map[string]any)["intent"])
	entities := resp["entities"].([]any)
	require.Len(t, entities, 3)
	assert.Equal(t, "currency", entities[2].(map[string]any)["entity"])
	assert.EqualValues(t, 5, entities[2].(map[string]any)["number"])

	_, resp = h.do(t, http.MethodPost, "/extractBid", `{"text":"how about 6 eggs"}`)
	assert.Equal(t, "BuyRequest", resp["type"])
	assert.EqualValues(t, 6, resp["quantity"].(map[string]any)["egg"])
	assert.Nil(t, resp["price"])
}

func TestClassifyRouteErrors(t *testing.T) {
	t.Parallel()

	h := newAPIHarness(t)
	h.classifier.EXPECT().Classify(mock.Anything, mock.Anything).
		Return(domain.Classification{}, errors.New("connection refused")).Once()

	w, resp := h.do(t, http.MethodPost, "/classifyMessage", `{"text":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, resp["error"], "classification unavailable")

	w, _ = h.do(t, http.MethodGet, "/classifyMessage", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(t, http.MethodPost, "/extractBid", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []domain.OutboundMessage
}

func (r *recordingTransport) Send(_ context.Context, msg domain.OutboundMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingTransport) messages() []domain.OutboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.OutboundMessage(nil), r.sent...)
}
