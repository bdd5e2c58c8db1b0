// Package httpapi exposes the agent to the environment orchestrator over
// HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bnema/haggle/internal/adapters/wire"
	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

const (
	DefaultSpeaker = "Jeff"

	maxBodyBytes = 1 << 20
)

var errEmptyBody = errors.New("empty body")

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	Service    *application.Service
	Dispatcher *application.Dispatcher
	Clock      ports.Clock
	Logger     *slog.Logger
	// DefaultSpeaker is used by the classification routes when a message
	// names no speaker.
	DefaultSpeaker string
}

// SetUtility handles POST /setUtility.
func (h *Handler) SetUtility(w http.ResponseWriter, r *http.Request) {
	var req utilityPayload
	if err := decodeBody(r, &req); err != nil {
		writeDecodeFailure(w, err, setUtilityResponse{Status: statusNoMessageBody})
		return
	}

	report, err := h.Service.SetUtility(r.Context(), req.command())
	if err != nil {
		h.logger().Warn("set utility failed", "error", err)
		writeJSON(w, http.StatusOK, setUtilityResponse{RoundID: req.RoundID, Status: failureStatus(err)})
		return
	}

	utility := fromReport(report)
	writeJSON(w, http.StatusOK, setUtilityResponse{
		RoundID: wire.RoundID(report.RoundID),
		Status:  statusAcknowledged,
		Utility: &utility,
	})
}

// StartRound handles POST /startRound. An empty body keeps the previous
// round id and duration.
func (h *Handler) StartRound(w http.ResponseWriter, r *http.Request) {
	var req startRoundRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeDecodeFailure(w, err, roundResponse{Status: statusNoMessageBody})
		return
	}

	state := h.Service.StartRound(r.Context(), req.command())
	writeJSON(w, http.StatusOK, roundResponse{RoundID: wire.RoundID(state.RoundID), Status: statusAcknowledged})
}

// EndRound handles POST /endRound.
func (h *Handler) EndRound(w http.ResponseWriter, r *http.Request) {
	state := h.Service.EndRound(r.Context())
	writeJSON(w, http.StatusOK, roundResponse{RoundID: wire.RoundID(state.RoundID), Status: statusAcknowledged})
}

// ReceiveMessage handles POST /receiveMessage. The message is acknowledged
// once admitted; any reply is relayed later.
func (h *Handler) ReceiveMessage(w http.ResponseWriter, r *http.Request) {
	var msg wire.Message
	if err := decodeBody(r, &msg); err != nil {
		writeDecodeFailure(w, err, receiveMessageResponse{Status: statusNoMessageBody})
		return
	}

	if err := h.Dispatcher.Submit(r.Context(), msg.Inbound()); err != nil {
		h.logger().Info("message not admitted", "speaker", msg.Speaker, "error", err)
		writeJSON(w, http.StatusOK, receiveMessageResponse{Status: failureStatus(err)})
		return
	}

	writeJSON(w, http.StatusOK, receiveMessageResponse{
		RoundID:        wire.RoundID(h.Service.RoundID()),
		Status:         statusAcknowledged,
		Interpretation: &msg,
	})
}

// ReceiveRejection handles POST /receiveRejection.
func (h *Handler) ReceiveRejection(w http.ResponseWriter, r *http.Request) {
	var req rejectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeDecodeFailure(w, err, rejectionResponse{Status: statusNoMessageBody})
		return
	}

	if err := h.Dispatcher.Reject(r.Context(), req.notice()); err != nil {
		writeJSON(w, http.StatusOK, rejectionResponse{Status: failureStatus(err)})
		return
	}

	writeJSON(w, http.StatusOK, rejectionResponse{
		RoundID: wire.RoundID(h.Service.RoundID()),
		Status:  statusAcknowledged,
		Message: &req,
	})
}

// ClassifyText handles GET /classifyMessage?text=.
func (h *Handler) ClassifyText(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text query parameter is required"})
		return
	}

	in := domain.InboundMessage{
		Text: text,
		MessageContext: domain.MessageContext{
			Speaker:   h.defaultSpeaker(),
			Addressee: h.Service.Status().AgentID,
			Role:      domain.RoleBuyer,
		},
	}
	h.classify(w, r, in)
}

// ClassifyMessage handles POST /classifyMessage.
func (h *Handler) ClassifyMessage(w http.ResponseWriter, r *http.Request) {
	var msg wire.Message
	if err := decodeBody(r, &msg); err != nil {
		writeDecodeError(w, err)
		return
	}
	h.classify(w, r, h.withDefaults(msg.Inbound()))
}

// ExtractBid handles POST /extractBid.
func (h *Handler) ExtractBid(w http.ResponseWriter, r *http.Request) {
	var msg wire.Message
	if err := decodeBody(r, &msg); err != nil {
		writeDecodeError(w, err)
		return
	}

	act, err := h.Service.ExtractAct(r.Context(), h.withDefaults(msg.Inbound()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.FromAct(act, h.Service.RoundID()))
}

// ReportUtility handles GET /reportUtility.
func (h *Handler) ReportUtility(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.ReportUtility()
	if err != nil {
		writeJSON(w, http.StatusOK, errorResponse{Error: errUtilityNotSetText})
		return
	}
	writeJSON(w, http.StatusOK, fromReport(report))
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.Service.Status()
	resp := healthResponse{
		Status:         "ok",
		Agent:          status.AgentID,
		Polite:         status.Polite,
		UtilitySet:     status.UtilitySet,
		RoundID:        wire.RoundID(status.Round.RoundID),
		RoundActive:    status.Round.Active,
		Counterparties: status.Counterparties,
	}
	if status.Round.Active && !status.Round.StopTime.IsZero() {
		if remaining := status.Round.StopTime.Sub(h.clock().Now()).Seconds(); remaining > 0 {
			resp.RemainingSeconds = remaining
		}
	}
	if report, err := h.Service.ReportUtility(); err == nil {
		resp.Goods = sortedGoods(report.Profile)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) classify(w http.ResponseWriter, r *http.Request, in domain.InboundMessage) {
	classification, err := h.Service.Classify(r.Context(), ports.ClassifyRequest{
		Text:      in.Text,
		Role:      in.Role,
		Addressee: in.Addressee,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromClassification(classification, h.Service.RoundID(), in.EnvironmentID))
}

func (h *Handler) withDefaults(in domain.InboundMessage) domain.InboundMessage {
	if in.Speaker == "" {
		in.Speaker = h.defaultSpeaker()
	}
	if in.Role == "" {
		in.Role = domain.RoleBuyer
	}
	return in
}

func (h *Handler) defaultSpeaker() string {
	if h.DefaultSpeaker != "" {
		return h.DefaultSpeaker
	}
	return DefaultSpeaker
}

func (h *Handler) clock() ports.Clock {
	if h.Clock != nil {
		return h.Clock
	}
	return ports.SystemClock{}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func failureStatus(err error) string {
	if errors.Is(err, domain.ErrRoundInactive) {
		return statusRoundInactive
	}
	return "Failed; " + err.Error()
}

// writeDecodeFailure answers an unreadable body. A missing body keeps the
// orchestrator's status-string protocol; malformed JSON is a client error.
func writeDecodeFailure(w http.ResponseWriter, err error, emptyBody any) {
	if errors.Is(err, errEmptyBody) {
		writeJSON(w, http.StatusOK, emptyBody)
		return
	}
	writeDecodeError(w, err)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errEmptyBody) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body is required"})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrClassificationUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrRoundInactive):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUtilityNotSet):
		status = http.StatusPreconditionFailed
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
