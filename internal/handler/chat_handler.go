package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dishdash/internal/dialogue"
	"dishdash/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ChatRequest is one inbound user message.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// PaymentActionRequest triggers a payment action for a reference.
type PaymentActionRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// SessionResponse is returned when a conversation is opened.
type SessionResponse struct {
	SessionID string          `json:"sessionId"`
	Reply     *dialogue.Reply `json:"reply"`
}

// ChatHandler handles conversation HTTP requests.
type ChatHandler struct {
	controller dialogue.Controller
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(controller dialogue.Controller, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		controller: controller,
		validate:   validator.New(),
		logger:     logger.With().Str("handler", "chat").Logger(),
	}
}

// CreateSession handles POST /api/sessions requests.
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	id, reply := h.controller.Start(r.Context())

	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: id, Reply: reply})
}

// PostMessage handles POST /api/sessions/{id}/messages requests.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	sessionID, ok := sessionIDFromPath(r.URL.Path, "/messages")
	if !ok {
		writeError(w, http.StatusBadRequest, "session ID is required", h.logger)
		return
	}

	var req ChatRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	reply, err := h.controller.HandleMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		h.replyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// PayNow handles POST /api/sessions/{id}/payments/pay requests.
func (h *ChatHandler) PayNow(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, "/payments/pay", h.controller.PayNow)
}

// VerifyPayment handles POST /api/sessions/{id}/payments/verify requests.
func (h *ChatHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	h.paymentAction(w, r, "/payments/verify", h.controller.VerifyPayment)
}

func (h *ChatHandler) paymentAction(
	w http.ResponseWriter,
	r *http.Request,
	suffix string,
	action func(ctx context.Context, sessionID, reference string) (*dialogue.Reply, error),
) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	sessionID, ok := sessionIDFromPath(r.URL.Path, suffix)
	if !ok {
		writeError(w, http.StatusBadRequest, "session ID is required", h.logger)
		return
	}

	var req PaymentActionRequest
	if err := h.bind(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	reply, err := action(r.Context(), sessionID, req.Reference)
	if err != nil {
		h.replyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func sessionIDFromPath(path, suffix string) (string, bool) {
	const prefix = "/api/sessions/"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func (h *ChatHandler) bind(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return errors.New("invalid request body")
	}
	if err := h.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New("validation failed on field " + verrs[0].Field())
		}
		return errors.New("validation failed")
	}
	return nil
}

func (h *ChatHandler) replyError(w http.ResponseWriter, err error) {
	var de *model.DomainError
	if errors.As(err, &de) && de.Code == model.ErrCodeSessionNotFound {
		writeError(w, http.StatusNotFound, de.Message, h.logger)
		return
	}
	writeError(w, http.StatusInternalServerError, "failed to process message", h.logger)
}
