// Package inbox provides the negotiation thread API endpoints.
package inbox

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/viken-labs/ressurstorg/internal/api/middleware"
	"github.com/viken-labs/ressurstorg/internal/market"
)

// Response helpers (local to avoid import cycle)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dataResponse struct {
	Data any `json:"data"`
}

// Error codes
const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeForbidden        = "FORBIDDEN"
	errCodeConflict         = "CONFLICT"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonWith(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonOK(w http.ResponseWriter, data any) {
	jsonWith(w, http.StatusOK, data)
}

// marketError translates market sentinel errors to API responses.
func marketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrValidation):
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, strings.TrimPrefix(err.Error(), market.ErrValidation.Error()+": "))
	case errors.Is(err, market.ErrNotFound):
		jsonError(w, http.StatusNotFound, errCodeNotFound, "not found")
	case errors.Is(err, market.ErrForbidden):
		jsonError(w, http.StatusForbidden, errCodeForbidden, "access denied")
	case errors.Is(err, market.ErrAlreadyDisclosed):
		jsonError(w, http.StatusConflict, errCodeConflict, "contact already disclosed for thread")
	case errors.Is(err, market.ErrAlreadyTaken):
		jsonError(w, http.StatusConflict, errCodeConflict, "resource already taken")
	default:
		log.Printf("inbox handler error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
	}
}

// Handler handles inbox endpoints.
type Handler struct {
	manager        *market.Manager
	streamDuration time.Duration
}

// NewHandler creates a new inbox handler. streamDuration bounds the
// lifetime of one SSE connection.
func NewHandler(manager *market.Manager, streamDuration time.Duration) *Handler {
	return &Handler{
		manager:        manager,
		streamDuration: streamDuration,
	}
}

// StartRequest is the request body for opening a thread.
type StartRequest struct {
	ResourceID string `json:"resource_id"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
}

// ReplyRequest is the request body for replying in a thread.
type ReplyRequest struct {
	ResourceID string `json:"resource_id,omitempty"`
	Content    string `json:"content"`
}

// List returns all threads involving the authenticated company.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	summaries, err := h.manager.ListThreads(ctx, companyID)
	if err != nil {
		log.Printf("list threads error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, summaries)
}

// GetThread returns a full thread and stamps inbound messages read.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)
	threadID := chi.URLParam(r, "threadID")

	view, err := h.manager.LoadThread(ctx, threadID, companyID)
	if err != nil {
		marketError(w, err)
		return
	}

	jsonOK(w, view)
}

// Start opens a new thread about a resource.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}
	if req.ResourceID == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "resource_id is required")
		return
	}

	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	msg, err := h.manager.StartThread(ctx, companyID, req.ResourceID, req.Subject, req.Content)
	if err != nil {
		marketError(w, err)
		return
	}

	jsonWith(w, http.StatusCreated, msg)
}

// Reply appends a message to a thread.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)
	threadID := chi.URLParam(r, "threadID")

	msg, err := h.manager.SendReply(ctx, threadID, companyID, req.ResourceID, req.Content)
	if err != nil {
		marketError(w, err)
		return
	}

	jsonWith(w, http.StatusCreated, msg)
}

// ShareContact discloses the caller's contact details for a thread.
func (h *Handler) ShareContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)
	threadID := chi.URLParam(r, "threadID")

	disclosure, err := h.manager.ShareContact(ctx, threadID, companyID)
	if err != nil {
		marketError(w, err)
		return
	}

	jsonWith(w, http.StatusCreated, disclosure)
}

// Events streams inbox change events to the authenticated company as
// Server-Sent Events. Events carry identifiers only; the client
// re-fetches the affected thread or resource.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "streaming not supported")
		return
	}

	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sse := NewSSEWriter(w, flusher)
	if err := sse.SendRetry(3000); err != nil {
		return
	}

	events, cancel := h.manager.Broker().Subscribe(companyID)
	defer cancel()

	log.Printf("event stream opened: company %s", companyID)
	defer log.Printf("event stream closed: company %s", companyID)

	deadline := time.NewTimer(h.streamDuration)
	defer deadline.Stop()
	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			// Let the client reconnect instead of holding the
			// connection forever.
			return
		case <-keepalive.C:
			if err := sse.SendComment("keepalive"); err != nil {
				return
			}
		case event, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("event stream marshal error: %v", err)
				continue
			}
			if err := sse.SendEvent(string(event.Type), string(data)); err != nil {
				return
			}
		}
	}
}
