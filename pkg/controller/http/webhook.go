package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	githubcontroller "github.com/m-mizutani/spotless-bot/pkg/controller/github"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
	"github.com/m-mizutani/spotless-bot/pkg/utils/errs"
)

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	secret    string
	processor *githubcontroller.EventProcessor
}

// NewWebhookHandler creates a new WebhookHandler. An empty secret disables
// signature verification.
func NewWebhookHandler(secret string, processor *githubcontroller.EventProcessor) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		processor: processor,
	}
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	eventType := r.Header.Get("X-GitHub-Event")

	logger := ctxlog.From(ctx).With("delivery_id", deliveryID, "event_type", eventType)
	ctx = ctxlog.With(ctx, logger)

	// Read payload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if h.secret != "" {
		if err := verifySignature(r.Header, body, h.secret); err != nil {
			logger.Warn("Rejected webhook signature", "error", err)
			if errors.Is(err, errMissingSignature) {
				writeError(w, err, http.StatusUnauthorized)
			} else {
				writeError(w, err, http.StatusForbidden)
			}
			return
		}
	}

	if eventType == "" {
		writeError(w, goerr.New("missing X-GitHub-Event header"), http.StatusBadRequest)
		return
	}
	if decision := model.ClassifyCategory(eventType); !decision.Actionable {
		logger.Debug("Ignoring event", "reason", decision.Reason)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// Parse event using GitHub SDK
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		logger.Warn("Failed to parse webhook payload", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	if err := h.processor.ProcessEvent(ctx, deliveryID, payload); err != nil {
		switch {
		case goerr.HasTag(err, types.ErrTagAuthorization):
			logger.Info("Command denied", "error", err)
			writeError(w, err, http.StatusForbidden)
		case goerr.HasTag(err, types.ErrTagInvalidPayload):
			logger.Warn("Invalid webhook payload", "error", err)
			writeError(w, err, http.StatusBadRequest)
		default:
			errs.Handle(ctx, "failed to process webhook event", err)
			writeError(w, err, http.StatusInternalServerError)
		}
		return
	}

	// Success response
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	}); err != nil {
		logger.Error("Failed to encode success response", "error", err)
	}
}
