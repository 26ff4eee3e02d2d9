package handlers

import (
	"errors"
	"io"
	"net/http"

	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/logging"
	"webinar_billing/internal/infrastructure/metrics"
	"webinar_billing/internal/usecase"
	"webinar_billing/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives Cashfree payment notifications.
//
// Responses are plain text: 400 "Missing signature", 403 "Invalid
// signature", 413 "Payload too large", 500 "error" when the payload cannot be
// processed at all, otherwise 200 "OK" (including unknown orders and
// per-registration failures).
type WebhookHandler struct {
	usecase  usecase.IReconcileUseCase
	verifier *usecase.WebhookVerifier
	guard    interfaces.IReplayGuard
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewWebhookHandler wires the handler; guard may be nil.
func NewWebhookHandler(
	uc usecase.IReconcileUseCase,
	verifier *usecase.WebhookVerifier,
	guard interfaces.IReplayGuard,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		usecase:  uc,
		verifier: verifier,
		guard:    guard,
		metrics:  m,
		log:      logging.Component(logger, "webhook"),
	}
}

// Handle godoc
// @Summary      Cashfree payment webhook
// @Description  HMAC-SHA256 (hex) of the raw body in x-webhook-signature, x-cf-signature or x-signature.
// @Tags         webhook
// @Accept       json
// @Produce      plain
// @Success      200  {string}  string  "OK"
// @Failure      400  {string}  string  "Missing signature"
// @Failure      403  {string}  string  "Invalid signature"
// @Failure      413  {string}  string  "Payload too large"
// @Failure      500  {string}  string  "error"
// @Router       /webhook [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Warn().Int64("limit", tooLarge.Limit).Msg("webhook body too large")
			h.metrics.Webhook("too_large")
			c.String(http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		h.log.Error().Err(err).Msg("read webhook body")
		h.metrics.Webhook("error")
		c.String(http.StatusInternalServerError, "error")
		return
	}

	if err := h.verifier.Verify(usecase.SignatureFromHeaders(c.Request.Header), body); err != nil {
		if errors.Is(err, usecase.ErrMissingSignature) {
			h.log.Warn().Msg("webhook without signature header")
			h.metrics.Webhook("missing_signature")
			c.String(http.StatusBadRequest, "Missing signature")
			return
		}
		h.log.Warn().Msg("webhook signature mismatch")
		h.metrics.Webhook("invalid_signature")
		c.String(http.StatusForbidden, "Invalid signature")
		return
	}

	claimed := false
	if h.guard != nil {
		first, err := h.guard.FirstSeen(ctx, body)
		switch {
		case err != nil:
			h.log.Warn().Err(err).Msg("replay guard unavailable; processing anyway")
		case first:
			claimed = true
		default:
			h.log.Info().Msg("duplicate webhook body; acknowledged without processing")
			h.metrics.Webhook("duplicate")
			c.String(http.StatusOK, "OK")
			return
		}
	}

	res, err := h.usecase.Reconcile(ctx, body)
	if err != nil {
		h.log.Error().Err(err).Str("order_id", res.OrderID).Msg("webhook processing failed")
		if claimed {
			h.forget(c, body)
		}
		h.metrics.Webhook("error")
		c.String(http.StatusInternalServerError, "error")
		return
	}

	result := "ok"
	if len(res.Errors) > 0 {
		// Failed matches do not fail the delivery; a later poll or redelivery retries them.
		h.log.Warn().
			Err(errors.Join(res.Errors...)).
			Str("order_id", res.OrderID).
			Int("matched", res.Matched).
			Int("failed", len(res.Errors)).
			Msg("webhook applied with per-registration failures")
		result = "partial"
	}

	if claimed {
		if result == "ok" {
			h.confirm(c, body)
		} else {
			h.forget(c, body)
		}
	}

	h.metrics.Webhook(result)
	h.metrics.Reconciled("webhook", string(entities.Classify(res.Status)), res.Updated)
	c.String(http.StatusOK, "OK")
}

// confirm keeps the replay key for the full window after a clean run.
func (h *WebhookHandler) confirm(c *gin.Context, body []byte) {
	if err := h.guard.Confirm(c.Request.Context(), body); err != nil {
		h.log.Warn().Err(err).Msg("replay guard confirm failed")
	}
}

// forget releases the replay key so the gateway's redelivery is processed.
func (h *WebhookHandler) forget(c *gin.Context, body []byte) {
	if err := h.guard.Forget(c.Request.Context(), body); err != nil {
		h.log.Warn().Err(err).Msg("replay guard release failed")
	}
}
