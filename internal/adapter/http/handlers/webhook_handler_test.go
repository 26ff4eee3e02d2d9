package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"webinar_billing/internal/adapter/http/handlers/mocks"
	"webinar_billing/internal/usecase"
	"webinar_billing/internal/usecase/interfaces"
	mock_interfaces "webinar_billing/internal/usecase/interfaces/mocks"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

const webhookSecret = "whsec_test"

var paidBody = []byte(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":"REG_1","order_status":"PAID"}}}`)

func newWebhookRouter(uc usecase.IReconcileUseCase, guard interfaces.IReplayGuard) *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := usecase.NewWebhookVerifier(webhookSecret, false, zerolog.Nop())
	h := NewWebhookHandler(uc, verifier, guard, nil, zerolog.Nop())
	r := gin.New()
	r.POST("/webhook", h.Handle)
	return r
}

func postWebhook(r *gin.Engine, body []byte, header, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(header, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signed(body []byte) string {
	return usecase.Sign([]byte(webhookSecret), body)
}

func TestWebhookHandler_Handle(t *testing.T) {
	t.Run("missing signature", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		r := newWebhookRouter(uc, nil)

		w := postWebhook(r, paidBody, "", "")
		if w.Code != http.StatusBadRequest || w.Body.String() != "Missing signature" {
			t.Fatalf("expected 400 Missing signature, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		r := newWebhookRouter(uc, nil)

		w := postWebhook(r, paidBody, "x-webhook-signature", "deadbeef")
		if w.Code != http.StatusForbidden || w.Body.String() != "Invalid signature" {
			t.Fatalf("expected 403 Invalid signature, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("valid signature is reconciled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		r := newWebhookRouter(uc, nil)

		uc.EXPECT().Reconcile(gomock.Any(), json.RawMessage(paidBody)).Return(usecase.ReconcileResult{
			OrderID: "REG_1", Status: "PAID", Matched: 1, Updated: 1, Dispatched: 1,
		}, nil)

		w := postWebhook(r, paidBody, "x-cf-signature", signed(paidBody))
		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Fatalf("expected 200 OK, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("unknown order is acknowledged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		r := newWebhookRouter(uc, nil)

		uc.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(usecase.ReconcileResult{OrderID: "REG_1", Status: "PAID"}, nil)

		w := postWebhook(r, paidBody, "x-signature", signed(paidBody))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("duplicate body skips processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		guard := mock_interfaces.NewMockIReplayGuard(ctrl)
		r := newWebhookRouter(uc, guard)

		guard.EXPECT().FirstSeen(gomock.Any(), paidBody).Return(false, nil)

		w := postWebhook(r, paidBody, "x-webhook-signature", signed(paidBody))
		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Fatalf("expected 200 OK, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("clean run keeps replay key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		guard := mock_interfaces.NewMockIReplayGuard(ctrl)
		r := newWebhookRouter(uc, guard)

		gomock.InOrder(
			guard.EXPECT().FirstSeen(gomock.Any(), paidBody).Return(true, nil),
			uc.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(usecase.ReconcileResult{OrderID: "REG_1", Status: "PAID", Matched: 1, Updated: 1}, nil),
			guard.EXPECT().Confirm(gomock.Any(), paidBody).Return(nil),
		)

		w := postWebhook(r, paidBody, "x-webhook-signature", signed(paidBody))
		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Fatalf("expected 200 OK, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		guard := mock_interfaces.NewMockIReplayGuard(ctrl)
		r := newWebhookRouter(uc, guard)

		body := append(append([]byte(`{"pad":"`), bytes.Repeat([]byte("a"), maxWebhookBodyBytes)...), []byte(`"}`)...)

		w := postWebhook(r, body, "x-webhook-signature", signed(body))
		if w.Code != http.StatusRequestEntityTooLarge || w.Body.String() != "Payload too large" {
			t.Fatalf("expected 413 Payload too large, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("body at the limit is accepted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		r := newWebhookRouter(uc, nil)

		body := bytes.Repeat([]byte(" "), maxWebhookBodyBytes)
		uc.EXPECT().Reconcile(gomock.Any(), json.RawMessage(body)).Return(usecase.ReconcileResult{}, nil)

		w := postWebhook(r, body, "x-webhook-signature", signed(body))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("guard error fails open", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		guard := mock_interfaces.NewMockIReplayGuard(ctrl)
		r := newWebhookRouter(uc, guard)

		guard.EXPECT().FirstSeen(gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
		uc.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(usecase.ReconcileResult{OrderID: "REG_1", Status: "PAID", Matched: 1, Updated: 1}, nil)

		w := postWebhook(r, paidBody, "x-webhook-signature", signed(paidBody))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("reconcile failure releases replay key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		guard := mock_interfaces.NewMockIReplayGuard(ctrl)
		r := newWebhookRouter(uc, guard)

		guard.EXPECT().FirstSeen(gomock.Any(), gomock.Any()).Return(true, nil)
		uc.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(usecase.ReconcileResult{}, errors.New("ddb down"))
		guard.EXPECT().Forget(gomock.Any(), paidBody).Return(nil)

		w := postWebhook(r, paidBody, "x-webhook-signature", signed(paidBody))
		if w.Code != http.StatusInternalServerError || w.Body.String() != "error" {
			t.Fatalf("expected 500 error, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("per-registration failure is still acknowledged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		guard := mock_interfaces.NewMockIReplayGuard(ctrl)
		r := newWebhookRouter(uc, guard)

		guard.EXPECT().FirstSeen(gomock.Any(), gomock.Any()).Return(true, nil)
		uc.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(usecase.ReconcileResult{
			OrderID: "REG_1",
			Status:  "PAID",
			Matched: 2,
			Updated: 1,
			Errors:  []error{errors.New("update reg_2: throttled")},
		}, nil)
		guard.EXPECT().Forget(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		w := postWebhook(r, paidBody, "x-webhook-signature", signed(paidBody))
		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Fatalf("expected 200 OK, got %d %q", w.Code, w.Body.String())
		}
	})

	t.Run("malformed payload returns 500", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIReconcileUseCase(ctrl)
		r := newWebhookRouter(uc, nil)

		body := []byte("not json")
		uc.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(usecase.ReconcileResult{}, usecase.ErrInvalidNotification)

		w := postWebhook(r, body, "x-webhook-signature", signed(body))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}

func TestWebhookHandler_LogsCarryComponent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIReconcileUseCase(ctrl)
	var buf bytes.Buffer
	h := NewWebhookHandler(uc, usecase.NewWebhookVerifier(webhookSecret, false, zerolog.Nop()), nil, nil, zerolog.New(&buf))
	r := gin.New()
	r.POST("/webhook", h.Handle)

	postWebhook(r, paidBody, "x-webhook-signature", "deadbeef")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one json log line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "webhook" || line["message"] != "webhook signature mismatch" {
		t.Fatalf("unexpected log line %v", line)
	}
}

func TestWebhookHandler_RequireSignatureWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIReconcileUseCase(ctrl)
	h := NewWebhookHandler(uc, usecase.NewWebhookVerifier("", true, zerolog.Nop()), nil, nil, zerolog.Nop())
	r := gin.New()
	r.POST("/webhook", h.Handle)

	w := postWebhook(r, paidBody, "x-webhook-signature", "anything")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
