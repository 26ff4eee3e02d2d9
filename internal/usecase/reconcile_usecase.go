package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/logging"
	"webinar_billing/internal/usecase/interfaces"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidNotification = errors.New("invalid notification payload")
	ErrInvalidOrderID      = errors.New("invalid order id")
	ErrRegistrationGone    = errors.New("registration disappeared during update")
)

// ReconcileResult summarises what one notification did to the store.
type ReconcileResult struct {
	OrderID    string
	Status     string
	Matched    int
	Updated    int
	Dispatched int
	// Errors holds per-registration failures; siblings are still processed.
	Errors []error
}

type CheckStatusResult struct {
	OrderID         string
	Status          string
	GatewayResponse json.RawMessage
	Reconciled      ReconcileResult
}

// ReconcileOptions tunes dispatch behaviour.
type ReconcileOptions struct {
	// TransitionOnly dispatches only when the status write moves the
	// registration into a different bucket. The default re-dispatches on
	// every terminal delivery.
	TransitionOnly bool
}

// IReconcileUseCase applies gateway status notifications to registrations.
type IReconcileUseCase interface {
	Reconcile(ctx context.Context, payload json.RawMessage) (ReconcileResult, error)
	CheckStatus(ctx context.Context, orderID string) (CheckStatusResult, error)
}

type ReconcileUseCase struct {
	repo       interfaces.IRegistrationRepository
	gateway    interfaces.IPaymentGateway
	dispatcher interfaces.INotificationDispatcher
	opts       ReconcileOptions
	log        zerolog.Logger
}

var _ IReconcileUseCase = (*ReconcileUseCase)(nil)

func NewReconcileUseCase(
	repo interfaces.IRegistrationRepository,
	gateway interfaces.IPaymentGateway,
	dispatcher interfaces.INotificationDispatcher,
	opts ReconcileOptions,
	logger zerolog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		repo:       repo,
		gateway:    gateway,
		dispatcher: dispatcher,
		opts:       opts,
		log:        logging.Component(logger, "reconcile"),
	}
}

// Reconcile handles an authenticated push notification.
func (u *ReconcileUseCase) Reconcile(ctx context.Context, payload json.RawMessage) (ReconcileResult, error) {
	return u.reconcile(ctx, payload, "")
}

// CheckStatus pulls the order from the gateway and reconciles it exactly as
// a webhook would.
func (u *ReconcileUseCase) CheckStatus(ctx context.Context, orderID string) (CheckStatusResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return CheckStatusResult{}, ErrInvalidOrderID
	}
	if u.gateway == nil {
		u.log.Error().Str("order_id", orderID).Msg("payment gateway not configured")
		return CheckStatusResult{}, ErrConfiguration
	}

	resp, err := u.gateway.GetOrder(ctx, orderID)
	if err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Msg("payment gateway get order failed")
		return CheckStatusResult{}, err
	}

	res, err := u.reconcile(ctx, resp, orderID)
	if err != nil {
		return CheckStatusResult{}, err
	}
	return CheckStatusResult{
		OrderID:         orderID,
		Status:          res.Status,
		GatewayResponse: resp,
		Reconciled:      res,
	}, nil
}

func (u *ReconcileUseCase) reconcile(ctx context.Context, payload json.RawMessage, fallbackOrderID string) (ReconcileResult, error) {
	if u.repo == nil {
		return ReconcileResult{}, ErrConfiguration
	}

	var root map[string]any
	if err := json.Unmarshal(payload, &root); err != nil {
		return ReconcileResult{}, fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	event := EventData(root)

	res := ReconcileResult{
		OrderID: ExtractOrderID(event),
		Status:  ExtractStatus(event),
	}
	if res.OrderID == "" {
		res.OrderID = fallbackOrderID
	}
	log := u.log.With().Str("order_id", res.OrderID).Str("status", res.Status).Logger()

	if res.OrderID == "" {
		log.Info().Msg("notification without order id; acknowledged")
		return res, nil
	}

	matches, err := u.repo.ListByOrderID(ctx, res.OrderID)
	if err != nil {
		log.Error().Err(err).Msg("registration lookup failed")
		return res, err
	}
	res.Matched = len(matches)
	if len(matches) == 0 {
		log.Info().Msg("no registration for order id; acknowledged")
		return res, nil
	}
	if len(matches) > 1 {
		log.Warn().Int("matches", len(matches)).Msg("order id shared by several registrations")
	}

	for _, match := range matches {
		dispatched, err := u.apply(ctx, match.ID, res.Status, payload)
		if err != nil {
			log.Error().Err(err).Str("registration_id", match.ID).Msg("reconcile registration failed")
			res.Errors = append(res.Errors, fmt.Errorf("registration %s: %w", match.ID, err))
			continue
		}
		res.Updated++
		if dispatched {
			res.Dispatched++
		}
	}
	log.Info().
		Int("matched", res.Matched).
		Int("updated", res.Updated).
		Int("dispatched", res.Dispatched).
		Int("errors", len(res.Errors)).
		Msg("reconcile done")
	return res, nil
}

// apply updates one registration and fires its notification. Panics from
// collaborators are converted to errors so siblings keep going.
func (u *ReconcileUseCase) apply(ctx context.Context, id string, status string, payload json.RawMessage) (dispatched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	change, err := u.repo.UpdateStatus(ctx, id, status, payload)
	if err != nil {
		return false, err
	}
	if !change.Found() {
		return false, ErrRegistrationGone
	}
	updated := change.Registration

	bucket := updated.Bucket()
	if !bucket.Terminal() {
		return false, nil
	}
	// The GSI read that found this registration may lag; the prior status
	// comes from the write itself.
	if u.opts.TransitionOnly && !change.Transitioned() {
		u.log.Info().
			Str("registration_id", updated.ID).
			Str("previous_status", change.PreviousStatus).
			Str("bucket", string(bucket)).
			Msg("bucket unchanged; notification skipped")
		return false, nil
	}
	if u.dispatcher == nil {
		return false, nil
	}

	switch bucket {
	case entities.BucketSuccess:
		u.dispatcher.NotifySuccess(ctx, updated)
	case entities.BucketFailure:
		u.dispatcher.NotifyFailure(ctx, updated)
	}
	return true, nil
}

// EventData returns the nested "data" object when present, else the payload.
func EventData(root map[string]any) map[string]any {
	if data, ok := root["data"].(map[string]any); ok {
		return data
	}
	return root
}

// ExtractStatus reads order_status, tx_status, status in that order, then the
// nested order / payment objects of Cashfree's 2022 webhook shape.
func ExtractStatus(event map[string]any) string {
	for _, key := range []string{"order_status", "tx_status", "status"} {
		if s := stringField(event, key); s != "" {
			return s
		}
	}
	if order, ok := event["order"].(map[string]any); ok {
		if s := stringField(order, "order_status"); s != "" {
			return s
		}
	}
	if payment, ok := event["payment"].(map[string]any); ok {
		if s := stringField(payment, "payment_status"); s != "" {
			return s
		}
	}
	return ""
}

func ExtractOrderID(event map[string]any) string {
	if s := stringField(event, "order_id"); s != "" {
		return s
	}
	if order, ok := event["order"].(map[string]any); ok {
		return stringField(order, "order_id")
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
