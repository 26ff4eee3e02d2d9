package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/logging"
	"webinar_billing/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultOrderAmount   = 99.0
	DefaultOrderCurrency = "INR"
	orderIDPrefix        = "REG_"
	registrationIDPrefix = "reg_"
)

var (
	ErrConfiguration     = errors.New("server configuration error")
	ErrInvalidOrderInput = errors.New("invalid order input")
)

var nonIdentifierChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// CreateOrderInput is the registrant data needed to open a payment order.
type CreateOrderInput struct {
	Name           string
	Email          string
	WhatsApp       string
	Amount         float64
	Currency       string
	RegistrationID string
}

type CreateOrderOutput struct {
	PaymentLink     *string
	GatewayResponse json.RawMessage
	Registration    entities.Registration
}

// OrderSettings carries the deployment values order creation depends on.
type OrderSettings struct {
	SiteURL     string
	NotifyURL   string
	CountryCode string
}

// IOrderUseCase encapsulates the "register and pay" behavior.
type IOrderUseCase interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error)
}

type OrderUseCase struct {
	repo     interfaces.IRegistrationRepository
	gateway  interfaces.IPaymentGateway
	settings OrderSettings
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

var _ IOrderUseCase = (*OrderUseCase)(nil)

func NewOrderUseCase(repo interfaces.IRegistrationRepository, gateway interfaces.IPaymentGateway, settings OrderSettings, logger zerolog.Logger) *OrderUseCase {
	if settings.CountryCode == "" {
		settings.CountryCode = "91"
	}
	return &OrderUseCase{
		repo:     repo,
		gateway:  gateway,
		settings: settings,
		log:      logging.Component(logger, "order"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

func (u *OrderUseCase) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	if u.gateway == nil || strings.TrimSpace(u.settings.SiteURL) == "" {
		u.log.Error().
			Bool("gateway_configured", u.gateway != nil).
			Bool("site_url_configured", strings.TrimSpace(u.settings.SiteURL) != "").
			Msg("missing configuration; refusing to create order")
		return CreateOrderOutput{}, ErrConfiguration
	}
	if u.repo == nil {
		u.log.Error().Msg("registration repository not configured")
		return CreateOrderOutput{}, ErrConfiguration
	}

	in, err := normalizeOrderInput(in)
	if err != nil {
		u.log.Warn().Err(err).Str("email", in.Email).Msg("invalid order input")
		return CreateOrderOutput{}, err
	}

	orderReq := u.buildOrderRequest(in)
	log := u.log.With().Str("order_id", orderReq.OrderID).Logger()
	log.Info().Float64("amount", orderReq.OrderAmount).Str("currency", orderReq.OrderCurrency).Msg("create order start")

	resp, err := u.gateway.CreateOrder(ctx, orderReq)
	if err != nil {
		log.Error().Err(err).Msg("payment gateway create order failed")
		return CreateOrderOutput{}, err
	}

	orderPayload, err := json.Marshal(orderReq)
	if err != nil {
		return CreateOrderOutput{}, err
	}

	regID := strings.TrimSpace(in.RegistrationID)
	if regID == "" {
		regID = registrationIDPrefix + uuid.NewString()
	}
	now := u.now()
	reg := entities.Registration{
		ID:              regID,
		Name:            in.Name,
		Email:           in.Email,
		WhatsApp:        in.WhatsApp,
		Status:          entities.StatusPaymentInitiated,
		OrderID:         orderReq.OrderID,
		OrderPayload:    orderPayload,
		GatewayResponse: resp,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	saved, err := u.repo.Upsert(ctx, reg)
	if err != nil {
		log.Error().Err(err).Str("registration_id", regID).Msg("registration upsert failed")
		return CreateOrderOutput{}, err
	}
	log.Info().Str("registration_id", saved.ID).Msg("create order success")

	return CreateOrderOutput{
		PaymentLink:     extractPaymentLink(resp),
		GatewayResponse: resp,
		Registration:    saved,
	}, nil
}

func (u *OrderUseCase) buildOrderRequest(in CreateOrderInput) entities.OrderRequest {
	customerID := in.RegistrationID
	if customerID == "" {
		customerID = in.Email
	}
	return entities.OrderRequest{
		OrderID:       orderIDPrefix + u.newID(),
		OrderAmount:   in.Amount,
		OrderCurrency: in.Currency,
		OrderNote:     fmt.Sprintf("Webinar registration for %s", in.Name),
		CustomerDetails: entities.CustomerDetails{
			CustomerID:    SanitizeIdentifier(customerID),
			CustomerName:  in.Name,
			CustomerEmail: in.Email,
			CustomerPhone: entities.FormatPhone(in.WhatsApp, u.settings.CountryCode),
		},
		OrderMeta: entities.OrderMeta{
			ReturnURL: strings.TrimRight(u.settings.SiteURL, "/") + "/thankyou.html?order_id={order_id}",
			NotifyURL: u.settings.NotifyURL,
		},
	}
}

func normalizeOrderInput(in CreateOrderInput) (CreateOrderInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.WhatsApp = strings.TrimSpace(in.WhatsApp)
	in.RegistrationID = strings.TrimSpace(in.RegistrationID)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = DefaultOrderCurrency
	}

	switch {
	case in.Name == "":
		return in, fmt.Errorf("%w: name is required", ErrInvalidOrderInput)
	case in.Email == "":
		return in, fmt.Errorf("%w: email is required", ErrInvalidOrderInput)
	case entities.DigitsOnly(in.WhatsApp) == "":
		return in, fmt.Errorf("%w: whatsapp number is required", ErrInvalidOrderInput)
	case math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0:
		return in, fmt.Errorf("%w: amount must be a positive number", ErrInvalidOrderInput)
	case strings.HasPrefix(in.RegistrationID, entities.ReservedIDPrefix):
		return in, fmt.Errorf("%w: registration id must not start with %q", ErrInvalidOrderInput, entities.ReservedIDPrefix)
	}
	return in, nil
}

// SanitizeIdentifier replaces characters Cashfree rejects in customer ids.
func SanitizeIdentifier(s string) string {
	return nonIdentifierChars.ReplaceAllString(s, "_")
}

func extractPaymentLink(resp json.RawMessage) *string {
	var body struct {
		PaymentLink string `json:"payment_link"`
		Payments    struct {
			URL string `json:"url"`
		} `json:"payments"`
	}
	if err := json.Unmarshal(resp, &body); err != nil {
		return nil
	}
	if body.PaymentLink != "" {
		return &body.PaymentLink
	}
	if body.Payments.URL != "" {
		return &body.Payments.URL
	}
	return nil
}
