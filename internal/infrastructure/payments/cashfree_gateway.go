package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/logging"
	"webinar_billing/internal/infrastructure/metrics"
	"webinar_billing/internal/usecase/interfaces"

	"github.com/rs/zerolog"
)

const (
	opCreateOrder = "create_order"
	opGetOrder    = "get_order"

	maxResponseBytes = 1 << 20
)

var (
	ErrMissingCashfreeCredentials = errors.New("missing CASHFREE_APP_ID or CASHFREE_KEY_SECRET")
	errNonJSONResponse            = errors.New("non-JSON response")
)

// CashfreeOptions configures the Cashfree PG client.
type CashfreeOptions struct {
	BaseURL    string
	AppID      string
	KeySecret  string
	APIVersion string
	Timeout    time.Duration
	// Mock answers every call locally without touching the network.
	Mock bool
}

// CashfreeGateway talks to the Cashfree PG orders API.
type CashfreeGateway struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	keySecret  string
	apiVersion string
	mockMode   bool
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

var _ interfaces.IPaymentGateway = (*CashfreeGateway)(nil)

func NewCashfreeGateway(opts CashfreeOptions, logger zerolog.Logger, m *metrics.Metrics) (*CashfreeGateway, error) {
	log := logging.Component(logger, "cashfree")
	if opts.Mock {
		log.Warn().Msg("payment gateway mock mode enabled")
		return &CashfreeGateway{mockMode: true, log: log, metrics: m}, nil
	}

	if strings.TrimSpace(opts.AppID) == "" || strings.TrimSpace(opts.KeySecret) == "" {
		log.Error().Msg("missing Cashfree credentials")
		return nil, ErrMissingCashfreeCredentials
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2022-09-01"
	}
	log.Info().Str("base_url", opts.BaseURL).Msg("Cashfree client initialized")

	return &CashfreeGateway{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		appID:      opts.AppID,
		keySecret:  opts.KeySecret,
		apiVersion: opts.APIVersion,
		log:        log,
		metrics:    m,
	}, nil
}

// CreateOrder posts the order and returns Cashfree's response body verbatim.
func (g *CashfreeGateway) CreateOrder(ctx context.Context, req entities.OrderRequest) (json.RawMessage, error) {
	if g.mockMode {
		return g.mockCreateOrder(req)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	g.log.Info().Str("order_id", req.OrderID).Int("payload_len", len(body)).Msg("create order start")
	return g.do(ctx, opCreateOrder, http.MethodPost, "/orders", body)
}

// GetOrder fetches the current order state.
func (g *CashfreeGateway) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	if g.mockMode {
		return g.mockGetOrder(orderID)
	}
	g.log.Info().Str("order_id", orderID).Msg("get order start")
	return g.do(ctx, opGetOrder, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil)
}

func (g *CashfreeGateway) do(ctx context.Context, op, method, path string, body []byte) (json.RawMessage, error) {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, &entities.GatewayError{Operation: op, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-client-id", g.appID)
	httpReq.Header.Set("x-client-secret", g.keySecret)
	httpReq.Header.Set("x-api-version", g.apiVersion)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.metrics.GatewayCall(op, "error", time.Since(start))
		g.log.Error().Err(err).Str("operation", op).Msg("gateway request failed")
		return nil, &entities.GatewayError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		g.metrics.GatewayCall(op, "error", time.Since(start))
		return nil, &entities.GatewayError{Operation: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.metrics.GatewayCall(op, "rejected", time.Since(start))
		g.log.Error().
			Str("operation", op).
			Int("status", resp.StatusCode).
			RawJSON("detail", jsonOrQuoted(raw)).
			Msg("gateway rejected request")
		return nil, &entities.GatewayError{Operation: op, StatusCode: resp.StatusCode, Detail: raw}
	}
	if !json.Valid(raw) {
		g.metrics.GatewayCall(op, "error", time.Since(start))
		return nil, &entities.GatewayError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Detail:     raw,
			Err:        errNonJSONResponse,
		}
	}

	g.metrics.GatewayCall(op, "ok", time.Since(start))
	g.log.Info().Str("operation", op).Int("status", resp.StatusCode).Msg("gateway request success")
	return raw, nil
}

func (g *CashfreeGateway) mockCreateOrder(req entities.OrderRequest) (json.RawMessage, error) {
	g.log.Info().Str("order_id", req.OrderID).Msg("mock create order")

	now := time.Now().UTC()
	resp := map[string]any{
		"cf_order_id":        strconv.FormatInt(now.UnixNano(), 10),
		"order_id":           req.OrderID,
		"order_amount":       req.OrderAmount,
		"order_currency":     req.OrderCurrency,
		"order_status":       "ACTIVE",
		"order_note":         req.OrderNote,
		"customer_details":   req.CustomerDetails,
		"order_meta":         req.OrderMeta,
		"created_at":         now.Format(time.RFC3339),
		"order_expiry_time":  now.Add(30 * 24 * time.Hour).Format(time.RFC3339),
		"payment_session_id": "session_mock_" + req.OrderID,
		"payment_link":       "https://payments-test.cashfree.com/order/#mock_" + req.OrderID,
	}
	return json.Marshal(resp)
}

func (g *CashfreeGateway) mockGetOrder(orderID string) (json.RawMessage, error) {
	g.log.Info().Str("order_id", orderID).Msg("mock get order")
	return json.Marshal(map[string]any{
		"order_id":     orderID,
		"order_status": "PAID",
	})
}

func jsonOrQuoted(raw []byte) []byte {
	if len(raw) > 0 && json.Valid(raw) {
		return raw
	}
	b, _ := json.Marshal(string(raw))
	return b
}
