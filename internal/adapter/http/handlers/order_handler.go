package handlers

import (
	"errors"
	"net/http"

	request "webinar_billing/internal/adapter/http/dto/request"
	response "webinar_billing/internal/adapter/http/dto/response"
	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/metrics"
	"webinar_billing/internal/usecase"
	"webinar_billing/pkg"

	"github.com/gin-gonic/gin"
)

const (
	msgConfiguration = "Server configuration error. Please contact support."
	msgOrderFailed   = "Error creating order. Please check your details and try again."
	msgStatusFailed  = "Error checking order status. Please try again later."
)

// OrderHandler serves the registration form submission.
type OrderHandler struct {
	usecase usecase.IOrderUseCase
	metrics *metrics.Metrics
}

func NewOrderHandler(uc usecase.IOrderUseCase, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{usecase: uc, metrics: m}
}

// CreateOrder godoc
// @Summary      Create a payment order for a webinar registration
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      request.CreateOrderRequest  true  "Registrant"
// @Success      200   {object}  response.CreateOrderResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      500   {object}  pkg.HTTPError
// @Router       /api/createOrder [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var payload request.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.metrics.OrderCreated("invalid")
		appErr := pkg.NewDomainError("INVALID_ORDER_INPUT", "Invalid order payload", err, http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	in, err := payload.ToInput()
	if err != nil {
		h.metrics.OrderCreated("invalid")
		appErr := pkg.NewDomainError("INVALID_ORDER_INPUT", "Invalid order payload", err, http.StatusBadRequest)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	out, err := h.usecase.CreateOrder(c.Request.Context(), in)
	if err != nil {
		appErr := mapOrderError(err)
		h.metrics.OrderCreated(appErr.Code)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	h.metrics.OrderCreated("ok")
	c.JSON(http.StatusOK, response.FromCreateOrderOutput(out))
}

func mapOrderError(err error) *pkg.AppError {
	var gwErr *entities.GatewayError
	switch {
	case errors.Is(err, usecase.ErrInvalidOrderInput):
		return pkg.NewDomainError("INVALID_ORDER_INPUT", "Invalid order payload", err, http.StatusBadRequest)
	case errors.Is(err, usecase.ErrConfiguration):
		return pkg.NewDomainErrorSimple("CONFIGURATION_ERROR", msgConfiguration, http.StatusInternalServerError)
	case errors.As(err, &gwErr):
		return pkg.NewDomainError("GATEWAY_ERROR", msgOrderFailed, err, http.StatusInternalServerError).WithDetail(gwErr.DetailValue())
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", msgOrderFailed, err, http.StatusInternalServerError)
	}
}
