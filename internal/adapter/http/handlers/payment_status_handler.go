package handlers

import (
	"errors"
	"net/http"

	response "webinar_billing/internal/adapter/http/dto/response"
	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/infrastructure/metrics"
	"webinar_billing/internal/usecase"
	"webinar_billing/pkg"

	"github.com/gin-gonic/gin"
)

// PaymentStatusHandler lets the thank-you page poll an order. Polling has the
// same side effects as a webhook delivery.
type PaymentStatusHandler struct {
	usecase usecase.IReconcileUseCase
	metrics *metrics.Metrics
}

func NewPaymentStatusHandler(uc usecase.IReconcileUseCase, m *metrics.Metrics) *PaymentStatusHandler {
	return &PaymentStatusHandler{usecase: uc, metrics: m}
}

// CheckStatus godoc
// @Summary      Fetch and reconcile the gateway status of an order
// @Tags         orders
// @Produce      json
// @Param        orderId  path      string  true  "Order id (REG_...)"
// @Success      200      {object}  response.CheckStatusResponse
// @Failure      400      {object}  pkg.HTTPError
// @Failure      500      {object}  pkg.HTTPError
// @Router       /api/checkStatus/{orderId} [get]
func (h *PaymentStatusHandler) CheckStatus(c *gin.Context) {
	res, err := h.usecase.CheckStatus(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		appErr := mapStatusError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	h.metrics.Reconciled("poll", string(entities.Classify(res.Status)), res.Reconciled.Updated)
	c.JSON(http.StatusOK, response.FromCheckStatusResult(res))
}

func mapStatusError(err error) *pkg.AppError {
	var gwErr *entities.GatewayError
	switch {
	case errors.Is(err, usecase.ErrInvalidOrderID):
		return pkg.NewDomainErrorSimple("INVALID_ORDER_ID", "Invalid order id", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrConfiguration):
		return pkg.NewDomainErrorSimple("CONFIGURATION_ERROR", msgConfiguration, http.StatusInternalServerError)
	case errors.As(err, &gwErr):
		return pkg.NewDomainError("GATEWAY_ERROR", msgStatusFailed, err, http.StatusInternalServerError).WithDetail(gwErr.DetailValue())
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", msgStatusFailed, err, http.StatusInternalServerError)
	}
}
