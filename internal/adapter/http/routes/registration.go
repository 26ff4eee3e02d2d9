package routes

import (
	"github.com/gin-gonic/gin"
)

const (
	PathAPI     = "/api"
	PathWebhook = "/webhook"
)

func addRegistrationRoutes(rg *gin.RouterGroup, h Handlers) {
	api := rg.Group(PathAPI)
	{
		api.POST("/createOrder", h.Order.CreateOrder)
		api.GET("/checkStatus/:orderId", h.Status.CheckStatus)
	}

	// Cashfree notify_url target; plain-text responses.
	rg.POST(PathWebhook, h.Webhook.Handle)
}
