package handlers

import (
	"net/http"

	"cloud-kitchen-backend/internal/middleware"
	"cloud-kitchen-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CheckoutHandler struct {
	checkoutService CheckoutServiceInterface
	log             zerolog.Logger
}

func NewCheckoutHandler(checkoutService CheckoutServiceInterface, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, log: log}
}

// RegisterRoutes registers checkout and the legacy order log endpoint
func (h *CheckoutHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	checkout := router.Group("/checkout")
	{
		checkout.GET("/slots", h.ListSlots)
		checkout.POST("", authMiddleware.SessionRequired(), h.PlaceOrder)
	}

	router.POST("/order", h.LogOrder)
}

// ListSlots godoc
// @Summary Delivery time slots
// @Tags checkout
// @Produce json
// @Success 200 {array} string
// @Router /api/v1/checkout/slots [get]
func (h *CheckoutHandler) ListSlots(c *gin.Context) {
	c.JSON(http.StatusOK, services.DeliverySlots())
}

// PlaceOrder godoc
// @Summary Place the order for the session's cart
// @Description Validates the customer, stores the order and returns WhatsApp and UPI links
// @Tags checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param customer body services.CustomerDetails true "Customer details"
// @Success 201 {object} services.OrderConfirmation
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/checkout [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req services.CustomerDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	confirmation, err := h.checkoutService.PlaceOrder(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, confirmation)
}

// LogOrder godoc
// @Summary Append a raw order to the order log
// @Tags checkout
// @Accept json
// @Produce json
// @Param order body object true "Order payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/order [post]
func (h *CheckoutHandler) LogOrder(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.checkoutService.LogRawOrder(c.Request.Context(), payload); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order logged"})
}
