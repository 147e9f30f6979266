package handlers

import (
	"net/http"

	"cloud-kitchen-backend/internal/middleware"
	"cloud-kitchen-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler serves the kitchen's read-only view of placed orders.
type AdminHandler struct {
	orderService OrderServiceInterface
	log          zerolog.Logger
}

func NewAdminHandler(orderService OrderServiceInterface, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{orderService: orderService, log: log}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	admin := router.Group("/admin", authMiddleware.AdminRequired())
	{
		admin.GET("/orders", h.ListOrders)
		admin.GET("/orders/:order_id", h.GetOrder)
	}
}

type ListOrdersQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset" binding:"min=0"`
}

type ListOrdersResponse struct {
	Orders []models.Order `json:"orders"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ListOrders godoc
// @Summary List orders, newest first
// @Tags admin
// @Security BasicAuth
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} ListOrdersResponse
// @Router /api/v1/admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	orders, err := h.orderService.List(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, ListOrdersResponse{Orders: orders, Limit: q.Limit, Offset: q.Offset})
}

// GetOrder godoc
// @Summary Get an order
// @Tags admin
// @Security BasicAuth
// @Produce json
// @Param order_id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/orders/{order_id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
