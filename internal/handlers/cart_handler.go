package handlers

import (
	"net/http"

	"cloud-kitchen-backend/internal/cart"
	"cloud-kitchen-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	cartService CartServiceInterface
	log         zerolog.Logger
}

func NewCartHandler(cartService CartServiceInterface, log zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log,
	}
}

// RegisterRoutes registers the routes for cart management
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	// every cart belongs to a session
	cart := router.Group("/cart", authMiddleware.SessionRequired())
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:item_id", h.UpdateQuantity)
		cart.DELETE("/items/:item_id", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
	}
}

type AddItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

// Quantity is a pointer so that an explicit 0 is accepted.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type CartLineResponse struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"line_total"`
}

type CartResponse struct {
	Lines      []CartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	TotalPrice float64            `json:"total_price"`
	IsEmpty    bool               `json:"is_empty"`
}

func newCartResponse(s cart.Snapshot) CartResponse {
	lines := make([]CartLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = CartLineResponse{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Category:  l.Category,
			Quantity:  l.Quantity,
			LineTotal: l.Total(),
		}
	}
	return CartResponse{
		Lines:      lines,
		TotalItems: s.TotalItems,
		TotalPrice: s.TotalPrice,
		IsEmpty:    s.IsEmpty(),
	}
}

func (h *CartHandler) respond(c *gin.Context, snap cart.Snapshot, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(snap))
}

// GetCart godoc
// @Summary Get the session's cart
// @Tags cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	snap, err := h.cartService.View(c.Request.Context(), middleware.GetSessionID(c))
	h.respond(c, snap, err)
}

// AddItem godoc
// @Summary Add one unit of a menu item
// @Tags cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param item body AddItemRequest true "Menu item"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	snap, err := h.cartService.AddItem(c.Request.Context(), middleware.GetSessionID(c), req.ItemID)
	h.respond(c, snap, err)
}

// UpdateQuantity godoc
// @Summary Set a line's quantity
// @Description A quantity of zero or less removes the line
// @Tags cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param item_id path string true "Item ID"
// @Param body body UpdateQuantityRequest true "New quantity"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/cart/items/{item_id} [put]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	snap, err := h.cartService.UpdateQuantity(c.Request.Context(), middleware.GetSessionID(c), c.Param("item_id"), *req.Quantity)
	h.respond(c, snap, err)
}

// RemoveItem godoc
// @Summary Remove a line
// @Tags cart
// @Security BearerAuth
// @Produce json
// @Param item_id path string true "Item ID"
// @Success 200 {object} CartResponse
// @Router /api/v1/cart/items/{item_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	snap, err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), c.Param("item_id"))
	h.respond(c, snap, err)
}

// ClearCart godoc
// @Summary Empty the cart
// @Tags cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} CartResponse
// @Router /api/v1/cart [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	snap, err := h.cartService.Clear(c.Request.Context(), middleware.GetSessionID(c))
	h.respond(c, snap, err)
}
