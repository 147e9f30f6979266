package handlers

import (
	"net/http"

	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type MenuHandler struct {
	menuService MenuServiceInterface
	log         zerolog.Logger
}

func NewMenuHandler(menuService MenuServiceInterface, log zerolog.Logger) *MenuHandler {
	return &MenuHandler{menuService: menuService, log: log}
}

// RegisterRoutes registers the public menu routes
func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	menu := router.Group("/menu")
	{
		menu.GET("", h.ListMenu)
		menu.GET("/categories", h.ListCategories)
		menu.GET("/:item_id", h.GetMenuItem)
	}
}

type MenuQuery struct {
	Category      string `form:"category"`
	Search        string `form:"search"`
	AvailableOnly bool   `form:"available_only"`
}

type MenuItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	IsAvailable bool    `json:"is_available"`
}

func newMenuItemResponse(item models.MenuItem) MenuItemResponse {
	return MenuItemResponse{
		ID:          item.ItemID(),
		Name:        item.Name,
		Price:       item.Price,
		Description: item.Description,
		Category:    item.Category,
		Image:       item.Image,
		IsAvailable: item.IsAvailable,
	}
}

// ListMenu godoc
// @Summary List menu items
// @Tags menu
// @Produce json
// @Param category query string false "Veg, Non-Veg or All"
// @Param search query string false "Case-insensitive name search"
// @Success 200 {array} MenuItemResponse
// @Router /api/v1/menu [get]
func (h *MenuHandler) ListMenu(c *gin.Context) {
	var q MenuQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	items, err := h.menuService.List(c.Request.Context(), repositories.MenuFilter{
		Category:      q.Category,
		Search:        q.Search,
		AvailableOnly: q.AvailableOnly,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]MenuItemResponse, len(items))
	for i, item := range items {
		out[i] = newMenuItemResponse(item)
	}
	c.JSON(http.StatusOK, out)
}

// ListCategories godoc
// @Summary List menu categories
// @Tags menu
// @Produce json
// @Success 200 {array} string
// @Router /api/v1/menu/categories [get]
func (h *MenuHandler) ListCategories(c *gin.Context) {
	categories, err := h.menuService.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetMenuItem godoc
// @Summary Get a menu item
// @Tags menu
// @Produce json
// @Param item_id path string true "Item ID"
// @Success 200 {object} MenuItemResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/menu/{item_id} [get]
func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	item, err := h.menuService.Get(c.Request.Context(), c.Param("item_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, newMenuItemResponse(*item))
}
