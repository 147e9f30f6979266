package handlers

import (
	"errors"
	"net/http"

	"cloud-kitchen-backend/internal/middleware"
	"cloud-kitchen-backend/pkg/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type SessionHandler struct {
	sessions    *auth.SessionManager
	cartService CartServiceInterface
	log         zerolog.Logger
}

func NewSessionHandler(sessions *auth.SessionManager, cartService CartServiceInterface, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		cartService: cartService,
		log:         log,
	}
}

// RegisterRoutes registers the routes for ordering sessions
func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup, authMiddleware *middleware.AuthMiddleware) {
	session := router.Group("/session")
	{
		session.POST("", h.StartSession)
		session.POST("/refresh", h.RefreshSession)
		session.DELETE("", authMiddleware.SessionRequired(), h.EndSession)
	}
}

// StartSession godoc
// @Summary Start an ordering session
// @Description Issues the bearer token that identifies a cart
// @Tags session
// @Produce json
// @Success 201 {object} auth.SessionToken
// @Router /api/v1/session [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	token, err := h.sessions.Issue()
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// RefreshSession godoc
// @Summary Refresh a session token
// @Description Issues a new token for the same session and cart
// @Tags session
// @Produce json
// @Success 200 {object} auth.SessionToken
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/session/refresh [post]
func (h *SessionHandler) RefreshSession(c *gin.Context) {
	raw, ok := middleware.BearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Session token required"})
		return
	}

	token, err := h.sessions.Refresh(raw)
	if errors.Is(err, auth.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Invalid or expired session"})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// EndSession godoc
// @Summary End the session
// @Description Discards the session's cart
// @Tags session
// @Security BearerAuth
// @Success 204
// @Router /api/v1/session [delete]
func (h *SessionHandler) EndSession(c *gin.Context) {
	if err := h.cartService.EndSession(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
