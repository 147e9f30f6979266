package handlers

import (
	"errors"
	"net/http"

	"cloud-kitchen-backend/internal/middleware"
	"cloud-kitchen-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError maps service errors to HTTP responses. Anything unrecognised is
// logged and reported as a 500 without its details.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Please correct the highlighted fields",
			Fields:  verr.Fields,
		})
	case errors.Is(err, services.ErrItemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "item_not_found", Message: err.Error()})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "order_not_found", Message: err.Error()})
	case errors.Is(err, services.ErrItemUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "item_unavailable", Message: err.Error()})
	case errors.Is(err, services.ErrCartEmpty):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "cart_empty", Message: "Your cart is empty"})
	default:
		_ = c.Error(err)
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "Something went wrong"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
}
