package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"btc-basis/internal/api/models"
	"btc-basis/internal/basis"
	"btc-basis/internal/data"
	"btc-basis/internal/model"
	"btc-basis/internal/service"

	"github.com/gin-gonic/gin"
)

func abortWithError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// writeError maps domain errors onto the API error envelope.
func writeError(c *gin.Context, err error) {
	var (
		parseErr *data.ParseError
		lotsErr  *basis.InsufficientLotsError
	)
	switch {
	case errors.Is(err, model.ErrUnknownMethod), errors.Is(err, model.ErrUnknownMetric):
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, data.ErrUnsupportedFormat):
		abortWithError(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error(), nil)
	case errors.As(err, &parseErr):
		abortWithError(c, http.StatusUnprocessableEntity, "PARSE_ERROR", err.Error(), map[string]interface{}{
			"row":    parseErr.Row,
			"column": parseErr.Column,
			"value":  parseErr.Value,
		})
	case errors.Is(err, data.ErrMissingColumn):
		abortWithError(c, http.StatusUnprocessableEntity, "PARSE_ERROR", err.Error(), nil)
	case errors.As(err, &lotsErr):
		abortWithError(c, http.StatusUnprocessableEntity, "INSUFFICIENT_LOTS", err.Error(), map[string]interface{}{
			"index":         lotsErr.Index,
			"timestamp":     lotsErr.Timestamp.Format(time.RFC3339),
			"requested_btc": lotsErr.Requested.String(),
			"short_btc":     lotsErr.Short.String(),
		})
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", "No computation with this id; it may have expired. Upload the file again.", nil)
	default:
		log.Printf("BasisHandler: unexpected error: %v", err)
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
	}
}
