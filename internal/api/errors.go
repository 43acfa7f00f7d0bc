package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/claimflow/internal/common"
)

// writeError maps a core error to its HTTP status. Each error kind gets a
// distinct, stable status so clients can react without parsing messages:
// validation 400, forbidden 403, not found 404, lost race 409, illegal
// transition 422.
func writeError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, common.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, common.ErrIllegalTransition):
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
