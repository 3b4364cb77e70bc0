package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scrubd/scrubd/internal/dataset"
)

// renderJSON writes v as JSON with NaN/Inf scrubbed to null, so
// statistics on degenerate columns serialize instead of erroring.
func renderJSON(c *gin.Context, status int, v any) {
	data, err := dataset.MarshalJSON(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode response"})
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}
