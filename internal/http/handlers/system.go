package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GET /api/health
func (h Handler) Health(c *gin.Context) {
	db := "not_configured"
	status := http.StatusOK
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			db = "down"
			status = http.StatusServiceUnavailable
		} else {
			db = "ok"
		}
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "database": db})
}
