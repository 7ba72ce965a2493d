package handlers

import (
	"net/http"
	"strings"
	"time"

	"boatbooking/internal/http/middleware"
	"boatbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type adminTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /admin/token
func (h Handler) AdminToken(c *gin.Context) {
	var req adminTokenRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if !h.Admin.Check(strings.TrimSpace(req.Username), req.Password) {
		utils.LogEvent(middleware.GetRequestID(c), "admin", "token", "rejected login for "+req.Username)
		respondError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials", nil)
		return
	}
	token, exp, err := h.Admin.IssueToken(time.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_at": exp.UTC().Format(time.RFC3339)})
}

// GET /admin/bookings
func (h Handler) ListBookings(c *gin.Context) {
	rows, err := h.Bookings.ListBookings(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": rows})
}

// POST /admin/bookings/:id/side-effects
func (h Handler) RerunSideEffects(c *gin.Context) {
	report, err := h.Bookings.RerunSideEffects(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "admin", "side_effects",
		"rerun by "+middleware.AdminUser(c)+" booking_id="+report.BookingID)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "report": report})
}
