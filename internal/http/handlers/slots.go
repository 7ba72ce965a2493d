package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GET /api/slots?date=
func (h Handler) GetSlots(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date != "" {
		times, err := h.Slots.ForDate(date)
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"slots": times})
		return
	}
	all, err := h.Slots.All()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"all": all})
}

type saveSlotsRequest struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

// POST /admin/slots
func (h Handler) SaveSlots(c *gin.Context) {
	var req saveSlotsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	times, err := h.Slots.Replace(req.Date, req.Times)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "date": strings.TrimSpace(req.Date), "times": times})
}
