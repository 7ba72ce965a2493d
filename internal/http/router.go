package api

import (
	stdhttp "net/http"

	h "boatbooking/internal/http/handlers"
	"boatbooking/internal/http/middleware"
	"boatbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	CORSAllowedOrigins []string
}

func NewRouter(handler h.Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(opts.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogEvent("", "http", "router", "failed to set trusted proxies: "+err.Error())
	}
	if handler.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = handler.MaxUploadBytes
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"status": "error",
			"code":   "not_found",
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/slots", handler.GetSlots)
	}

	r.POST("/pay", handler.Pay)
	r.POST("/verify_payment", handler.VerifyPayment)
	r.GET("/success", handler.Success)
	r.GET("/ticket/:booking_id", handler.Ticket)

	r.POST("/admin/token", handler.AdminToken)
	admin := r.Group("/admin", middleware.AdminAuth(handler.Admin))
	{
		admin.POST("/slots", handler.SaveSlots)
		admin.GET("/bookings", handler.ListBookings)
		admin.POST("/bookings/:id/side-effects", handler.RerunSideEffects)
	}

	return r
}
