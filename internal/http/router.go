package api

import (
	"log"
	stdhttp "net/http"

	"rentalportal/internal/checkout"
	intconfig "rentalportal/internal/config"
	h "rentalportal/internal/http/handlers"
	"rentalportal/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env, gateway *checkout.Paystack) *gin.Engine {
	h.Configure(env, gateway)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(),
		middleware.CORS(env.CORSOrigins), middleware.Metrics())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(env.JWTSecret)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.GET("/me", requireAuth, h.Me)
		auth.PUT("/me", requireAuth, h.UpdateMe)

		vehicles := api.Group("/vehicles")
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.GET("/:id/reviews", h.ListReviews)
		vehicles.POST("/:id/reviews", requireAuth, h.CreateReview)
		vehicles.POST("", requireAuth, requireAdmin, h.CreateVehicle)
		vehicles.PUT("/:id", requireAuth, requireAdmin, h.UpdateVehicle)
		vehicles.DELETE("/:id", requireAuth, requireAdmin, h.DeleteVehicle)

		bookings := api.Group("/bookings", requireAuth)
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)

		payments := api.Group("/payments", requireAuth)
		payments.POST("/initialize", h.InitializePayment)
		payments.GET("/:id", h.GetPayment)
		payments.GET("/booking/:bookingId", h.GetPaymentByBooking)

		receipts := api.Group("/receipts", requireAuth)
		receipts.GET("/payment/:id", h.GetReceipt)
		receipts.GET("/payment/:id/pdf", h.GetReceiptPDF)
		receipts.GET("/booking/:bookingId", h.GetReceiptByBooking)

		co := api.Group("/checkout", requireAuth)
		co.POST("", h.OpenCheckout)
		co.GET("/:sid", h.CheckoutState)
		co.POST("/:sid/method", h.CheckoutSelectMethod)
		co.POST("/:sid/phone", h.CheckoutSubmitPhone)
		co.POST("/:sid/back", h.CheckoutBack)
		co.POST("/:sid/retry", h.CheckoutRetry)
		co.POST("/:sid/gateway/result", h.CheckoutGatewayResult)
		co.POST("/:sid/gateway/dismiss", h.CheckoutGatewayDismiss)
		co.DELETE("/:sid", h.CloseCheckout)

		tickets := api.Group("/tickets", requireAuth)
		tickets.POST("", h.CreateTicket)
		tickets.GET("", h.ListMyTickets)
		tickets.GET("/:id", h.GetTicket)
		tickets.PUT("/:id/status", requireAdmin, h.UpdateTicketStatus)
	}

	h.SetRouter(r)
	return r
}
