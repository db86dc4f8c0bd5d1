package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/auth"
	"github.com/Missray24/missray-cab-app-sub000/internal/ratelimit"
)

// NewRouter builds the echo instance with all routes and middleware wired.
// The limiter may be nil, in which case no throttling is applied.
func NewRouter(h *Handler, validator auth.Validator, limiter *ratelimit.RedisLimiter, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))

	e.GET("/health", h.Health)
	e.POST("/webhooks/billing", h.BillingWebhook)

	v1 := e.Group("/api/v1")

	// Public catalog and quoting
	v1.GET("/tiers", h.ListTiers)
	v1.GET("/options", h.ListOptions)
	v1.POST("/quotes", h.Quote, RateLimit(limiter))

	// Client booking flow
	authed := v1.Group("", Authenticate(validator, logger))
	authed.POST("/bookings", h.CreateBooking)
	authed.GET("/bookings", h.ListBookings)
	authed.GET("/bookings/:id", h.GetBooking)
	authed.POST("/bookings/:id/cancel", h.CancelBooking)
	authed.POST("/bookings/:id/checkout", h.StartCheckout)

	// Admin catalog and operations
	admin := v1.Group("/admin", Authenticate(validator, logger), RequireAdmin())
	admin.GET("/bookings", h.AdminListBookings)
	admin.POST("/bookings/:id/status", h.AdminUpdateStatus)
	admin.GET("/tiers", h.AdminListTiers)
	admin.PUT("/tiers", h.AdminUpsertTier)
	admin.PUT("/options", h.AdminUpsertOption)

	return e
}
