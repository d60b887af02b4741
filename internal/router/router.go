package router // package router wires HTTP routes to their handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aparcame/parking-reservation/internal/config"
	"github.com/aparcame/parking-reservation/internal/handler"
	"github.com/aparcame/parking-reservation/internal/middleware"
)

// Deps collects everything the route table needs. Building it once in
// main keeps registration free of construction logic.
type Deps struct {
	Cfg          config.Config
	Auth         *handler.AuthHandler
	Directory    *handler.DirectoryHandler
	Reservations *handler.ReservationHandler
	Admin        *handler.AdminHandler
	Webhook      *handler.WebhookHandler
	Cron         *handler.CronHandler
	Redis        *redis.Client // nil disables cache and rate limiting
	Cache        config.CacheConfig
	RateLimit    config.RateLimitConfig
}

// Register installs every route on the Echo instance.
//
// Route map:
//
//	GET   /healthz                                        liveness
//	POST  /api/auth/register                              driver registration
//	POST  /api/auth/login                                 driver login
//	POST  /api/auth/admin-login                           fixed admin credentials
//	GET   /api/locations?q=                               public search (cached)
//	GET   /api/location-details?id=                       public detail (cached)
//	POST  /api/reservations                               create booking (user token)
//	GET   /api/reservations/:id                           reservation detail
//	POST  /api/reservations/:id/confirm                   confirm + start timer
//	POST  /api/reservations/:id/generate-qr               issue QR ticket
//	POST  /api/reservations/:id/verify-qr                 verify QR ticket
//	POST  /api/webhooks/payment                           provider callback (signed)
//	GET   /api/cron/send-reminders                        reminder sweep (cron secret)
//	GET   /api/admin/locations/:id/parking-spots          list spots (token)
//	PATCH /api/admin/parking-spots/:id/price              update price (token)
//	POST  /api/admin/parking-spots/:id/toggle-availability flip availability (token)
//	GET   /api/admin/parking-spots/:id/reservations       active reservations (token)
//	GET   /api/admin/reservations                         all reservations (admin role)
func Register(e *echo.Echo, d Deps) {
	// The limiter wraps the whole API; it degrades to a no-op when
	// Redis is not configured.
	e.Use(middleware.NewRateLimiter(d.RateLimit, d.Redis))

	e.GET("/healthz", handler.Health)

	auth := e.Group("/api/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/admin-login", d.Auth.AdminLogin)

	// Public directory routes carry the response cache.
	cache := middleware.NewResponseCache(d.Cache, d.Redis)
	e.GET("/api/locations", d.Directory.SearchLocations, cache)
	e.GET("/api/location-details", d.Directory.LocationDetails, cache)

	// Reservation lifecycle. Creation needs a user token; the rest of
	// the lifecycle is driven by links and kiosk scans, so those
	// routes stay public.
	e.POST("/api/reservations", d.Reservations.Create, middleware.JWTAuth(d.Cfg.JWTSecret))
	e.GET("/api/reservations/:id", d.Reservations.Detail)
	e.POST("/api/reservations/:id/confirm", d.Reservations.Confirm)
	e.POST("/api/reservations/:id/generate-qr", d.Reservations.GenerateQR)
	e.POST("/api/reservations/:id/verify-qr", d.Reservations.VerifyQR)

	e.POST("/api/webhooks/payment", d.Webhook.HandlePaymentWebhook)
	e.GET("/api/cron/send-reminders", d.Cron.SendReminders)

	// Admin console. Every route needs a valid token; the global
	// reservation listing additionally checks the ADMIN role claim.
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	admin.GET("/locations/:id/parking-spots", d.Admin.ListLocationSpots)
	admin.PATCH("/parking-spots/:id/price", d.Admin.UpdateSpotPrice)
	admin.POST("/parking-spots/:id/toggle-availability", d.Admin.ToggleSpotAvailability)
	admin.GET("/parking-spots/:id/reservations", d.Admin.ListSpotReservations)
	admin.GET("/reservations", d.Admin.ListAllReservations, middleware.RequireRole("ADMIN"))
}
