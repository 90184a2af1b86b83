// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/meeting-room-reservation/internal/config"
	"github.com/iliyamo/meeting-room-reservation/internal/handler"
	"github.com/iliyamo/meeting-room-reservation/internal/middleware"
	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout live under /v1/auth and need no session; /v1/me
// and everything else protected is wired by RegisterAPI.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterAPI registers all protected endpoints. Every route runs the
// JWT middleware followed by the role gate (the closed USER/ADMIN set),
// then the rate limiter. Read-heavy listings additionally go through
// the Redis response cache. Room administration is ADMIN-only; the
// finer ownership decisions on reservations are made in the service
// layer, which is why its mutation routes accept both roles.
func RegisterAPI(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	res *handler.ReservationHandler, rooms *handler.RoomHandler, users *handler.UserHandler) {

	rateCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	auth.Use(middleware.NewTokenBucket(rateCfg, rdb))

	cached := middleware.NewRedisCache(cacheCfg, rdb)

	// Reservations
	auth.POST("/reservations", res.Create)
	auth.GET("/reservations", res.List, cached)
	auth.GET("/reservations/:id", res.Get)
	auth.PATCH("/reservations/:id", res.Update)
	auth.DELETE("/reservations/:id", res.Delete)
	auth.DELETE("/reservations/series/:recurringId", res.DeleteSeries)

	// Rooms: browsing is open to all authenticated users, management is
	// restricted to administrators.
	auth.GET("/rooms", rooms.List, cached)
	auth.GET("/rooms/:id", rooms.Get)
	admin := auth.Group("/rooms", middleware.RequireRole(model.RoleAdmin))
	admin.POST("", rooms.Create)
	admin.PATCH("/:id", rooms.Update)
	admin.DELETE("/:id", rooms.Delete)

	// Profile
	auth.GET("/users/me", users.Me)
	auth.POST("/users/me/avatar", users.UploadAvatar)

	// Uploaded avatars are served statically.
	e.Static("/uploads/avatars", cfg.AvatarDir)
}
