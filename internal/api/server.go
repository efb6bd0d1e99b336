package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp wires the REST routes into a fiber app. rl may be nil to disable
// rate limiting.
func NewApp(h *Handler, rl *RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", h.Health)
	app.Get("/metrics", h.Metrics)

	v1 := app.Group("/api/v1")
	if rl != nil {
		v1.Use(rl.Middleware())
	}
	v1.Get("/search", h.Search)
	v1.Get("/playlist/metadata", h.PlaylistMetadata)
	v1.Post("/download", h.Download)
	v1.Get("/download/:video_id/status", h.DownloadStatus)

	return app
}
