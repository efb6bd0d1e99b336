// Package api exposes the scraping and download services over HTTP.
package api

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/download"
	"github.com/anatolykoptev/go_tube/internal/engine/service"
)

// Handler holds the services behind the REST routes.
type Handler struct {
	search   *service.Search
	playlist *service.Playlist
	download *download.Service
	cache    *engine.Cache
	version  string
}

// NewHandler builds the route handler. download may be nil when the
// download subsystem is disabled.
func NewHandler(search *service.Search, playlist *service.Playlist, dl *download.Service, cache *engine.Cache, version string) *Handler {
	return &Handler{search: search, playlist: playlist, download: dl, cache: cache, version: version}
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(c *fiber.Ctx) error {
	// Absent limit selects the service default; a non-integer value is a
	// client error, not a silent fallback.
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return writeError(c, engine.InvalidParameter("limit must be an integer", "INVALID_LIMIT"))
		}
		limit = n
	}
	result, err := h.search.Run(c.Context(), c.Query("keyword"), limit, c.Query("sort_by"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// PlaylistMetadata handles GET /api/v1/playlist/metadata. Partial results
// are still a 200; the partial flag in the body tells the caller.
func (h *Handler) PlaylistMetadata(c *fiber.Ctx) error {
	playlist, err := h.playlist.Run(c.Context(), c.Query("playlist_url"), c.QueryBool("force_refresh"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(playlist)
}

type downloadRequest struct {
	VideoID string `json:"video_id"`
}

// Download handles POST /api/v1/download.
func (h *Handler) Download(c *fiber.Ctx) error {
	if h.download == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "downloads are disabled", "error_code": "DOWNLOADS_DISABLED",
		})
	}
	var req downloadRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, engine.MissingParameter("video_id is required"))
	}
	if req.VideoID == "" {
		return writeError(c, engine.MissingParameter("video_id is required"))
	}
	rec, err := h.download.Download(c.Context(), req.VideoID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}

// DownloadStatus handles GET /api/v1/download/:video_id/status.
func (h *Handler) DownloadStatus(c *fiber.Ctx) error {
	if h.download == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "downloads are disabled", "error_code": "DOWNLOADS_DISABLED",
		})
	}
	rec, ok, err := h.download.Status(c.Params("video_id"))
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no download for this video", "error_code": "DOWNLOAD_NOT_FOUND",
		})
	}
	return c.JSON(rec)
}

// Health handles GET /health.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": h.version})
}

// Metrics handles GET /metrics as plain text counters.
func (h *Handler) Metrics(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(engine.FormatMetrics(h.cache))
}

// writeError maps a service error to its HTTP shape. Unclassified errors
// become opaque 500s; the detail stays in the log.
func writeError(c *fiber.Ctx, err error) error {
	if appErr, ok := engine.AsAppError(err); ok {
		return c.Status(appErr.Status).JSON(fiber.Map{
			"error": appErr.Message, "error_code": appErr.Code,
		})
	}
	slog.Error("api: unclassified error", slog.String("path", c.Path()), slog.Any("error", err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error", "error_code": "INTERNAL_ERROR",
	})
}
