// go_tube — YouTube search, playlist, and audio-download server.
//
// Exposes three MCP tools (youtube_search, playlist_metadata,
// download_audio) plus a REST API on a separate port.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tube/internal/api"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/download"
	"github.com/anatolykoptev/go_tube/internal/engine/scrape"
	"github.com/anatolykoptev/go_tube/internal/engine/service"
	"github.com/anatolykoptev/go_tube/internal/ytserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
	apiPort = env.Str("API_PORT", "8080")
)

func main() {
	baseURL := env.Str("YOUTUBE_BASE_URL", "https://www.youtube.com")
	searchTimeout := env.Duration("SEARCH_TIMEOUT", 10*time.Second)

	httpClient := &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
	browser := initBrowser()

	cache := engine.NewCache(
		env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 15*time.Minute),
		env.Int("CACHE_MAX_ENTRIES", 1000),
		env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	)

	searchSvc := service.NewSearch(scrape.NewSearcher(httpClient, browser, baseURL, searchTimeout), cache)
	playlistSvc := service.NewPlaylist(scrape.NewPlaylistScraper(httpClient, browser, baseURL), cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dl := initDownloads(ctx)

	handler := api.NewHandler(searchSvc, playlistSvc, dl, cache, version)
	limiter := api.NewRateLimiter(env.Float("RATE_LIMIT_RPS", 5), env.Int("RATE_LIMIT_BURST", 10))
	app := api.NewApp(handler, limiter)
	go func() {
		slog.Info("starting REST API", slog.String("port", apiPort))
		if err := app.Listen(":" + apiPort); err != nil {
			slog.Error("api server failed", slog.Any("error", err))
		}
	}()

	slog.Info("starting go_tube", slog.String("port", mcpPort))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tube",
		Version: version,
	}, nil)
	ytserver.RegisterTools(server, ytserver.Deps{
		Search:   searchSvc,
		Playlist: playlistSvc,
		Download: dl,
	})

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      func() string { return engine.FormatMetrics(cache) },
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
	_ = app.Shutdown()
}

func initBrowser() *engine.BrowserClient {
	// Tightest per-fetch budget: the playlist initial request allows 10s.
	opts := []stealth.ClientOption{stealth.WithTimeout(10)}
	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, using plain HTTP", slog.Any("error", err))
		return nil
	}
	slog.Info("stealth browser client initialized")
	return bc
}

func initDownloads(ctx context.Context) *download.Service {
	dir := env.Str("DOWNLOAD_DIR", "")
	if dir == "" {
		slog.Info("downloads disabled (DOWNLOAD_DIR not set)")
		return nil
	}
	store, err := download.NewStore(env.Str("DOWNLOAD_DB", dir+"/downloads.db"))
	if err != nil {
		slog.Error("download store init failed", slog.Any("error", err))
		return nil
	}
	svc := download.NewService(download.Config{
		Dir:                dir,
		Timeout:            env.Duration("DOWNLOAD_TIMEOUT", 5*time.Minute),
		MaxDurationSeconds: env.Int("DOWNLOAD_MAX_DURATION", 3600),
		Bitrate:            env.Str("DOWNLOAD_BITRATE", "192"),
		TTL:                env.Duration("DOWNLOAD_TTL", 24*time.Hour),
	}, store)
	go svc.CleanupLoop(ctx, env.Duration("DOWNLOAD_CLEANUP_INTERVAL", 10*time.Minute))
	slog.Info("download service initialized", slog.String("dir", dir))
	return svc
}
