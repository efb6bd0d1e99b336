// Package service orchestrates scraping, normalization, caching, and
// sorting behind the API and MCP surfaces.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// VideoSearcher scrapes raw search results for a keyword.
type VideoSearcher interface {
	Search(ctx context.Context, keyword string) ([]engine.Video, error)
}

// PlaylistFetcher scrapes all reachable tracks of a playlist.
type PlaylistFetcher interface {
	FetchPlaylist(ctx context.Context, playlistURL string) ([]engine.Track, bool, engine.ScrapeMeta, error)
}

// Search runs keyword searches: validate, consult the cache, scrape on a
// miss, normalize, then sort and trim per request. The cache always holds
// the full normalized result set, so one scrape serves every later
// limit/sort combination of the same keyword.
type Search struct {
	searcher VideoSearcher
	cache    *engine.Cache
}

// NewSearch builds the search service. cache may be nil to disable caching.
func NewSearch(searcher VideoSearcher, cache *engine.Cache) *Search {
	return &Search{searcher: searcher, cache: cache}
}

// Run executes one search request.
func (s *Search) Run(ctx context.Context, keyword string, limit int, sortBy string) (engine.SearchResult, error) {
	keyword, err := engine.ValidateKeyword(keyword)
	if err != nil {
		return engine.SearchResult{}, err
	}
	limit, err = engine.ValidateLimit(limit)
	if err != nil {
		return engine.SearchResult{}, err
	}
	sortBy, err = engine.ValidateSortBy(sortBy)
	if err != nil {
		return engine.SearchResult{}, err
	}
	engine.IncrSearchRequests()

	key := engine.CacheKey("search", keyword)
	if videos, ok := engine.CacheLoadJSON[[]engine.Video](ctx, s.cache, key); ok {
		return engine.NewSearchResult(keyword, trim(engine.SortVideos(videos, sortBy), limit)), nil
	}

	raw, err := s.searcher.Search(ctx, keyword)
	if err != nil {
		return engine.SearchResult{}, err
	}
	videos := make([]engine.Video, 0, len(raw))
	for _, v := range raw {
		videos = append(videos, engine.NormalizeVideo(v))
	}
	engine.CacheStoreJSON(ctx, s.cache, key, videos)
	slog.Info("search: scraped", slog.String("keyword", keyword), slog.Int("results", len(videos)))

	return engine.NewSearchResult(keyword, trim(engine.SortVideos(videos, sortBy), limit)), nil
}

func trim(videos []engine.Video, limit int) []engine.Video {
	if limit > 0 && len(videos) > limit {
		return videos[:limit]
	}
	return videos
}

// Playlist runs playlist metadata requests. Complete playlists are cached
// by ID; partial or empty results always bypass the cache so the next
// request retries the scrape.
type Playlist struct {
	fetcher PlaylistFetcher
	cache   *engine.Cache
}

// NewPlaylist builds the playlist service. cache may be nil.
func NewPlaylist(fetcher PlaylistFetcher, cache *engine.Cache) *Playlist {
	return &Playlist{fetcher: fetcher, cache: cache}
}

// Run executes one playlist request. forceRefresh skips the cache lookup
// but a fresh complete result still replaces the cached entry.
func (p *Playlist) Run(ctx context.Context, playlistURL string, forceRefresh bool) (engine.Playlist, error) {
	playlistID, err := engine.ExtractPlaylistID(playlistURL)
	if err != nil {
		return engine.Playlist{}, err
	}
	engine.IncrPlaylistRequests()

	key := engine.CacheKey("playlist", playlistID)
	if !forceRefresh {
		if cached, ok := engine.CacheLoadJSON[engine.Playlist](ctx, p.cache, key); ok {
			return cached, nil
		}
	}

	started := time.Now()
	tracks, partial, meta, err := p.fetcher.FetchPlaylist(ctx, playlistURL)
	if err != nil {
		return engine.Playlist{}, err
	}
	for i := range tracks {
		tracks[i] = engine.NormalizeTrack(tracks[i])
	}

	videoCount := meta.VideoCount
	if videoCount == 0 {
		videoCount = len(tracks)
	}
	playlist := engine.Playlist{
		PlaylistID:    playlistID,
		URL:           playlistURL,
		Title:         meta.Title,
		VideoCount:    videoCount,
		Partial:       partial,
		PartialReason: meta.PartialReason,
		FetchedAt:     engine.Timestamp(),
		Tracks:        tracks,
	}
	if !partial && len(tracks) > 0 {
		engine.CacheStoreJSON(ctx, p.cache, key, playlist)
	}
	slog.Info("playlist: scraped",
		slog.String("playlist_id", playlistID),
		slog.Int("tracks", len(tracks)),
		slog.Int("batches", meta.ContinuationBatches),
		slog.Bool("partial", partial),
		slog.Duration("elapsed", time.Since(started)))
	return playlist, nil
}
