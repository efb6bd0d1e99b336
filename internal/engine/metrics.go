package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests      atomic.Int64
	PlaylistRequests    atomic.Int64
	ContinuationBatches atomic.Int64
	PartialPlaylists    atomic.Int64
	ScrapeErrors        atomic.Int64
	DownloadRequests    atomic.Int64
}

func IncrSearchRequests()      { metrics.SearchRequests.Add(1) }
func IncrPlaylistRequests()    { metrics.PlaylistRequests.Add(1) }
func AddContinuationBatches(n int64) { metrics.ContinuationBatches.Add(n) }
func IncrPartialPlaylists()    { metrics.PartialPlaylists.Add(1) }
func IncrScrapeErrors()        { metrics.ScrapeErrors.Add(1) }
func IncrDownloadRequests()    { metrics.DownloadRequests.Add(1) }

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics(c *Cache) map[string]int64 {
	hits, misses := c.Stats()
	return map[string]int64{
		"search_requests":      metrics.SearchRequests.Load(),
		"playlist_requests":    metrics.PlaylistRequests.Load(),
		"continuation_batches": metrics.ContinuationBatches.Load(),
		"partial_playlists":    metrics.PartialPlaylists.Load(),
		"scrape_errors":        metrics.ScrapeErrors.Load(),
		"download_requests":    metrics.DownloadRequests.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoints.
func FormatMetrics(c *Cache) string {
	m := GetMetrics(c)
	keys := []string{
		"search_requests", "playlist_requests",
		"continuation_batches", "partial_playlists", "scrape_errors",
		"download_requests",
		"cache_hits", "cache_misses",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
