package engine

import (
	"fmt"
	"regexp"
	"time"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ValidVideoID reports whether id is an 11-char YouTube video identifier.
func ValidVideoID(id string) bool {
	return videoIDRe.MatchString(id)
}

// WatchURL builds the standard watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Timestamp returns the current UTC time in ISO 8601 with second precision.
func Timestamp() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Video is a single search result entry. Identity is VideoID; instances are
// built once by the scraper, normalized once, and never mutated afterwards.
type Video struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title,omitempty"`
	URL         string `json:"url,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ChannelURL  string `json:"channel_url,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
	ViewCount   *int64 `json:"view_count,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewVideo constructs a Video, enforcing the video-ID format invariant.
func NewVideo(videoID string) (Video, error) {
	if !ValidVideoID(videoID) {
		return Video{}, fmt.Errorf("invalid video id %q", videoID)
	}
	return Video{VideoID: videoID, URL: WatchURL(videoID)}, nil
}

// Track is a playlist item: a Video plus its display duration and 1-based
// position in scrape order. Relative date and duration strings are kept
// as YouTube renders them.
type Track struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Channel     string `json:"channel,omitempty"`
	ChannelURL  string `json:"channel_url,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
	Duration    string `json:"duration,omitempty"`
	ViewCount   *int64 `json:"view_count,omitempty"`
	Position    int    `json:"position,omitempty"`
}

// NewTrack constructs a Track, enforcing the video-ID format invariant.
func NewTrack(videoID string, position int) (Track, error) {
	if !ValidVideoID(videoID) {
		return Track{}, fmt.Errorf("invalid video id %q", videoID)
	}
	return Track{VideoID: videoID, URL: WatchURL(videoID), Position: position}, nil
}

// Playlist aggregates the tracks fetched from one playlist scrape.
// Partial playlists (stopped early on timeout/cap/error) are never cached.
type Playlist struct {
	PlaylistID    string  `json:"playlist_id"`
	URL           string  `json:"url"`
	Title         string  `json:"title,omitempty"`
	VideoCount    int     `json:"video_count"`
	Partial       bool    `json:"partial"`
	PartialReason string  `json:"partial_reason,omitempty"`
	FetchedAt     string  `json:"fetched_at"`
	Tracks        []Track `json:"tracks"`
}

// ScrapeMeta carries diagnostics from one playlist scrape.
type ScrapeMeta struct {
	Title               string  `json:"title,omitempty"`
	VideoCount          int     `json:"video_count,omitempty"`
	ContinuationBatches int     `json:"continuation_batches"`
	ElapsedSeconds      float64 `json:"elapsed_seconds"`
	FetchedTrackCount   int     `json:"fetched_track_count"`
	PartialReason       string  `json:"partial_reason,omitempty"`
}

// SearchResult aggregates one search response. ResultCount always equals
// len(Videos); use NewSearchResult to keep the invariant.
type SearchResult struct {
	SearchKeyword string  `json:"search_keyword"`
	ResultCount   int     `json:"result_count"`
	Videos        []Video `json:"videos"`
	Timestamp     string  `json:"timestamp"`
}

// NewSearchResult builds a SearchResult with a consistent count and a fresh
// timestamp.
func NewSearchResult(keyword string, videos []Video) SearchResult {
	if videos == nil {
		videos = []Video{}
	}
	return SearchResult{
		SearchKeyword: keyword,
		ResultCount:   len(videos),
		Videos:        videos,
		Timestamp:     Timestamp(),
	}
}

// --- MCP tool inputs ---

type SearchInput struct {
	Keyword string `json:"keyword" jsonschema:"Search keyword (1-200 chars)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Max results 1-100 (default: 1)"`
	SortBy  string `json:"sort_by,omitempty" jsonschema:"Sort order: relevance or date (default: relevance)"`
}

type PlaylistInput struct {
	PlaylistURL  string `json:"playlist_url" jsonschema:"YouTube playlist URL containing a list parameter"`
	ForceRefresh bool   `json:"force_refresh,omitempty" jsonschema:"Skip cache and re-scrape"`
}

type DownloadInput struct {
	VideoID string `json:"video_id" jsonschema:"11-char YouTube video ID"`
}
