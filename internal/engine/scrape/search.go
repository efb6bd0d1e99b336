package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

var ytInitialDataRe = regexp.MustCompile(`ytInitialData\s*=\s*`)

// Searcher scrapes YouTube search result pages by parsing the embedded
// ytInitialData blob.
type Searcher struct {
	fetcher fetcher
	baseURL string
	timeout time.Duration
}

// NewSearcher builds a search page scraper. browser may be nil.
func NewSearcher(client *http.Client, browser *engine.BrowserClient, baseURL string, timeout time.Duration) *Searcher {
	return &Searcher{
		fetcher: fetcher{httpClient: client, browser: browser},
		baseURL: baseURL,
		timeout: timeout,
	}
}

// Search fetches the results page for keyword and extracts every video
// entry. A transport-level failure (timeout, refused, non-2xx) surfaces as
// ServiceUnavailable. A page without a parseable ytInitialData blob yields
// an empty result set, not an error: a transient empty page is more common
// than a hard scraping break.
func (s *Searcher) Search(ctx context.Context, keyword string) ([]engine.Video, error) {
	searchURL := s.baseURL + "/results?search_query=" + url.QueryEscape(keyword) + "&hl=en"

	body, err := s.fetcher.getPage(ctx, searchURL, s.timeout)
	if err != nil {
		slog.Warn("search: page fetch failed", slog.String("keyword", keyword), slog.Any("error", err))
		return nil, engine.ServiceUnavailable("YouTube search is temporarily unreachable")
	}

	blob, ok := findInitialData(body)
	if !ok {
		slog.Warn("search: ytInitialData not found", slog.String("keyword", keyword))
		return []engine.Video{}, nil
	}
	return extractVideos(blob), nil
}

// findInitialData locates the embedded ytInitialData JSON object in an HTML
// page and returns the raw blob.
func findInitialData(body []byte) ([]byte, bool) {
	loc := ytInitialDataRe.FindIndex(body)
	if loc == nil {
		return nil, false
	}
	rest := body[loc[1]:]
	if idx := bytes.IndexByte(rest, '{'); idx >= 0 {
		rest = rest[idx:]
	} else {
		return nil, false
	}
	blob := extractJSON(rest)
	if blob == nil || !json.Valid(blob) {
		return nil, false
	}
	return blob, true
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	for i := 0; i < len(b); i++ {
		if inStr {
			switch b[i] {
			case '\\':
				i++ // skip the escaped byte, including \\
			case '"':
				inStr = false
			}
			continue
		}
		switch b[i] {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// extractVideos walks the blob depth-first in document order, collecting
// every videoRenderer entry. Entries without a valid 11-char video ID are
// discarded; a malformed entry is skipped, never fatal.
func extractVideos(blob []byte) []engine.Video {
	var videos []engine.Video
	for _, raw := range collectRenderers(blob, "videoRenderer") {
		var renderer map[string]any
		if err := json.Unmarshal(raw, &renderer); err != nil {
			continue
		}
		if video, ok := parseVideoRenderer(renderer); ok {
			videos = append(videos, video)
		}
	}
	if videos == nil {
		videos = []engine.Video{}
	}
	return videos
}

// collectRenderers does an ordered depth-first walk over raw JSON,
// returning the value of every object entry named signature. Object entries
// are visited in document order via token streaming; a plain
// map[string]json.RawMessage walk would randomize sibling order and break
// YouTube's native ranking.
func collectRenderers(raw []byte, signature string) []json.RawMessage {
	var out []json.RawMessage
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return out
	}
	switch trimmed[0] {
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil { // consume '{'
			return out
		}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return out
			}
			key, _ := keyTok.(string)
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return out
			}
			if key == signature {
				out = append(out, value)
				continue
			}
			out = append(out, collectRenderers(value, signature)...)
		}
	case '[':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil { // consume '['
			return out
		}
		for dec.More() {
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return out
			}
			out = append(out, collectRenderers(value, signature)...)
		}
	}
	return out
}

// parseVideoRenderer maps one videoRenderer object to a Video.
func parseVideoRenderer(renderer map[string]any) (engine.Video, bool) {
	videoID, ok := digString(renderer, "videoId")
	if !ok {
		return engine.Video{}, false
	}
	video, err := engine.NewVideo(videoID)
	if err != nil {
		return engine.Video{}, false
	}

	if title, ok := nodeText(renderer["title"]); ok {
		video.Title = title
	}
	if channel, ok := nodeText(renderer["ownerText"]); ok {
		video.Channel = channel
	}
	if chURL, ok := channelURL(renderer["ownerText"]); ok {
		video.ChannelURL = chURL
	}
	if published, ok := nodeText(renderer["publishedTimeText"]); ok {
		video.PublishDate = published
	}
	if views, ok := viewCount(renderer["viewCountText"]); ok {
		video.ViewCount = &views
	}
	// First of the available snippets; the normalizer truncates downstream.
	if snippets, ok := digSlice(renderer, "detailedMetadataSnippets"); ok && len(snippets) > 0 {
		if snippet, ok := dig(snippets[0], "snippetText"); ok {
			if text, ok := nodeText(snippet); ok {
				video.Description = text
			}
		}
	}
	return video, true
}
