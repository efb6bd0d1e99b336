package engine

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sort orders accepted by the search service.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
)

const (
	maxKeywordLen = 200
	defaultLimit  = 1
	maxLimit      = 100
)

var playlistIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{6,50}$`)

// allowedPlaylistHosts is the fixed allow-list of YouTube web domains a
// playlist URL may point at.
var allowedPlaylistHosts = map[string]bool{
	"www.youtube.com":   true,
	"youtube.com":       true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

// ValidateKeyword checks presence and the 1-200 char length constraint.
func ValidateKeyword(keyword string) (string, error) {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return "", MissingParameter("keyword is required")
	}
	// Length limit counts characters, not bytes; CJK keywords stay valid.
	if utf8.RuneCountInString(trimmed) > maxKeywordLen {
		return "", InvalidParameter("keyword must be 1-200 characters", "INVALID_KEYWORD_LENGTH")
	}
	return trimmed, nil
}

// ValidateLimit checks the 1-100 range; 0 selects the default of 1.
func ValidateLimit(limit int) (int, error) {
	if limit == 0 {
		return defaultLimit, nil
	}
	if limit < 1 || limit > maxLimit {
		return 0, InvalidParameter("limit must be between 1 and 100", "INVALID_LIMIT")
	}
	return limit, nil
}

// ValidateSortBy checks the sort enum; empty selects relevance.
func ValidateSortBy(sortBy string) (string, error) {
	if sortBy == "" {
		return SortRelevance, nil
	}
	value := strings.ToLower(strings.TrimSpace(sortBy))
	if value != SortRelevance && value != SortDate {
		return "", InvalidParameter("sort_by must be relevance or date", "INVALID_SORT_BY")
	}
	return value, nil
}

// ExtractPlaylistID validates a playlist URL and returns its canonical
// playlist ID (the list query parameter). The URL must be http/https on a
// known YouTube web domain and carry a well-formed list parameter.
func ExtractPlaylistID(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", MissingParameter("playlist_url is required")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", InvalidParameter("playlist_url is not a valid URL", "INVALID_PLAYLIST_URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", InvalidParameter("playlist_url must use http or https", "INVALID_PLAYLIST_URL")
	}
	if !allowedPlaylistHosts[strings.ToLower(u.Hostname())] {
		return "", InvalidParameter("playlist_url must point at a YouTube domain", "INVALID_PLAYLIST_DOMAIN")
	}

	listID := u.Query().Get("list")
	if listID == "" {
		return "", InvalidParameter("playlist_url is missing the list parameter", "PLAYLIST_ID_NOT_FOUND")
	}
	if !playlistIDRe.MatchString(listID) {
		return "", InvalidParameter("playlist id has an invalid format", "INVALID_PLAYLIST_ID")
	}
	return listID, nil
}
