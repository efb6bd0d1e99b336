package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field length caps applied during normalization.
const (
	maxTitleLen       = 500
	maxChannelLen     = 200
	maxDescriptionLen = 5000
)

var relativeTimeRe = regexp.MustCompile(`(?i)(\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago`)

// NormalizeVideo cleans a scraped Video: relative publish dates become
// absolute ISO 8601 UTC timestamps (dropped when unparseable), text fields
// are trimmed and truncated. Pure function, no I/O.
func NormalizeVideo(v Video) Video {
	v.Title = CleanText(v.Title, maxTitleLen)
	v.Channel = CleanText(v.Channel, maxChannelLen)
	v.Description = CleanText(v.Description, maxDescriptionLen)
	v.PublishDate = normalizePublishDate(v.PublishDate, time.Now().UTC())
	return v
}

// NormalizeTrack cleans a scraped Track. Relative date and duration strings
// are kept as-is: playlist consumers expect YouTube's native display format.
func NormalizeTrack(t Track) Track {
	if cleaned := CleanText(t.Title, maxTitleLen); cleaned != "" {
		t.Title = cleaned
	}
	t.Channel = CleanText(t.Channel, maxChannelLen)
	if t.URL == "" {
		t.URL = WatchURL(t.VideoID)
	}
	return t
}

// normalizePublishDate converts text like "2 days ago" to an ISO 8601 UTC
// timestamp with second precision, using fixed approximations (month = 30
// days, year = 365 days). Non-matching text yields the empty string.
func normalizePublishDate(relative string, now time.Time) string {
	if relative == "" {
		return ""
	}
	m := relativeTimeRe.FindStringSubmatch(relative)
	if m == nil {
		return ""
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}

	var delta time.Duration
	switch strings.ToLower(m[2]) {
	case "second":
		delta = time.Duration(amount) * time.Second
	case "minute":
		delta = time.Duration(amount) * time.Minute
	case "hour":
		delta = time.Duration(amount) * time.Hour
	case "day":
		delta = time.Duration(amount) * 24 * time.Hour
	case "week":
		delta = time.Duration(amount) * 7 * 24 * time.Hour
	case "month":
		delta = time.Duration(amount) * 30 * 24 * time.Hour
	case "year":
		delta = time.Duration(amount) * 365 * 24 * time.Hour
	default:
		return ""
	}

	return now.Add(-delta).Truncate(time.Second).Format(time.RFC3339)
}

// CleanText trims whitespace, collapses to empty when nothing remains, and
// caps the result at max runes.
func CleanText(s string, max int) string {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return ""
	}
	return TruncateRunes(cleaned, max, "")
}
