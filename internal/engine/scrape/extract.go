package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

// Best-effort extraction helpers for YouTube's embedded JSON. Every helper
// takes an arbitrary decoded value and returns (value, ok); malformed or
// missing structure never panics, it degrades to ok=false. The upstream
// shape is not contractually stable, so all navigation is permissive.

// dig walks nested objects by key, returning the value at the end of the
// path.
func dig(v any, keys ...string) (any, bool) {
	cur := v
	for _, key := range keys {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// digMap is dig constrained to an object result.
func digMap(v any, keys ...string) (map[string]any, bool) {
	got, ok := dig(v, keys...)
	if !ok {
		return nil, false
	}
	m, ok := got.(map[string]any)
	return m, ok
}

// digSlice is dig constrained to an array result.
func digSlice(v any, keys ...string) ([]any, bool) {
	got, ok := dig(v, keys...)
	if !ok {
		return nil, false
	}
	s, ok := got.([]any)
	return s, ok
}

// digString is dig constrained to a non-empty string result.
func digString(v any, keys ...string) (string, bool) {
	got, ok := dig(v, keys...)
	if !ok {
		return "", false
	}
	s, ok := got.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// nodeText extracts the plain text of a YouTube rich-text node: either a
// bare string, {"simpleText": ...}, or {"runs": [{"text": ...}, ...]} with
// the run texts concatenated. Empty-after-trim degrades to ok=false.
func nodeText(node any) (string, bool) {
	switch n := node.(type) {
	case string:
		text := strings.TrimSpace(n)
		return text, text != ""
	case map[string]any:
		if simple, ok := n["simpleText"].(string); ok {
			text := strings.TrimSpace(simple)
			return text, text != ""
		}
		runs, ok := n["runs"].([]any)
		if !ok {
			return "", false
		}
		var sb strings.Builder
		for _, run := range runs {
			if text, ok := digString(run, "text"); ok {
				sb.WriteString(text)
			}
		}
		text := strings.TrimSpace(sb.String())
		return text, text != ""
	}
	return "", false
}

// channelURL extracts a channel URL from the navigation endpoint of a
// byline node. Prefers the canonical handle URL, falls back to /channel/<id>.
func channelURL(node any) (string, bool) {
	runs, ok := digSlice(node, "runs")
	if !ok {
		return "", false
	}
	for _, run := range runs {
		endpoint, ok := digMap(run, "navigationEndpoint", "browseEndpoint")
		if !ok {
			continue
		}
		if base, ok := digString(endpoint, "canonicalBaseUrl"); ok {
			return "https://www.youtube.com" + base, true
		}
		if browseID, ok := digString(endpoint, "browseId"); ok {
			return "https://www.youtube.com/channel/" + browseID, true
		}
	}
	return "", false
}

var viewCountRe = regexp.MustCompile(`(?i)([\d,\.]+)\s*([KMB])?\s*view`)

// parseViewCount parses free-form view-count text such as "1,234 views" or
// "1.2M views". Unparseable text degrades to ok=false, never to zero:
// "field present but empty" and "zero views" are different facts.
func parseViewCount(text string) (int64, bool) {
	m := viewCountRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		num *= 1_000
	case "M":
		num *= 1_000_000
	case "B":
		num *= 1_000_000_000
	}
	if num < 0 {
		return 0, false
	}
	return int64(num), true
}

// viewCount extracts and parses a view count from a rich-text node.
func viewCount(node any) (int64, bool) {
	text, ok := nodeText(node)
	if !ok {
		return 0, false
	}
	return parseViewCount(text)
}
