package engine

import (
	"strings"
	"testing"
)

func TestValidateKeyword(t *testing.T) {
	tests := []struct {
		name     string
		keyword  string
		want     string
		wantCode string
	}{
		{"plain", "lofi beats", "lofi beats", ""},
		{"trimmed", "  go concurrency  ", "go concurrency", ""},
		{"empty", "", "", "MISSING_PARAMETER"},
		{"whitespace only", "   ", "", "MISSING_PARAMETER"},
		{"too long", strings.Repeat("a", 201), "", "INVALID_KEYWORD_LENGTH"},
		{"max length", strings.Repeat("a", 200), strings.Repeat("a", 200), ""},
		{"multibyte at max length", strings.Repeat("教", 200), strings.Repeat("教", 200), ""},
		{"multibyte too long", strings.Repeat("教", 201), "", "INVALID_KEYWORD_LENGTH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateKeyword(tt.keyword)
			checkValidation(t, got, tt.want, err, tt.wantCode)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		want     int
		wantCode string
	}{
		{"zero defaults to one", 0, 1, ""},
		{"one", 1, 1, ""},
		{"hundred", 100, 100, ""},
		{"negative", -1, 0, "INVALID_LIMIT"},
		{"over max", 101, 0, "INVALID_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLimit(tt.limit)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %d, want %d", got, tt.want)
				}
				return
			}
			assertCode(t, err, tt.wantCode)
		})
	}
}

func TestValidateSortBy(t *testing.T) {
	tests := []struct {
		name     string
		sortBy   string
		want     string
		wantCode string
	}{
		{"empty defaults to relevance", "", SortRelevance, ""},
		{"relevance", "relevance", SortRelevance, ""},
		{"date", "date", SortDate, ""},
		{"case insensitive", "DATE", SortDate, ""},
		{"unknown", "views", "", "INVALID_SORT_BY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSortBy(tt.sortBy)
			checkValidation(t, got, tt.want, err, tt.wantCode)
		})
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		want     string
		wantCode string
	}{
		{"playlist page", "https://www.youtube.com/playlist?list=PLabc123XYZ", "PLabc123XYZ", ""},
		{"watch page with list", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc123XYZ", "PLabc123XYZ", ""},
		{"music domain", "https://music.youtube.com/playlist?list=RDCLAK5uy_abc", "RDCLAK5uy_abc", ""},
		{"mobile domain", "https://m.youtube.com/playlist?list=PLabc123XYZ", "PLabc123XYZ", ""},
		{"empty", "", "", "MISSING_PARAMETER"},
		{"no scheme", "www.youtube.com/playlist?list=PLabc123XYZ", "", "INVALID_PLAYLIST_URL"},
		{"wrong domain", "https://example.com/playlist?list=PLabc123XYZ", "", "INVALID_PLAYLIST_DOMAIN"},
		{"missing list param", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "", "PLAYLIST_ID_NOT_FOUND"},
		{"malformed id", "https://www.youtube.com/playlist?list=ab", "", "INVALID_PLAYLIST_ID"},
		{"id with spaces", "https://www.youtube.com/playlist?list=bad+id+here!", "", "INVALID_PLAYLIST_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPlaylistID(tt.url)
			checkValidation(t, got, tt.want, err, tt.wantCode)
		})
	}
}

func checkValidation(t *testing.T, got, want string, err error, wantCode string) {
	t.Helper()
	if wantCode == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		return
	}
	assertCode(t, err, wantCode)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("error code = %s, want %s", appErr.Code, code)
	}
}
