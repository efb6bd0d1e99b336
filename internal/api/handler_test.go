package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/service"
)

type stubSearcher struct {
	videos []engine.Video
	err    error
}

func (s *stubSearcher) Search(context.Context, string) ([]engine.Video, error) {
	return s.videos, s.err
}

type stubFetcher struct {
	tracks  []engine.Track
	partial bool
	meta    engine.ScrapeMeta
	err     error
}

func (s *stubFetcher) FetchPlaylist(context.Context, string) ([]engine.Track, bool, engine.ScrapeMeta, error) {
	return s.tracks, s.partial, s.meta, s.err
}

func newTestApp(searcher service.VideoSearcher, fetcher service.PlaylistFetcher) *fiber.App {
	handler := NewHandler(
		service.NewSearch(searcher, nil),
		service.NewPlaylist(fetcher, nil),
		nil, nil, "test",
	)
	return NewApp(handler, nil)
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		app := newTestApp(&stubSearcher{videos: []engine.Video{
			{VideoID: "aaaaaaaaaa1", Title: "One", URL: engine.WatchURL("aaaaaaaaaa1")},
			{VideoID: "aaaaaaaaaa2", Title: "Two", URL: engine.WatchURL("aaaaaaaaaa2")},
		}}, &stubFetcher{})

		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/search?keyword=lofi&limit=2", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result engine.SearchResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "lofi", result.SearchKeyword)
		assert.Equal(t, 2, result.ResultCount)
	})

	t.Run("missing keyword", func(t *testing.T) {
		app := newTestApp(&stubSearcher{}, &stubFetcher{})
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/search", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assertErrorCode(t, resp.Body, "MISSING_PARAMETER")
	})

	t.Run("malformed limit", func(t *testing.T) {
		app := newTestApp(&stubSearcher{}, &stubFetcher{})
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/search?keyword=q&limit=abc", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assertErrorCode(t, resp.Body, "INVALID_LIMIT")
	})

	t.Run("absent limit uses the default", func(t *testing.T) {
		app := newTestApp(&stubSearcher{videos: []engine.Video{
			{VideoID: "aaaaaaaaaa1", URL: engine.WatchURL("aaaaaaaaaa1")},
			{VideoID: "aaaaaaaaaa2", URL: engine.WatchURL("aaaaaaaaaa2")},
		}}, &stubFetcher{})
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/search?keyword=q", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result engine.SearchResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 1, result.ResultCount)
	})

	t.Run("upstream down", func(t *testing.T) {
		app := newTestApp(&stubSearcher{err: engine.ServiceUnavailable("down")}, &stubFetcher{})
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/search?keyword=q", nil))
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assertErrorCode(t, resp.Body, "YOUTUBE_UNAVAILABLE")
	})
}

func TestPlaylistEndpoint(t *testing.T) {
	t.Run("partial result is still 200", func(t *testing.T) {
		app := newTestApp(&stubSearcher{}, &stubFetcher{
			tracks:  []engine.Track{{VideoID: "aaaaaaaaaa1", Title: "One", Position: 1}},
			partial: true,
			meta:    engine.ScrapeMeta{PartialReason: engine.PartialTimeout},
		})
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/playlist/metadata?playlist_url=https%3A%2F%2Fwww.youtube.com%2Fplaylist%3Flist%3DPLtest12345", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var playlist engine.Playlist
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&playlist))
		assert.True(t, playlist.Partial)
		assert.Equal(t, engine.PartialTimeout, playlist.PartialReason)
	})

	t.Run("bad url", func(t *testing.T) {
		app := newTestApp(&stubSearcher{}, &stubFetcher{})
		resp, err := app.Test(httptest.NewRequest("GET",
			"/api/v1/playlist/metadata?playlist_url=https%3A%2F%2Fexample.com%2Fx", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assertErrorCode(t, resp.Body, "INVALID_PLAYLIST_DOMAIN")
	})
}

func TestDownloadEndpointDisabled(t *testing.T) {
	app := newTestApp(&stubSearcher{}, &stubFetcher{})
	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/download", nil))
	require.NoError(t, err)
	assert.Equal(t, 501, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&stubSearcher{}, &stubFetcher{})
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(&stubSearcher{}, &stubFetcher{})
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "search_requests")
}

func assertErrorCode(t *testing.T, body io.Reader, code string) {
	t.Helper()
	var payload struct {
		ErrorCode string `json:"error_code"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&payload))
	assert.Equal(t, code, payload.ErrorCode)
}
