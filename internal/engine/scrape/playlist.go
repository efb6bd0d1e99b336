package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Scrape budgets. A playlist fetch never runs past MaxTotalScrapeTime or
// MaxContinuationBatches; hitting either cap yields a partial result, not
// an error.
const (
	MaxContinuationBatches     = 15
	MaxTotalScrapeTime         = 30 * time.Second
	InitialRequestTimeout      = 10 * time.Second
	ContinuationRequestTimeout = 5 * time.Second
)

var playlistVideoCountRe = regexp.MustCompile(`(\d[\d,]*)\s+video`)

// PlaylistScraper fetches a playlist page and pages through its
// continuations via the InnerTube browse endpoint. Budgets are fields so
// callers (and tests) can shrink them; the zero value of each falls back to
// the package default.
type PlaylistScraper struct {
	fetcher fetcher
	baseURL string

	MaxBatches     int
	TotalBudget    time.Duration
	InitialTimeout time.Duration
	BatchTimeout   time.Duration
}

// NewPlaylistScraper builds a playlist scraper with default budgets.
// browser may be nil.
func NewPlaylistScraper(client *http.Client, browser *engine.BrowserClient, baseURL string) *PlaylistScraper {
	return &PlaylistScraper{
		fetcher:        fetcher{httpClient: client, browser: browser},
		baseURL:        baseURL,
		MaxBatches:     MaxContinuationBatches,
		TotalBudget:    MaxTotalScrapeTime,
		InitialTimeout: InitialRequestTimeout,
		BatchTimeout:   ContinuationRequestTimeout,
	}
}

// FetchPlaylist scrapes every track of the playlist at playlistURL, paging
// through continuations until the playlist is exhausted or a budget runs
// out. It returns the tracks in playlist order, whether the result is
// partial, and scrape diagnostics. Only a failed or unparseable initial
// page is an error; continuation failures degrade to a partial result.
func (p *PlaylistScraper) FetchPlaylist(ctx context.Context, playlistURL string) ([]engine.Track, bool, engine.ScrapeMeta, error) {
	if err := p.checkContinuationEndpoint(); err != nil {
		engine.IncrScrapeErrors()
		return nil, false, engine.ScrapeMeta{}, err
	}

	start := time.Now()
	body, err := p.fetcher.getPage(ctx, playlistURL, p.initialTimeout())
	if err != nil {
		engine.IncrScrapeErrors()
		return nil, false, engine.ScrapeMeta{}, engine.ScrapingError("failed to fetch playlist page", err)
	}

	blob, ok := findInitialData(body)
	if !ok {
		engine.IncrScrapeErrors()
		return nil, false, engine.ScrapeMeta{}, engine.ScrapingError("playlist page has no parseable data", nil)
	}
	var data map[string]any
	if err := json.Unmarshal(blob, &data); err != nil {
		engine.IncrScrapeErrors()
		return nil, false, engine.ScrapeMeta{}, engine.ScrapingError("playlist data is malformed", err)
	}
	if alert, ok := pageAlert(data); ok {
		engine.IncrScrapeErrors()
		return nil, false, engine.ScrapeMeta{}, engine.ScrapingError(alert, nil)
	}

	title, videoCount := playlistHeader(data)

	pos := 0
	tracks := extractTracks(blob, &pos)
	token := extractContinuationToken(blob)

	visitorData := generateVisitorData()
	batches := 0
	partial := false
	reason := ""

	for token != "" {
		if batches >= p.maxBatches() {
			partial, reason = true, engine.PartialBatchLimitExceeded
			break
		}
		remaining := p.totalBudget() - time.Since(start)
		if remaining <= 0 {
			partial, reason = true, engine.PartialTimeout
			break
		}
		timeout := p.batchTimeout()
		if remaining < timeout {
			timeout = remaining
		}

		page, err := p.fetcher.postContinuation(ctx, p.baseURL, token, visitorData, timeout)
		if err != nil {
			partial = true
			if errors.Is(err, context.DeadlineExceeded) {
				reason = engine.PartialContinuationTimeout
			} else {
				reason = engine.PartialContinuationError
			}
			slog.Warn("playlist: continuation failed",
				slog.Int("batch", batches+1),
				slog.String("reason", reason),
				slog.Any("error", err))
			break
		}
		batches++
		engine.AddContinuationBatches(1)

		tracks = append(tracks, extractTracks(page, &pos)...)

		if !json.Valid(page) {
			partial, reason = true, engine.PartialContinuationError
			break
		}
		token = extractContinuationToken(page)
	}

	if partial {
		engine.IncrPartialPlaylists()
	}
	if tracks == nil {
		tracks = []engine.Track{}
	}
	meta := engine.ScrapeMeta{
		Title:               title,
		VideoCount:          videoCount,
		ContinuationBatches: batches,
		ElapsedSeconds:      time.Since(start).Seconds(),
		FetchedTrackCount:   len(tracks),
		PartialReason:       reason,
	}
	slog.Debug("playlist: scrape done",
		slog.String("tracks", trackCountSuffix(len(tracks), videoCount)),
		slog.Int("batches", batches),
		slog.Bool("partial", partial))
	return tracks, partial, meta, nil
}

func (p *PlaylistScraper) maxBatches() int {
	if p.MaxBatches > 0 {
		return p.MaxBatches
	}
	return MaxContinuationBatches
}

func (p *PlaylistScraper) totalBudget() time.Duration {
	if p.TotalBudget > 0 {
		return p.TotalBudget
	}
	return MaxTotalScrapeTime
}

func (p *PlaylistScraper) initialTimeout() time.Duration {
	if p.InitialTimeout > 0 {
		return p.InitialTimeout
	}
	return InitialRequestTimeout
}

func (p *PlaylistScraper) batchTimeout() time.Duration {
	if p.BatchTimeout > 0 {
		return p.BatchTimeout
	}
	return ContinuationRequestTimeout
}

// checkContinuationEndpoint verifies that the derived browse endpoint stays
// on the configured scraping host. Continuation tokens come from scraped
// pages, so requests built around them never leave the host the initial
// page came from.
func (p *PlaylistScraper) checkContinuationEndpoint() error {
	u, err := url.Parse(p.baseURL + ytBrowsePath)
	if err != nil {
		return engine.ScrapingError("continuation endpoint is not a valid URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return engine.ScrapingError("continuation endpoint must use http or https", nil)
	}
	base, err := url.Parse(p.baseURL)
	if err != nil || u.Host == "" || u.Host != base.Host {
		return engine.ScrapingError("continuation endpoint host mismatch", nil)
	}
	if strings.Contains(u.Host, "googleapis") {
		return engine.ScrapingError("continuation endpoint host not allowed", nil)
	}
	return nil
}

// pageAlert returns the text of an ERROR-type page alert (deleted or
// private playlists render one instead of content).
func pageAlert(data map[string]any) (string, bool) {
	alerts, ok := digSlice(data, "alerts")
	if !ok {
		return "", false
	}
	for _, alert := range alerts {
		renderer, ok := digMap(alert, "alertRenderer")
		if !ok {
			continue
		}
		if kind, _ := digString(renderer, "type"); kind != "ERROR" {
			continue
		}
		if text, ok := nodeText(renderer["text"]); ok {
			return text, true
		}
		return "playlist is unavailable", true
	}
	return "", false
}

// playlistHeader extracts the playlist title and declared video count from
// the page header, best effort.
func playlistHeader(data map[string]any) (string, int) {
	header, ok := digMap(data, "header", "playlistHeaderRenderer")
	if !ok {
		return "", 0
	}
	title, _ := nodeText(header["title"])

	for _, node := range []any{header["numVideosText"], header["subtitle"]} {
		text, ok := nodeText(node)
		if !ok {
			continue
		}
		if m := playlistVideoCountRe.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
				return title, n
			}
		}
	}
	return title, 0
}

// extractTracks collects playlist entries from a page or continuation
// response in document order. Playlist browse pages render
// playlistVideoRenderer entries; watch-page playlist panels render
// playlistPanelVideoRenderer. The shared position counter keeps track
// positions strictly increasing across continuation batches.
func extractTracks(raw []byte, pos *int) []engine.Track {
	var tracks []engine.Track
	for _, msg := range collectRenderers(raw, "playlistVideoRenderer") {
		if track, ok := parseTrackRenderer(msg, pos); ok {
			tracks = append(tracks, track)
		}
	}
	if tracks != nil {
		return tracks
	}
	for _, msg := range collectRenderers(raw, "playlistPanelVideoRenderer") {
		if track, ok := parsePanelRenderer(msg, pos); ok {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// parseTrackRenderer maps one playlistVideoRenderer entry to a Track.
// Entries without a valid video ID and title are discarded.
func parseTrackRenderer(raw json.RawMessage, pos *int) (engine.Track, bool) {
	var renderer map[string]any
	if err := json.Unmarshal(raw, &renderer); err != nil {
		return engine.Track{}, false
	}
	videoID, ok := digString(renderer, "videoId")
	if !ok {
		return engine.Track{}, false
	}
	title, ok := nodeText(renderer["title"])
	if !ok {
		return engine.Track{}, false
	}
	*pos++
	track, err := engine.NewTrack(videoID, *pos)
	if err != nil {
		*pos--
		return engine.Track{}, false
	}
	track.Title = title
	if channel, ok := nodeText(renderer["shortBylineText"]); ok {
		track.Channel = channel
	}
	if chURL, ok := channelURL(renderer["shortBylineText"]); ok {
		track.ChannelURL = chURL
	}
	if duration, ok := nodeText(renderer["lengthText"]); ok {
		track.Duration = duration
	}
	if published, ok := nodeText(renderer["publishedTimeText"]); ok {
		track.PublishDate = published
	}
	if views, ok := viewCount(renderer["videoInfo"]); ok {
		track.ViewCount = &views
	}
	return track, true
}

// parsePanelRenderer maps one playlistPanelVideoRenderer entry (the
// watch-page playlist sidebar shape) to a Track. Panel entries carry no
// publish date or view count.
func parsePanelRenderer(raw json.RawMessage, pos *int) (engine.Track, bool) {
	var renderer map[string]any
	if err := json.Unmarshal(raw, &renderer); err != nil {
		return engine.Track{}, false
	}
	videoID, ok := digString(renderer, "videoId")
	if !ok {
		return engine.Track{}, false
	}
	title, ok := nodeText(renderer["title"])
	if !ok {
		return engine.Track{}, false
	}
	*pos++
	track, err := engine.NewTrack(videoID, *pos)
	if err != nil {
		*pos--
		return engine.Track{}, false
	}
	track.Title = title
	if channel, ok := nodeText(renderer["longBylineText"]); ok {
		track.Channel = channel
	}
	if chURL, ok := channelURL(renderer["longBylineText"]); ok {
		track.ChannelURL = chURL
	}
	if duration, ok := nodeText(renderer["lengthText"]); ok {
		track.Duration = duration
	}
	return track, true
}

// extractContinuationToken finds the next continuation token in a page or
// continuation response. The legacy nextContinuationData shape is checked
// first, then the modern continuationItemRenderer shape; first match in
// document order wins.
func extractContinuationToken(raw []byte) string {
	for _, msg := range collectRenderers(raw, "nextContinuationData") {
		var node map[string]any
		if err := json.Unmarshal(msg, &node); err != nil {
			continue
		}
		if token, ok := digString(node, "continuation"); ok {
			return token
		}
	}
	for _, msg := range collectRenderers(raw, "continuationItemRenderer") {
		var node map[string]any
		if err := json.Unmarshal(msg, &node); err != nil {
			continue
		}
		if token, ok := digString(node, "continuationEndpoint", "continuationCommand", "token"); ok {
			return token
		}
	}
	return ""
}

// trackCountSuffix formats the fetched/declared ratio for log lines.
func trackCountSuffix(fetched, declared int) string {
	if declared <= 0 {
		return strconv.Itoa(fetched)
	}
	return fmt.Sprintf("%d/%d", fetched, declared)
}
