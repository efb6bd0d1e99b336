// Package download extracts audio from YouTube videos via yt-dlp and keeps
// a SQLite ledger of the resulting files.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Config controls the download service.
type Config struct {
	Dir                string        // audio output directory
	Binary             string        // yt-dlp binary, default "yt-dlp"
	Timeout            time.Duration // whole-download budget
	MaxDurationSeconds int           // reject videos longer than this
	Bitrate            string        // mp3 bitrate for yt-dlp, e.g. "192"
	TTL                time.Duration // how long downloaded files live
}

// Service runs audio extraction. Construct with NewService; the zero value
// is not usable.
type Service struct {
	cfg   Config
	store *Store
}

// probeInfo is the subset of yt-dlp's --dump-json output we act on.
type probeInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	IsLive   bool    `json:"is_live"`
	Channel  string  `json:"channel"`
}

// NewService builds the download service over cfg and the ledger store.
func NewService(cfg Config, store *Store) *Service {
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.MaxDurationSeconds <= 0 {
		cfg.MaxDurationSeconds = 3600
	}
	if cfg.Bitrate == "" {
		cfg.Bitrate = "192"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Service{cfg: cfg, store: store}
}

// Download extracts the audio track of videoID as mp3. A still-valid prior
// download is returned as-is; otherwise the video is probed first so live
// streams and over-length videos are rejected before any bytes move.
func (s *Service) Download(ctx context.Context, videoID string) (Record, error) {
	if !engine.ValidVideoID(videoID) {
		return Record{}, engine.InvalidParameter("video_id must be an 11-character YouTube ID", "INVALID_VIDEO_ID")
	}
	engine.IncrDownloadRequests()

	if rec, ok, err := s.store.GetByVideoID(videoID); err == nil && ok {
		if expiry, perr := time.Parse(time.RFC3339, rec.ExpiresAt); perr == nil && time.Now().Before(expiry) {
			if _, serr := os.Stat(rec.FilePath); serr == nil {
				return rec, nil
			}
		}
	}

	info, err := s.probe(ctx, videoID)
	if err != nil {
		return Record{}, err
	}
	if info.IsLive {
		return Record{}, &engine.AppError{
			Code: "LIVE_STREAM", Status: http.StatusBadRequest,
			Message: "live streams cannot be downloaded",
		}
	}
	if int(info.Duration) > s.cfg.MaxDurationSeconds {
		return Record{}, &engine.AppError{
			Code: "DURATION_EXCEEDED", Status: http.StatusBadRequest,
			Message: fmt.Sprintf("video is longer than the %ds limit", s.cfg.MaxDurationSeconds),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	// videoID charset is [A-Za-z0-9_-], safe as a filename
	outPath := filepath.Join(s.cfg.Dir, videoID+".mp3")
	if err := os.MkdirAll(s.cfg.Dir, 0750); err != nil {
		return Record{}, downloadFailed(err)
	}
	cmd := exec.CommandContext(ctx, s.cfg.Binary,
		"-x", "--audio-format", "mp3",
		"--audio-quality", s.cfg.Bitrate+"K",
		"--no-playlist", "--no-warnings",
		"-o", filepath.Join(s.cfg.Dir, videoID+".%(ext)s"),
		engine.WatchURL(videoID),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Warn("download: yt-dlp failed",
			slog.String("video_id", videoID),
			slog.String("output", tail(string(out), 512)))
		return Record{}, mapYtdlpError(string(out), err)
	}

	stat, err := os.Stat(outPath)
	if err != nil {
		return Record{}, downloadFailed(fmt.Errorf("output file missing: %w", err))
	}

	now := time.Now().UTC()
	rec := Record{
		VideoID:         videoID,
		Title:           info.Title,
		FilePath:        outPath,
		SizeBytes:       stat.Size(),
		DurationSeconds: int(info.Duration),
		CreatedAt:       now.Format(time.RFC3339),
		ExpiresAt:       now.Add(s.cfg.TTL).Format(time.RFC3339),
	}
	if err := s.store.Upsert(rec); err != nil {
		return Record{}, downloadFailed(err)
	}
	slog.Info("download: complete",
		slog.String("video_id", videoID),
		slog.Int64("size_bytes", rec.SizeBytes))
	return rec, nil
}

// Status returns the ledger record for videoID, if present.
func (s *Service) Status(videoID string) (Record, bool, error) {
	if !engine.ValidVideoID(videoID) {
		return Record{}, false, engine.InvalidParameter("video_id must be an 11-character YouTube ID", "INVALID_VIDEO_ID")
	}
	return s.store.GetByVideoID(videoID)
}

// probe asks yt-dlp for video metadata without downloading anything.
func (s *Service) probe(ctx context.Context, videoID string) (probeInfo, error) {
	cmd := exec.CommandContext(ctx, s.cfg.Binary,
		"--dump-json", "--no-warnings", "--no-playlist",
		"--socket-timeout", "10",
		engine.WatchURL(videoID),
	)
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		return probeInfo{}, mapYtdlpError(stderr, err)
	}
	var info probeInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return probeInfo{}, downloadFailed(fmt.Errorf("probe output: %w", err))
	}
	return info, nil
}

// mapYtdlpError classifies yt-dlp failures by stderr text.
func mapYtdlpError(output string, err error) *engine.AppError {
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "private video"):
		return &engine.AppError{
			Code: "VIDEO_NOT_FOUND", Status: http.StatusNotFound,
			Message: "video is unavailable", Reason: err,
		}
	case strings.Contains(lower, "live event"), strings.Contains(lower, "is live"):
		return &engine.AppError{
			Code: "LIVE_STREAM", Status: http.StatusBadRequest,
			Message: "live streams cannot be downloaded", Reason: err,
		}
	default:
		return downloadFailed(err)
	}
}

func downloadFailed(err error) *engine.AppError {
	return &engine.AppError{
		Code: "DOWNLOAD_FAILED", Status: http.StatusInternalServerError,
		Message: "audio download failed", Reason: err,
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
