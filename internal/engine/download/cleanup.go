package download

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// CleanupLoop periodically removes expired audio files and their ledger
// records. Blocks until ctx is done; run it in its own goroutine.
func (s *Service) CleanupLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	expired, err := s.store.ListExpired(time.Now())
	if err != nil {
		slog.Warn("download cleanup: list failed", slog.Any("error", err))
		return
	}
	for _, rec := range expired {
		if err := os.Remove(rec.FilePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("download cleanup: remove failed",
				slog.String("path", rec.FilePath), slog.Any("error", err))
			continue
		}
		if err := s.store.Delete(rec.VideoID); err != nil {
			slog.Warn("download cleanup: delete record failed",
				slog.String("video_id", rec.VideoID), slog.Any("error", err))
		}
	}
	if len(expired) > 0 {
		slog.Info("download cleanup: removed expired files", slog.Int("count", len(expired)))
	}
}
