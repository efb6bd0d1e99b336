package download

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "downloads.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(videoID string, expiresAt time.Time) Record {
	now := time.Now().UTC()
	return Record{
		VideoID:         videoID,
		Title:           "Song",
		FilePath:        "/tmp/" + videoID + ".mp3",
		SizeBytes:       1024,
		DurationSeconds: 212,
		CreatedAt:       now.Format(time.RFC3339),
		ExpiresAt:       expiresAt.UTC().Format(time.RFC3339),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord("aaaaaaaaaa1", time.Now().Add(time.Hour))
	if err := store.Upsert(rec); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.GetByVideoID("aaaaaaaaaa1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}

	if _, ok, _ := store.GetByVideoID("aaaaaaaaaa9"); ok {
		t.Error("unknown id must not be found")
	}
}

func TestStoreUpsertReplaces(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord("aaaaaaaaaa1", time.Now().Add(time.Hour))
	if err := store.Upsert(rec); err != nil {
		t.Fatal(err)
	}
	rec.SizeBytes = 2048
	if err := store.Upsert(rec); err != nil {
		t.Fatal(err)
	}

	got, _, err := store.GetByVideoID("aaaaaaaaaa1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SizeBytes != 2048 {
		t.Errorf("size = %d, want 2048", got.SizeBytes)
	}
}

func TestStoreListExpired(t *testing.T) {
	store := newTestStore(t)

	if err := store.Upsert(testRecord("aaaaaaaaaa1", time.Now().Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(testRecord("aaaaaaaaaa2", time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	expired, err := store.ListExpired(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(expired) != 1 || expired[0].VideoID != "aaaaaaaaaa1" {
		t.Errorf("expired = %+v", expired)
	}

	if err := store.Delete("aaaaaaaaaa1"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.GetByVideoID("aaaaaaaaaa1"); ok {
		t.Error("deleted record must be gone")
	}
}
