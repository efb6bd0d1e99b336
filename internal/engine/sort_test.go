package engine

import "testing"

func TestSortVideos(t *testing.T) {
	videos := []Video{
		{VideoID: "aaaaaaaaaa1", PublishDate: "2025-01-10T00:00:00Z"},
		{VideoID: "aaaaaaaaaa2"},
		{VideoID: "aaaaaaaaaa3", PublishDate: "2025-03-01T00:00:00Z"},
		{VideoID: "aaaaaaaaaa4"},
		{VideoID: "aaaaaaaaaa5", PublishDate: "2024-12-31T00:00:00Z"},
	}

	t.Run("relevance preserves scrape order", func(t *testing.T) {
		got := SortVideos(videos, SortRelevance)
		for i := range videos {
			if got[i].VideoID != videos[i].VideoID {
				t.Fatalf("order changed at %d: %s", i, got[i].VideoID)
			}
		}
	})

	t.Run("date sorts descending with undated last", func(t *testing.T) {
		got := SortVideos(videos, SortDate)
		wantOrder := []string{"aaaaaaaaaa3", "aaaaaaaaaa1", "aaaaaaaaaa5", "aaaaaaaaaa2", "aaaaaaaaaa4"}
		for i, want := range wantOrder {
			if got[i].VideoID != want {
				t.Errorf("position %d = %s, want %s", i, got[i].VideoID, want)
			}
		}
	})

	t.Run("date sort does not mutate input", func(t *testing.T) {
		_ = SortVideos(videos, SortDate)
		if videos[0].VideoID != "aaaaaaaaaa1" {
			t.Error("input slice was mutated")
		}
	})
}
