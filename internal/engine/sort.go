package engine

import "sort"

// SortVideos orders videos according to sortBy. Relevance preserves scrape
// order (YouTube's native ranking). Date sorts by normalized publish date
// descending; undated entries are stable-partitioned to the end, keeping
// their relative order among themselves.
func SortVideos(videos []Video, sortBy string) []Video {
	if sortBy != SortDate {
		return videos
	}

	sorted := make([]Video, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].PublishDate, sorted[j].PublishDate
		switch {
		case di != "" && dj != "":
			// ISO 8601 strings compare chronologically.
			return di > dj
		case di != "" && dj == "":
			return true
		default:
			return false
		}
	})
	return sorted
}
