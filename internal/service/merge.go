package service

import (
	"sort"
	"time"
)

// mergeThreads concatenates both sources' full filtered sets and sorts them
// newest-first. A nil lastMessageAt sorts as the epoch so empty threads sink
// to the bottom. Ties break on id for a stable order across requests.
//
// Each page request re-fetches and re-merges with no shared snapshot, so a
// thread whose lastMessageAt moves between two page requests can show up twice
// across adjacent pages or be skipped once. Acceptable for an inbox view.
func mergeThreads(a, b []ConversationThread) []ConversationThread {
	merged := make([]ConversationThread, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.SliceStable(merged, func(i, j int) bool {
		ti := sortTime(merged[i].LastMessageAt)
		tj := sortTime(merged[j].LastMessageAt)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}

func sortTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// pageWindow slices [skip, skip+limit) out of the sorted merge. Out-of-range
// pages return an empty slice, never an error.
func pageWindow(threads []ConversationThread, page, limit int) []ConversationThread {
	skip := (page - 1) * limit
	if skip >= len(threads) {
		return []ConversationThread{}
	}
	end := skip + limit
	if end > len(threads) {
		end = len(threads)
	}
	return threads[skip:end]
}
