package models

import "sort"

// SortKey selects the presentation order for a target's threads. Sorting is
// a view transform applied at read time, never a stored order.
type SortKey string

const (
	// SortLatest orders by most recent activity, newest first.
	SortLatest SortKey = "latest"
	// SortDate orders by the root comment's creation time, newest first.
	SortDate SortKey = "date"
	// SortMostReplies orders by thread total, descending.
	SortMostReplies SortKey = "mostReplies"
)

// ParseSortKey validates a sort key string.
func ParseSortKey(s string) (SortKey, bool) {
	switch SortKey(s) {
	case SortLatest, SortDate, SortMostReplies:
		return SortKey(s), true
	}
	return "", false
}

// SortThreads orders threads in place by the given key. Equal keys are
// broken by thread id ascending so the order is deterministic.
func SortThreads(threads []Thread, key SortKey) {
	less := func(a, b *Thread) bool {
		switch key {
		case SortMostReplies:
			if a.Total != b.Total {
				return a.Total > b.Total
			}
		case SortDate:
			at, bt := a.Body[0].Created, b.Body[0].Created
			if !at.Equal(bt) {
				return at.After(bt)
			}
		default: // SortLatest
			at, bt := a.LastActivity(), b.LastActivity()
			if !at.Equal(bt) {
				return at.After(bt)
			}
		}
		return a.ID < b.ID
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return less(&threads[i], &threads[j])
	})
}
