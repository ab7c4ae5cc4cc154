package usecase

import "sort"

// RankedEntry pairs an identity with its sort key. Keys compare
// lexicographically ascending; callers negate a component to rank it
// descending.
type RankedEntry struct {
	ID  string
	Key []int
}

// CompetitionRanks assigns standard competition ranks over entries:
// tied keys share the rank of the first member of the tie group, and
// the position counter keeps advancing through ties, so the sequence
// skips after a tie (1, 2, 2, 4). The caller sees ranks keyed by
// entry ID.
func CompetitionRanks(entries []RankedEntry) map[string]int {
	ranks := make(map[string]int, len(entries))
	if len(entries) == 0 {
		return ranks
	}

	sorted := make([]RankedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareKeys(sorted[i].Key, sorted[j].Key) < 0
	})

	rank := 1
	for position, entry := range sorted {
		if position > 0 && compareKeys(entry.Key, sorted[position-1].Key) != 0 {
			rank = position + 1
		}
		ranks[entry.ID] = rank
	}

	return ranks
}

func compareKeys(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
