package usecase

import "testing"

func TestCompetitionRanksSkipAfterTie(t *testing.T) {
	t.Parallel()

	// score_correct 10, 9, 9, 5 with equal deviation inside the tie.
	entries := []RankedEntry{
		{ID: "alice", Key: []int{-10, 3}},
		{ID: "bob", Key: []int{-9, 4}},
		{ID: "carol", Key: []int{-9, 4}},
		{ID: "dave", Key: []int{-5, 9}},
	}

	ranks := CompetitionRanks(entries)

	want := map[string]int{"alice": 1, "bob": 2, "carol": 2, "dave": 4}
	for id, wantRank := range want {
		if ranks[id] != wantRank {
			t.Fatalf("rank[%s] = %d, want %d", id, ranks[id], wantRank)
		}
	}
}

func TestCompetitionRanksFullTupleBreaksTies(t *testing.T) {
	t.Parallel()

	// Same score_correct but different deviation: not a tie.
	entries := []RankedEntry{
		{ID: "bob", Key: []int{-9, 7}},
		{ID: "carol", Key: []int{-9, 4}},
	}

	ranks := CompetitionRanks(entries)

	if ranks["carol"] != 1 || ranks["bob"] != 2 {
		t.Fatalf("ranks = %v, want carol=1 bob=2", ranks)
	}
}

func TestCompetitionRanksEmpty(t *testing.T) {
	t.Parallel()

	if got := CompetitionRanks(nil); len(got) != 0 {
		t.Fatalf("ranks over empty input = %v, want empty", got)
	}
}

func TestCompetitionRanksAllTied(t *testing.T) {
	t.Parallel()

	entries := []RankedEntry{
		{ID: "a", Key: []int{0, 0}},
		{ID: "b", Key: []int{0, 0}},
		{ID: "c", Key: []int{0, 0}},
	}

	ranks := CompetitionRanks(entries)
	for id, rank := range ranks {
		if rank != 1 {
			t.Fatalf("rank[%s] = %d, want 1", id, rank)
		}
	}
}
