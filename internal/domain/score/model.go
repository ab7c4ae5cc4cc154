package score

// Score aggregates one player's prediction accuracy for one gameweek.
// RankCorrect and RankDeviation duplicate ScoreCorrect and
// ScoreDeviation; the duplication is intentional and load-bearing for
// stored-row compatibility.
type Score struct {
	Season         string
	GameweekID     int
	Username       string
	ScoreCorrect   int
	ScoreDeviation int
	RankCorrect    int
	RankDeviation  int
	Completed      bool
}
