package prediction

import "fmt"

// Prediction is one player's predicted final rank for one team within
// a season. A complete set has exactly one entry per team, with ranks
// unique across the set.
type Prediction struct {
	Season        string
	Username      string
	TeamID        int
	PredictedRank int
}

func (p Prediction) Validate() error {
	if p.Season == "" {
		return fmt.Errorf("prediction season is required")
	}
	if p.Username == "" {
		return fmt.Errorf("prediction username is required")
	}
	if p.TeamID <= 0 {
		return fmt.Errorf("prediction team id must be positive")
	}
	if p.PredictedRank < 1 {
		return fmt.Errorf("predicted rank must be at least 1")
	}

	return nil
}

// ValidateSet enforces the per-player uniqueness invariants: every
// team at most once and every rank at most once.
func ValidateSet(predictions []Prediction) error {
	seenTeam := make(map[int]struct{}, len(predictions))
	seenRank := make(map[int]struct{}, len(predictions))
	for _, p := range predictions {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, ok := seenTeam[p.TeamID]; ok {
			return fmt.Errorf("team %d predicted more than once", p.TeamID)
		}
		if _, ok := seenRank[p.PredictedRank]; ok {
			return fmt.Errorf("rank %d predicted more than once", p.PredictedRank)
		}
		seenTeam[p.TeamID] = struct{}{}
		seenRank[p.PredictedRank] = struct{}{}
	}

	return nil
}
