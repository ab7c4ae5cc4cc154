package gameweek

import "fmt"

// Gameweek is one scoring round of the upstream feed. Scores computed
// for a round are only final once Finished and DataChecked both hold.
type Gameweek struct {
	ID          int
	IsCurrent   bool
	Finished    bool
	DataChecked bool
}

// Settled reports whether the upstream considers this round final.
func (g Gameweek) Settled() bool {
	return g.Finished && g.DataChecked
}

func (g Gameweek) Validate() error {
	if g.ID <= 0 {
		return fmt.Errorf("gameweek id must be positive")
	}

	return nil
}
