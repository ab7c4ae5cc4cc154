package team

import "fmt"

// Team is a club tracked by the upstream feed. Identity is the
// upstream's own id; attributes are overwritten on every sync.
type Team struct {
	ID        int
	Name      string
	ShortName string
	Code      int
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id must be positive")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
