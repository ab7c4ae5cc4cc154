package player

import "fmt"

type Type string

const (
	TypeNormal Type = "normal"
	TypePundit Type = "pundit"
)

// Player is a league participant identified by username.
type Player struct {
	Username string
	TeamName string
	Type     Type
}

func (p Player) Validate() error {
	if p.Username == "" {
		return fmt.Errorf("player username is required")
	}
	if p.Type != TypeNormal && p.Type != TypePundit {
		return fmt.Errorf("player type %q is not recognised", p.Type)
	}

	return nil
}
