package standing

// ActualStanding is the observed table position of one team for one
// gameweek. Rewritten wholesale on every sync cycle.
type ActualStanding struct {
	Season     string
	GameweekID int
	TeamID     int
	ActualRank int
	Points     int
}
