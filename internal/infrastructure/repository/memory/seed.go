package memory

import (
	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/player"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/team"
)

const SeedSeason = "2025/26"

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: 1, Name: "Arsenal", ShortName: "ARS", Code: 3},
		{ID: 2, Name: "Aston Villa", ShortName: "AVL", Code: 7},
		{ID: 3, Name: "Bournemouth", ShortName: "BOU", Code: 91},
		{ID: 4, Name: "Brentford", ShortName: "BRE", Code: 94},
		{ID: 5, Name: "Brighton", ShortName: "BHA", Code: 36},
		{ID: 6, Name: "Chelsea", ShortName: "CHE", Code: 8},
		{ID: 7, Name: "Crystal Palace", ShortName: "CRY", Code: 31},
		{ID: 8, Name: "Everton", ShortName: "EVE", Code: 11},
		{ID: 9, Name: "Fulham", ShortName: "FUL", Code: 54},
		{ID: 10, Name: "Liverpool", ShortName: "LIV", Code: 14},
	}
}

func SeedGameweeks() []gameweek.Gameweek {
	return []gameweek.Gameweek{
		{ID: 1, Finished: true, DataChecked: true},
		{ID: 2, Finished: true, DataChecked: true},
		{ID: 3, IsCurrent: true},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{Username: "alice", TeamName: "Arsenal", Type: player.TypeNormal},
		{Username: "bob", TeamName: "Liverpool", Type: player.TypeNormal},
		{Username: "lineker", TeamName: "Everton", Type: player.TypePundit},
	}
}

func SeedPredictions() []prediction.Prediction {
	teams := SeedTeams()
	players := SeedPlayers()

	out := make([]prediction.Prediction, 0, len(teams)*len(players))
	for offset, p := range players {
		for idx, t := range teams {
			out = append(out, prediction.Prediction{
				Season:        SeedSeason,
				Username:      p.Username,
				TeamID:        t.ID,
				PredictedRank: (idx+offset)%len(teams) + 1,
			})
		}
	}

	return out
}
