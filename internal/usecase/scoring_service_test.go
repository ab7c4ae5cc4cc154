package usecase

import (
	"context"
	"reflect"
	"testing"

	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/score"
	"github.com/biplovsubedi/prediction-league/internal/domain/standing"
	"github.com/biplovsubedi/prediction-league/internal/infrastructure/repository/memory"
)

func newScoringFixture(gameweeks []gameweek.Gameweek, predictions []prediction.Prediction) (*ScoringService, *memory.StandingRepository, *memory.ScoreRepository) {
	standingRepo := memory.NewStandingRepository()
	scoreRepo := memory.NewScoreRepository()
	svc := NewScoringService(
		memory.NewPredictionRepository(predictions),
		standingRepo,
		scoreRepo,
		memory.NewGameweekRepository(gameweeks),
		nil,
	)
	return svc, standingRepo, scoreRepo
}

func TestScoringComputeSettledGameweek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, standingRepo, _ := newScoringFixture(
		[]gameweek.Gameweek{{ID: 5, Finished: true, DataChecked: true}},
		[]prediction.Prediction{
			{Season: "2025/26", Username: "alice", TeamID: 1, PredictedRank: 1},
			{Season: "2025/26", Username: "alice", TeamID: 2, PredictedRank: 2},
			{Season: "2025/26", Username: "alice", TeamID: 3, PredictedRank: 3},
		},
	)

	err := standingRepo.UpsertForGameweek(ctx, "2025/26", 5, []standing.ActualStanding{
		{Season: "2025/26", GameweekID: 5, TeamID: 1, ActualRank: 1},
		{Season: "2025/26", GameweekID: 5, TeamID: 2, ActualRank: 3},
		{Season: "2025/26", GameweekID: 5, TeamID: 3, ActualRank: 2},
	})
	if err != nil {
		t.Fatalf("seed standings: %v", err)
	}

	scores, err := svc.Compute(ctx, "2025/26", 5)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("got %d score rows, want 1", len(scores))
	}

	got := scores[0]
	want := score.Score{
		Season:         "2025/26",
		GameweekID:     5,
		Username:       "alice",
		ScoreCorrect:   1,
		ScoreDeviation: 2,
		RankCorrect:    1,
		RankDeviation:  2,
		Completed:      true,
	}
	if got != want {
		t.Fatalf("score = %+v, want %+v", got, want)
	}
}

func TestScoringComputeSkipsUnmatchedPredictions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, standingRepo, _ := newScoringFixture(
		[]gameweek.Gameweek{{ID: 1}},
		[]prediction.Prediction{
			{Season: "2025/26", Username: "alice", TeamID: 1, PredictedRank: 1},
			{Season: "2025/26", Username: "alice", TeamID: 99, PredictedRank: 2},
			{Season: "2025/26", Username: "bob", TeamID: 42, PredictedRank: 1},
		},
	)

	err := standingRepo.UpsertForGameweek(ctx, "2025/26", 1, []standing.ActualStanding{
		{Season: "2025/26", GameweekID: 1, TeamID: 1, ActualRank: 4},
	})
	if err != nil {
		t.Fatalf("seed standings: %v", err)
	}

	scores, err := svc.Compute(ctx, "2025/26", 1)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// bob's only prediction has no standing, so bob gets no row at all.
	if len(scores) != 1 || scores[0].Username != "alice" {
		t.Fatalf("scores = %+v, want a single row for alice", scores)
	}
	if scores[0].ScoreCorrect != 0 || scores[0].ScoreDeviation != 3 {
		t.Fatalf("alice score = %+v, want correct=0 deviation=3", scores[0])
	}
	if scores[0].Completed {
		t.Fatal("unsettled gameweek must not mark scores completed")
	}
}

func TestScoringComputeIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, standingRepo, scoreRepo := newScoringFixture(
		[]gameweek.Gameweek{{ID: 2, Finished: true, DataChecked: true}},
		[]prediction.Prediction{
			{Season: "2025/26", Username: "alice", TeamID: 1, PredictedRank: 2},
			{Season: "2025/26", Username: "bob", TeamID: 1, PredictedRank: 5},
		},
	)

	err := standingRepo.UpsertForGameweek(ctx, "2025/26", 2, []standing.ActualStanding{
		{Season: "2025/26", GameweekID: 2, TeamID: 1, ActualRank: 2},
	})
	if err != nil {
		t.Fatalf("seed standings: %v", err)
	}

	if _, err := svc.Compute(ctx, "2025/26", 2); err != nil {
		t.Fatalf("first Compute: %v", err)
	}
	first, err := scoreRepo.ListForGameweek(ctx, "2025/26", 2)
	if err != nil {
		t.Fatalf("list after first run: %v", err)
	}

	if _, err := svc.Compute(ctx, "2025/26", 2); err != nil {
		t.Fatalf("second Compute: %v", err)
	}
	second, err := scoreRepo.ListForGameweek(ctx, "2025/26", 2)
	if err != nil {
		t.Fatalf("list after second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("stored rows changed across identical runs:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestScoringComputeRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc, _, _ := newScoringFixture(nil, nil)

	if _, err := svc.Compute(context.Background(), "", 1); err == nil {
		t.Fatal("expected error for empty season")
	}
	if _, err := svc.Compute(context.Background(), "2025/26", 0); err == nil {
		t.Fatal("expected error for non-positive gameweek")
	}
}
