package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/biplovsubedi/prediction-league/internal/usecase"
)

type syncJobRequest struct {
	Season string `json:"season"`
}

func (h *Handler) RunSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncJob")
	defer span.End()

	var req syncJobRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.syncService.Run(ctx, req.Season)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync job failed", "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status": result.Status,
		"season": result.Season,
	})
}

type recomputeJobRequest struct {
	Season     string `json:"season"`
	MaxWorkers int    `json:"max_workers" validate:"gte=0,lte=64"`
	Gameweeks  []int  `json:"gameweeks" validate:"dive,gte=1"`
}

func (h *Handler) RunRecomputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeJob")
	defer span.End()

	var req recomputeJobRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.recomputeService.RecomputeSeason(ctx, usecase.RecomputeInput{
		Season:     req.Season,
		MaxWorkers: req.MaxWorkers,
		Gameweeks:  req.Gameweeks,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run recompute job failed", "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type importJobResponse struct {
	Players     int `json:"players"`
	Predictions int `json:"predictions"`
	Skipped     int `json:"skipped"`
}

// RunPredictionImportJob ingests a CSV body. The season comes from
// the query string so the body stays a plain file upload.
func (h *Handler) RunPredictionImportJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPredictionImportJob")
	defer span.End()

	season := h.seasonParam(r)
	summary, err := h.importService.Import(ctx, season, r.Body)
	if err != nil {
		h.logger.WarnContext(ctx, "run prediction import job failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, importJobResponse{
		Players:     summary.Players,
		Predictions: summary.Predictions,
		Skipped:     summary.Skipped,
	})
}

type schedulerStatusDTO struct {
	Running bool `json:"running"`
}

func (h *Handler) StartScheduler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartScheduler")
	defer span.End()

	if h.syncScheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	h.syncScheduler.Start()
	writeSuccess(ctx, w, http.StatusOK, schedulerStatusDTO{Running: h.syncScheduler.IsRunning()})
}

func (h *Handler) StopScheduler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StopScheduler")
	defer span.End()

	if h.syncScheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	h.syncScheduler.Stop()
	writeSuccess(ctx, w, http.StatusOK, schedulerStatusDTO{Running: h.syncScheduler.IsRunning()})
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SchedulerStatus")
	defer span.End()

	if h.syncScheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, schedulerStatusDTO{Running: h.syncScheduler.IsRunning()})
}

// decodeJSONBody tolerates an empty body so job endpoints can be
// triggered with no payload at all.
func decodeJSONBody(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
