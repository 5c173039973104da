package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/maraichr/conveyor/internal/bake"
	"github.com/maraichr/conveyor/internal/engine"
	"github.com/maraichr/conveyor/internal/pipeline"
	"github.com/maraichr/conveyor/internal/store"
	"github.com/maraichr/conveyor/internal/store/postgres"
	"github.com/maraichr/conveyor/pkg/apierr"
	"github.com/maraichr/conveyor/pkg/models"
)

type ExecutionHandler struct {
	logger   *slog.Logger
	store    *store.Store
	producer *engine.Producer
}

func NewExecutionHandler(logger *slog.Logger, s *store.Store, producer *engine.Producer) *ExecutionHandler {
	return &ExecutionHandler{logger: logger, store: s, producer: producer}
}

// Trigger instantiates the pipeline's definition into a pending execution and
// enqueues it for worker pickup.
func (h *ExecutionHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, ok := getPipelineOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	if h.producer == nil {
		writeAPIError(w, h.logger, apierr.QueueUnavailable())
		return
	}

	var def models.PipelineDefinition
	if err := json.Unmarshal(p.Definition, &def); err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	exec := pipeline.NewExecution(p.ID, def, "api")
	stages, err := json.Marshal(exec.Stages)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	row, err := h.store.CreateExecution(r.Context(), postgres.CreateExecutionParams{
		ID:         exec.ID,
		PipelineID: p.ID,
		Trigger:    exec.Trigger,
		Status:     string(exec.Status),
		Stages:     stages,
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.ExecutionCreateFailed(err))
		return
	}

	if _, err := h.producer.Enqueue(r.Context(), engine.ExecutionMessage{
		ExecutionID: exec.ID,
		PipelineID:  p.ID,
		Trigger:     exec.Trigger,
	}); err != nil {
		writeAPIError(w, h.logger, apierr.ExecutionEnqueueFailed(err))
		return
	}

	h.logger.Info("execution triggered",
		slog.String("pipeline", slug),
		slog.String("execution_id", exec.ID.String()))

	writeJSON(w, http.StatusCreated, row)
}

func (h *ExecutionHandler) List(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, ok := getPipelineOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	executions, err := h.store.ListExecutionsByPipeline(r.Context(), postgres.ListExecutionsByPipelineParams{
		PipelineID: p.ID,
		Limit:      int32(limit),
		Offset:     int32(offset),
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.ExecutionListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"executions": executions,
		"total":      len(executions),
	})
}

func (h *ExecutionHandler) Get(w http.ResponseWriter, r *http.Request) {
	executionID, err := uuid.Parse(chi.URLParam(r, "executionID"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidExecutionID())
		return
	}

	row, err := h.store.GetExecution(r.Context(), executionID)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.ExecutionNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, row)
}

// DeploymentDetails returns the ordered per-region bake outputs aggregated on
// the parent stage carrying refID.
func (h *ExecutionHandler) DeploymentDetails(w http.ResponseWriter, r *http.Request) {
	executionID, err := uuid.Parse(chi.URLParam(r, "executionID"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidExecutionID())
		return
	}
	refID := chi.URLParam(r, "refID")

	row, err := h.store.GetExecution(r.Context(), executionID)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.ExecutionNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	var stages []*pipeline.Stage
	if err := json.Unmarshal(row.Stages, &stages); err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	for _, stage := range stages {
		if stage.RefID != refID {
			continue
		}
		if details, ok := stage.Outputs[bake.OutputDeploymentDetails]; ok {
			writeJSON(w, http.StatusOK, map[string]any{
				"refId":             refID,
				"deploymentDetails": details,
			})
			return
		}
	}

	writeAPIError(w, h.logger, apierr.DeploymentDetailsMissing())
}
