package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maraichr/conveyor/internal/store"
	"github.com/maraichr/conveyor/internal/store/postgres"
	"github.com/maraichr/conveyor/pkg/apierr"
	"github.com/maraichr/conveyor/pkg/models"
)

type PipelineHandler struct {
	logger *slog.Logger
	store  *store.Store
}

func NewPipelineHandler(logger *slog.Logger, s *store.Store) *PipelineHandler {
	return &PipelineHandler{logger: logger, store: s}
}

type pipelineRequest struct {
	Slug       string                    `json:"slug"`
	Name       string                    `json:"name"`
	Definition models.PipelineDefinition `json:"definition"`
}

func (h *PipelineHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	pipelines, err := h.store.ListPipelines(r.Context(), postgres.ListPipelinesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.PipelineListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pipelines": pipelines,
		"total":     len(pipelines),
	})
}

func (h *PipelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	if e := validateSlug(req.Slug); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	if e := validateName(req.Name); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	if e := validateDefinition(req.Definition); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}

	definition, err := json.Marshal(req.Definition)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	p, err := h.store.CreatePipeline(r.Context(), postgres.CreatePipelineParams{
		Slug:       req.Slug,
		Name:       req.Name,
		Definition: definition,
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.PipelineCreateFailed(err))
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *PipelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, ok := getPipelineOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PipelineHandler) Update(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, ok := getPipelineOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	var req pipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	if e := validateName(req.Name); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	if e := validateDefinition(req.Definition); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}

	definition, err := json.Marshal(req.Definition)
	if err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	updated, err := h.store.UpdatePipeline(r.Context(), postgres.UpdatePipelineParams{
		ID:         p.ID,
		Name:       req.Name,
		Definition: definition,
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.PipelineUpdateFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *PipelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, ok := getPipelineOr404(w, r, h.logger, h.store, slug)
	if !ok {
		return
	}

	if err := h.store.DeletePipeline(r.Context(), p.ID); err != nil {
		writeAPIError(w, h.logger, apierr.PipelineDeleteFailed(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getPipelineOr404 loads a pipeline by slug, writing a 404 response when it
// does not exist.
func getPipelineOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store, slug string) (postgres.Pipeline, bool) {
	p, err := s.GetPipelineBySlug(r.Context(), slug)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, logger, apierr.PipelineNotFound())
		} else {
			writeAPIError(w, logger, apierr.InternalError(err))
		}
		return postgres.Pipeline{}, false
	}
	return p, true
}
