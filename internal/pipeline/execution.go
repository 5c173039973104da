package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/maraichr/conveyor/pkg/models"
)

// Execution is a single run of a pipeline: an ordered stage collection forming
// a directed graph via RefID / RequisiteStageRefIDs.
type Execution struct {
	ID           uuid.UUID  `json:"id"`
	PipelineID   uuid.UUID  `json:"pipeline_id"`
	Trigger      string     `json:"trigger"` // "manual", "api", "schedule"
	Status       Status     `json:"status"`
	Stages       []*Stage   `json:"stages"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// NewExecution instantiates a pipeline definition into a runnable execution:
// every stage gets a fresh physical ID and a pending status. Contexts are
// shallow-copied so handler mutations never leak back into the definition.
func NewExecution(pipelineID uuid.UUID, def models.PipelineDefinition, trigger string) *Execution {
	exec := &Execution{
		ID:         uuid.New(),
		PipelineID: pipelineID,
		Trigger:    trigger,
		Status:     StatusPending,
	}
	for _, sd := range def.Stages {
		ctx := make(map[string]any, len(sd.Context))
		for k, v := range sd.Context {
			ctx[k] = v
		}
		exec.Stages = append(exec.Stages, &Stage{
			ID:                   uuid.New(),
			RefID:                sd.RefID,
			Type:                 sd.Type,
			Name:                 sd.Name,
			RequisiteStageRefIDs: append([]string(nil), sd.RequisiteStageRefIDs...),
			Context:              ctx,
			Status:               StatusPending,
		})
	}
	return exec
}

// StagesByRefID returns every physical stage carrying refID, in graph order.
// A refID names a dependency join point (a stage group), not a single node.
func (e *Execution) StagesByRefID(refID string) []*Stage {
	var group []*Stage
	for _, s := range e.Stages {
		if s.RefID == refID {
			group = append(group, s)
		}
	}
	return group
}

// StageByID returns the stage with the given physical ID, or nil.
func (e *Execution) StageByID(id uuid.UUID) *Stage {
	for _, s := range e.Stages {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// RefIDs returns the distinct refIDs in first-seen graph order.
func (e *Execution) RefIDs() []string {
	seen := make(map[string]bool, len(e.Stages))
	var out []string
	for _, s := range e.Stages {
		if !seen[s.RefID] {
			seen[s.RefID] = true
			out = append(out, s.RefID)
		}
	}
	return out
}

// AppendStages adds stages to the graph without touching existing ones.
func (e *Execution) AppendStages(stages ...*Stage) {
	e.Stages = append(e.Stages, stages...)
}
