package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maraichr/conveyor/internal/bake"
	"github.com/maraichr/conveyor/internal/pipeline"
)

// TaskHandler executes one stage's task. Handlers write only to their own
// stage's outputs; sibling stages share no mutable state.
type TaskHandler interface {
	Execute(ctx context.Context, exec *pipeline.Execution, stage *pipeline.Stage) error
}

// StageExpander fans a parent stage out into parallel children before
// execution begins and joins their results once every stage in the group is
// terminal. The engine guarantees the barrier: Join never runs early.
type StageExpander interface {
	Expand(exec *pipeline.Execution, parent *pipeline.Stage) ([]*pipeline.Stage, error)
	Join(exec *pipeline.Execution, parent *pipeline.Stage) error
}

// Engine runs a single execution's stage graph: expansion first, then stage
// groups in requisite order, members of a group concurrently. Each Run
// operates on one in-memory graph with no cross-execution sharing.
type Engine struct {
	logger    *slog.Logger
	clock     bake.Clock
	handlers  map[string]TaskHandler
	expanders map[string]StageExpander
}

func New(logger *slog.Logger, clock bake.Clock) *Engine {
	return &Engine{
		logger:    logger,
		clock:     clock,
		handlers:  make(map[string]TaskHandler),
		expanders: make(map[string]StageExpander),
	}
}

// Register binds a task handler to a stage type.
func (e *Engine) Register(stageType string, h TaskHandler) {
	e.handlers[stageType] = h
}

// RegisterExpander binds a fan-out/fan-in expander to a stage type.
func (e *Engine) RegisterExpander(stageType string, x StageExpander) {
	e.expanders[stageType] = x
}

// Run executes the graph to completion. The execution and its stages are
// mutated in place; on error the execution is marked failed with the cause.
func (e *Engine) Run(ctx context.Context, exec *pipeline.Execution) error {
	started := e.clock.Now().UTC()
	exec.StartedAt = &started
	exec.Status = pipeline.StatusRunning

	// Expansion phase. Parents are recorded so they are never dispatched to
	// a task handler and cannot be expanded twice within this run.
	parents := make(map[string]*pipeline.Stage)
	for _, stage := range append([]*pipeline.Stage(nil), exec.Stages...) {
		expander, ok := e.expanders[stage.Type]
		if !ok {
			continue
		}
		children, err := expander.Expand(exec, stage)
		if err != nil {
			stage.Status = pipeline.StatusFailed
			return e.fail(exec, err)
		}
		parents[stage.RefID] = stage
		e.logger.Info("stage expanded",
			slog.String("execution_id", exec.ID.String()),
			slog.String("ref_id", stage.RefID),
			slog.Int("children", len(children)))
	}

	order, err := groupOrder(exec)
	if err != nil {
		return e.fail(exec, err)
	}

	for _, refID := range order {
		if err := e.runGroup(ctx, exec, refID, parents[refID]); err != nil {
			return e.fail(exec, err)
		}
	}

	exec.Status = pipeline.StatusSucceeded
	finished := e.clock.Now().UTC()
	exec.FinishedAt = &finished
	e.logger.Info("execution succeeded", slog.String("execution_id", exec.ID.String()))
	return nil
}

// runGroup executes every member of one refID group concurrently, then runs
// the join on the expanded parent, if any. The join runs strictly after all
// members are terminal.
func (e *Engine) runGroup(ctx context.Context, exec *pipeline.Execution, refID string, parent *pipeline.Stage) error {
	group := exec.StagesByRefID(refID)

	if parent != nil {
		parent.Status = pipeline.StatusRunning
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, stage := range group {
		if parent != nil && stage.ID == parent.ID {
			continue
		}
		wg.Add(1)
		go func(stage *pipeline.Stage) {
			defer wg.Done()
			if err := e.runStage(ctx, exec, stage); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(stage)
	}
	wg.Wait()

	if parent == nil {
		return firstErr
	}
	if firstErr != nil {
		parent.Status = pipeline.StatusFailed
		return firstErr
	}
	if err := e.expanders[parent.Type].Join(exec, parent); err != nil {
		parent.Status = pipeline.StatusFailed
		return err
	}
	parent.Status = pipeline.StatusSucceeded
	return nil
}

func (e *Engine) runStage(ctx context.Context, exec *pipeline.Execution, stage *pipeline.Stage) error {
	handler, ok := e.handlers[stage.Type]
	if !ok {
		stage.Status = pipeline.StatusFailed
		return fmt.Errorf("no task handler registered for stage type %q", stage.Type)
	}

	stage.Status = pipeline.StatusRunning
	e.logger.Info("stage started",
		slog.String("execution_id", exec.ID.String()),
		slog.String("ref_id", stage.RefID),
		slog.String("type", stage.Type),
		slog.String("name", stage.Name))

	if err := handler.Execute(ctx, exec, stage); err != nil {
		stage.Status = pipeline.StatusFailed
		e.logger.Error("stage failed",
			slog.String("execution_id", exec.ID.String()),
			slog.String("ref_id", stage.RefID),
			slog.String("name", stage.Name),
			slog.String("error", err.Error()))
		return fmt.Errorf("stage %q (%s): %w", stage.Name, stage.Type, err)
	}

	stage.Status = pipeline.StatusSucceeded
	e.logger.Info("stage completed",
		slog.String("execution_id", exec.ID.String()),
		slog.String("ref_id", stage.RefID),
		slog.String("name", stage.Name))
	return nil
}

func (e *Engine) fail(exec *pipeline.Execution, err error) error {
	exec.Status = pipeline.StatusFailed
	exec.ErrorMessage = err.Error()
	finished := e.clock.Now().UTC()
	exec.FinishedAt = &finished
	e.logger.Error("execution failed",
		slog.String("execution_id", exec.ID.String()),
		slog.String("error", err.Error()))
	return err
}

// groupOrder returns the refID groups in requisite (topological) order.
// Edges are the union of the member stages' requisiteStageRefIds; requisites
// naming refIDs absent from the graph are ignored. Ties keep first-seen
// graph order so runs are deterministic.
func groupOrder(exec *pipeline.Execution) ([]string, error) {
	refIDs := exec.RefIDs()
	known := make(map[string]bool, len(refIDs))
	for _, refID := range refIDs {
		known[refID] = true
	}

	deps := make(map[string]map[string]bool)
	for _, stage := range exec.Stages {
		for _, req := range stage.RequisiteStageRefIDs {
			if req == stage.RefID || !known[req] {
				continue
			}
			if deps[stage.RefID] == nil {
				deps[stage.RefID] = make(map[string]bool)
			}
			deps[stage.RefID][req] = true
		}
	}

	done := make(map[string]bool, len(refIDs))
	order := make([]string, 0, len(refIDs))
	for len(order) < len(refIDs) {
		progressed := false
		for _, refID := range refIDs {
			if done[refID] {
				continue
			}
			ready := true
			for req := range deps[refID] {
				if !done[req] {
					ready = false
					break
				}
			}
			if ready {
				done[refID] = true
				order = append(order, refID)
				progressed = true
			}
		}
		if !progressed {
			return nil, fmt.Errorf("dependency cycle in stage graph")
		}
	}
	return order, nil
}
