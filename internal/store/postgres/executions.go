package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Execution is a stored execution row. Stages holds the JSONB-encoded stage
// graph snapshot, including fanned-out children and their outputs once the
// run finishes.
type Execution struct {
	ID           uuid.UUID  `json:"id"`
	PipelineID   uuid.UUID  `json:"pipeline_id"`
	Trigger      string     `json:"trigger"`
	Status       string     `json:"status"`
	Stages       []byte     `json:"stages"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type CreateExecutionParams struct {
	ID         uuid.UUID
	PipelineID uuid.UUID
	Trigger    string
	Status     string
	Stages     []byte
}

func (q *Queries) CreateExecution(ctx context.Context, arg CreateExecutionParams) (Execution, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO executions (id, pipeline_id, trigger, status, stages)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, pipeline_id, trigger, status, stages, error_message, started_at, finished_at, created_at`,
		arg.ID, arg.PipelineID, arg.Trigger, arg.Status, arg.Stages)

	var e Execution
	err := row.Scan(&e.ID, &e.PipelineID, &e.Trigger, &e.Status, &e.Stages,
		&e.ErrorMessage, &e.StartedAt, &e.FinishedAt, &e.CreatedAt)
	return e, err
}

func (q *Queries) GetExecution(ctx context.Context, id uuid.UUID) (Execution, error) {
	row := q.db.QueryRow(ctx,
		`SELECT id, pipeline_id, trigger, status, stages, error_message, started_at, finished_at, created_at
		 FROM executions WHERE id = $1`, id)

	var e Execution
	err := row.Scan(&e.ID, &e.PipelineID, &e.Trigger, &e.Status, &e.Stages,
		&e.ErrorMessage, &e.StartedAt, &e.FinishedAt, &e.CreatedAt)
	return e, err
}

type ListExecutionsByPipelineParams struct {
	PipelineID uuid.UUID
	Limit      int32
	Offset     int32
}

func (q *Queries) ListExecutionsByPipeline(ctx context.Context, arg ListExecutionsByPipelineParams) ([]Execution, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, pipeline_id, trigger, status, stages, error_message, started_at, finished_at, created_at
		 FROM executions WHERE pipeline_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		arg.PipelineID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Execution
	for rows.Next() {
		var e Execution
		if err := rows.Scan(&e.ID, &e.PipelineID, &e.Trigger, &e.Status, &e.Stages,
			&e.ErrorMessage, &e.StartedAt, &e.FinishedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (q *Queries) UpdateExecutionStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := q.db.Exec(ctx,
		`UPDATE executions SET status = $2 WHERE id = $1`, id, status)
	return err
}

type UpdateExecutionResultParams struct {
	ID           uuid.UUID
	Status       string
	Stages       []byte
	ErrorMessage *string
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// UpdateExecutionResult persists the final stage graph snapshot after a run.
func (q *Queries) UpdateExecutionResult(ctx context.Context, arg UpdateExecutionResultParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE executions
		 SET status = $2, stages = $3, error_message = $4, started_at = $5, finished_at = $6
		 WHERE id = $1`,
		arg.ID, arg.Status, arg.Stages, arg.ErrorMessage, arg.StartedAt, arg.FinishedAt)
	return err
}
