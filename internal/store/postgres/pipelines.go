package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Pipeline is a stored pipeline row. Definition holds the JSONB-encoded
// models.PipelineDefinition.
type Pipeline struct {
	ID         uuid.UUID `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Definition []byte    `json:"definition"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreatePipelineParams struct {
	Slug       string
	Name       string
	Definition []byte
}

func (q *Queries) CreatePipeline(ctx context.Context, arg CreatePipelineParams) (Pipeline, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO pipelines (id, slug, name, definition)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, slug, name, definition, created_at, updated_at`,
		uuid.New(), arg.Slug, arg.Name, arg.Definition)

	var p Pipeline
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Definition, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) GetPipelineBySlug(ctx context.Context, slug string) (Pipeline, error) {
	row := q.db.QueryRow(ctx,
		`SELECT id, slug, name, definition, created_at, updated_at
		 FROM pipelines WHERE slug = $1`, slug)

	var p Pipeline
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Definition, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

type ListPipelinesParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListPipelines(ctx context.Context, arg ListPipelinesParams) ([]Pipeline, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, slug, name, definition, created_at, updated_at
		 FROM pipelines ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Pipeline
	for rows.Next() {
		var p Pipeline
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Definition, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type UpdatePipelineParams struct {
	ID         uuid.UUID
	Name       string
	Definition []byte
}

func (q *Queries) UpdatePipeline(ctx context.Context, arg UpdatePipelineParams) (Pipeline, error) {
	row := q.db.QueryRow(ctx,
		`UPDATE pipelines SET name = $2, definition = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, slug, name, definition, created_at, updated_at`,
		arg.ID, arg.Name, arg.Definition)

	var p Pipeline
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Definition, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (q *Queries) DeletePipeline(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM pipelines WHERE id = $1`, id)
	return err
}
