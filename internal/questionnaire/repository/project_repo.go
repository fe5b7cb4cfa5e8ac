package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectInstanceRepository reads and writes the questionnaire instance
// document stored on each project row. The whole document is replaced in one
// statement, which gives the per-project atomicity the sync batch relies on.
type ProjectInstanceRepository struct {
	db *pgxpool.Pool
}

func NewProjectInstanceRepository(db *pgxpool.Pool) *ProjectInstanceRepository {
	return &ProjectInstanceRepository{db: db}
}

func (r *ProjectInstanceRepository) GetByID(ctx context.Context, projectID string) (*service.ProjectDoc, error) {
	const q = `
select public_id, designer_id, coalesce(client_id, ''), instances
from projects
where public_id = $1 and deleted_at is null;
`
	doc, err := scanProjectDoc(r.db.QueryRow(ctx, q, projectID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return doc, nil
}

// ListByTemplate returns projects whose instance document references the
// template, in creation order. Matching uses jsonb containment so the
// filter runs in the database instead of loading every project.
func (r *ProjectInstanceRepository) ListByTemplate(ctx context.Context, templateID string) ([]service.ProjectDoc, error) {
	probe, err := json.Marshal([]map[string]string{{"template_id": templateID}})
	if err != nil {
		return nil, fmt.Errorf("marshal probe: %w", err)
	}

	const q = `
select public_id, designer_id, coalesce(client_id, ''), instances
from projects
where deleted_at is null and instances @> $1::jsonb
order by created_at asc;
`
	return r.queryProjectDocs(ctx, q, probe)
}

func (r *ProjectInstanceRepository) ListAll(ctx context.Context) ([]service.ProjectDoc, error) {
	const q = `
select public_id, designer_id, coalesce(client_id, ''), instances
from projects
where deleted_at is null
order by created_at asc;
`
	return r.queryProjectDocs(ctx, q)
}

func (r *ProjectInstanceRepository) SaveInstances(ctx context.Context, projectID string, instances []domain.Instance) error {
	doc, err := json.Marshal(instances)
	if err != nil {
		return fmt.Errorf("marshal instances: %w", err)
	}

	const q = `
update projects
set instances = $2, updated_at = now()
where public_id = $1 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, projectID, doc)
	if err != nil {
		return fmt.Errorf("save instances: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectInstanceRepository) queryProjectDocs(ctx context.Context, q string, args ...any) ([]service.ProjectDoc, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	out := make([]service.ProjectDoc, 0, 16)
	for rows.Next() {
		doc, err := scanProjectDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

func scanProjectDoc(row pgx.Row) (*service.ProjectDoc, error) {
	var doc service.ProjectDoc
	var instances []byte
	if err := row.Scan(&doc.ID, &doc.DesignerID, &doc.ClientID, &instances); err != nil {
		return nil, err
	}
	if len(instances) > 0 {
		if err := json.Unmarshal(instances, &doc.Instances); err != nil {
			return nil, fmt.Errorf("unmarshal instances: %w", err)
		}
	}
	return &doc, nil
}
