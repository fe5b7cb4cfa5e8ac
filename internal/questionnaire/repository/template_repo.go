package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TemplateRepository persists questionnaire templates. The question tree is
// stored as a jsonb document on the row; rows are the unit of update.
type TemplateRepository struct {
	db *pgxpool.Pool
}

func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Create(ctx context.Context, t *domain.Template) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	const q = `
insert into questionnaire_templates (id, designer_id, title, description, room_type, questions, created_at, updated_at)
values ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err = r.db.Exec(ctx, q, t.ID, t.DesignerID, t.Title, t.Description, t.RoomType, questions, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	const q = `
select id, designer_id, title, description, room_type, questions, created_at, updated_at
from questionnaire_templates
where id = $1;
`
	var t domain.Template
	var questions []byte
	err := r.db.QueryRow(ctx, q, id).
		Scan(&t.ID, &t.DesignerID, &t.Title, &t.Description, &t.RoomType, &questions, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	return &t, nil
}

func (r *TemplateRepository) ListByDesigner(ctx context.Context, designerID string) ([]domain.Template, error) {
	const q = `
select id, designer_id, title, description, room_type, questions, created_at, updated_at
from questionnaire_templates
where designer_id = $1
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, designerID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Template, 0, 16)
	for rows.Next() {
		var t domain.Template
		var questions []byte
		if err := rows.Scan(&t.ID, &t.DesignerID, &t.Title, &t.Description, &t.RoomType, &questions, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(questions, &t.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TemplateRepository) Update(ctx context.Context, t *domain.Template) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	const q = `
update questionnaire_templates
set title = $3, description = $4, room_type = $5, questions = $6, updated_at = $7
where id = $1 and designer_id = $2;
`
	ct, err := r.db.Exec(ctx, q, t.ID, t.DesignerID, t.Title, t.Description, t.RoomType, questions, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, designerID, id string) (bool, error) {
	const q = `
delete from questionnaire_templates
where id = $1 and designer_id = $2;
`
	ct, err := r.db.Exec(ctx, q, id, designerID)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
