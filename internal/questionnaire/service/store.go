package service

import (
	"context"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
)

// TemplateStore is the persistence surface the services need for templates.
type TemplateStore interface {
	Create(ctx context.Context, t *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	ListByDesigner(ctx context.Context, designerID string) ([]domain.Template, error)
	Update(ctx context.Context, t *domain.Template) error
	Delete(ctx context.Context, designerID, id string) (bool, error)
}

// ProjectDoc is a project as the questionnaire engine sees it: ownership
// plus the instance document. The whole instance array is always written
// back in one call, which is the per-project atomicity unit.
type ProjectDoc struct {
	ID         string            `json:"id"`
	DesignerID string            `json:"designer_id"`
	ClientID   string            `json:"client_id,omitempty"`
	Instances  []domain.Instance `json:"instances"`
}

// ProjectStore reads and writes per-project questionnaire instance documents.
type ProjectStore interface {
	GetByID(ctx context.Context, projectID string) (*ProjectDoc, error)
	// ListByTemplate returns every project whose instance document references
	// the template, in storage-retrieval order.
	ListByTemplate(ctx context.Context, templateID string) ([]ProjectDoc, error)
	// ListAll returns every live project. Used only by the pruning sweep.
	ListAll(ctx context.Context) ([]ProjectDoc, error)
	// SaveInstances replaces the project's instance document atomically.
	SaveInstances(ctx context.Context, projectID string, instances []domain.Instance) error
}

// ReportStore keeps the latest sync report per template.
type ReportStore interface {
	Save(ctx context.Context, report *domain.SyncReport) error
	Get(ctx context.Context, templateID string) (*domain.SyncReport, error)
}
