package service

import (
	"context"
	"strings"
	"time"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/google/uuid"
)

// TemplateService handles questionnaire template CRUD for designers.
type TemplateService struct {
	store TemplateStore
	now   func() time.Time
}

func NewTemplateService(store TemplateStore) *TemplateService {
	return &TemplateService{store: store, now: time.Now}
}

// TemplateInput is the designer-supplied shape for create/update. Question
// and option ids are assigned server-side; on update, entries arriving with
// an id keep it, new entries get a fresh one. Ids are never reused.
type TemplateInput struct {
	Title       string
	Description string
	RoomType    string
	Questions   []domain.TemplateQuestion
}

func (s *TemplateService) Create(ctx context.Context, designerID string, in TemplateInput) (*domain.Template, error) {
	now := s.now()
	t := &domain.Template{
		ID:          uuid.NewString(),
		DesignerID:  designerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		RoomType:    in.RoomType,
		Questions:   stampQuestionIDs(in.Questions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Get(ctx context.Context, designerID, id string) (*domain.Template, error) {
	return s.owned(ctx, designerID, id)
}

func (s *TemplateService) List(ctx context.Context, designerID string) ([]domain.Template, error) {
	return s.store.ListByDesigner(ctx, designerID)
}

func (s *TemplateService) Update(ctx context.Context, designerID, id string, in TemplateInput) (*domain.Template, error) {
	t, err := s.owned(ctx, designerID, id)
	if err != nil {
		return nil, err
	}

	t.Title = strings.TrimSpace(in.Title)
	t.Description = in.Description
	t.RoomType = in.RoomType
	t.Questions = stampQuestionIDs(in.Questions)
	t.UpdatedAt = s.now()

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) Delete(ctx context.Context, designerID, id string) error {
	ok, err := s.store.Delete(ctx, designerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTemplateNotFound
	}
	return nil
}

// owned fetches a template and hides other designers' templates behind
// not-found, so ownership failures are indistinguishable from absence.
func (s *TemplateService) owned(ctx context.Context, designerID, id string) (*domain.Template, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.DesignerID != designerID {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

func stampQuestionIDs(questions []domain.TemplateQuestion) []domain.TemplateQuestion {
	out := make([]domain.TemplateQuestion, 0, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		opts := make([]domain.TemplateOption, 0, len(q.Options))
		for _, o := range q.Options {
			if o.ID == "" {
				o.ID = uuid.NewString()
			}
			opts = append(opts, o)
		}
		q.Options = opts
		out = append(out, q)
	}
	return out
}
