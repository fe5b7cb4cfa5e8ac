package service

import (
	"context"
	"log"
	"time"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/merge"
	"github.com/google/uuid"
)

// InstanceService handles the per-project questionnaire instance operations:
// assigning templates, direct project-only edits, answer submission and
// instance removal.
type InstanceService struct {
	templates TemplateStore
	projects  ProjectStore
	now       func() time.Time
}

func NewInstanceService(templates TemplateStore, projects ProjectStore) *InstanceService {
	return &InstanceService{templates: templates, projects: projects, now: time.Now}
}

// AssignOrUpdateTemplate stamps a template into a project. If the project
// already holds an instance of this template, the instance is update-merged
// instead: the template is authoritative and previously existing questions
// absent from it, project-only ones included, are dropped. That is the
// intended re-assign semantics; bulk sync is the preserving path.
func (s *InstanceService) AssignOrUpdateTemplate(ctx context.Context, designerID, projectID, templateID string) (*domain.Instance, error) {
	t, err := s.ownedTemplate(ctx, designerID, templateID)
	if err != nil {
		return nil, err
	}
	p, err := s.ownedProject(ctx, designerID, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	instances := append([]domain.Instance(nil), p.Instances...)
	var result *domain.Instance
	for i := range instances {
		if instances[i].TemplateID != templateID {
			continue
		}
		inst := &instances[i]
		inst.Title = t.Title
		inst.Description = t.Description
		inst.RoomType = t.RoomType
		inst.Questions = merge.Questions(inst.Questions, t.Questions, merge.AssignPolicy)
		inst.SyncedAt = now
		result = inst
		break
	}
	if result == nil {
		fresh := merge.Materialize(*t, now)
		instances = append(instances, fresh)
		result = &instances[len(instances)-1]
	}

	if err := s.projects.SaveInstances(ctx, projectID, instances); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveAnswers applies a submitted answer payload to an instance. The caller
// must be the project's designer or its linked client. Stale selections are
// dropped and empty entries omitted; the stored collection is replaced
// wholesale, which is the only moment answers are re-keyed.
func (s *InstanceService) SaveAnswers(ctx context.Context, callerID, projectID, instanceID string, submitted []domain.SubmittedAnswer) (*domain.Instance, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if callerID != p.DesignerID && (p.ClientID == "" || callerID != p.ClientID) {
		return nil, domain.ErrNotOwner
	}

	return s.mutateInstance(ctx, p, instanceID, func(inst *domain.Instance) {
		inst.Answers = merge.SaveAnswers(inst.Questions, submitted)
	})
}

// EditInstance is the designer's direct project-only edit. Applying any
// patch marks the instance customized; safe sync will skip it from then on.
func (s *InstanceService) EditInstance(ctx context.Context, designerID, projectID, instanceID string, patch domain.InstancePatch) (*domain.Instance, error) {
	p, err := s.ownedProject(ctx, designerID, projectID)
	if err != nil {
		return nil, err
	}

	return s.mutateInstance(ctx, p, instanceID, func(inst *domain.Instance) {
		if patch.Title != nil {
			inst.Title = *patch.Title
		}
		if patch.Description != nil {
			inst.Description = *patch.Description
		}
		if patch.RoomType != nil {
			inst.RoomType = *patch.RoomType
		}
		if patch.Questions != nil {
			inst.Questions = stampInstanceQuestionIDs(patch.Questions)
		}
		inst.IsCustomized = true
	})
}

// RemoveInstance deletes the instance outright. No merge is involved.
func (s *InstanceService) RemoveInstance(ctx context.Context, designerID, projectID, instanceID string) error {
	p, err := s.ownedProject(ctx, designerID, projectID)
	if err != nil {
		return err
	}

	kept := make([]domain.Instance, 0, len(p.Instances))
	for _, inst := range p.Instances {
		if inst.ID != instanceID {
			kept = append(kept, inst)
		}
	}
	if len(kept) == len(p.Instances) {
		return domain.ErrInstanceNotFound
	}
	return s.projects.SaveInstances(ctx, projectID, kept)
}

// InstanceView is an instance plus its answers resolved against the current
// question set, for rendering.
type InstanceView struct {
	Instance        domain.Instance          `json:"instance"`
	ResolvedAnswers map[string]domain.Answer `json:"resolved_answers"`
}

// GetInstance returns an instance with its answers resolved by stable key.
// Orphaned answers stay stored but do not appear in the resolved map.
func (s *InstanceService) GetInstance(ctx context.Context, callerID, projectID, instanceID string) (*InstanceView, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if callerID != p.DesignerID && (p.ClientID == "" || callerID != p.ClientID) {
		return nil, domain.ErrNotOwner
	}

	for _, inst := range p.Instances {
		if inst.ID == instanceID {
			return &InstanceView{
				Instance:        inst,
				ResolvedAnswers: merge.ResolveAnswers(inst.Questions, inst.Answers),
			}, nil
		}
	}
	return nil, domain.ErrInstanceNotFound
}

// PruneOrphanedAnswers walks every project and drops stored answers whose
// stable key no longer resolves against the instance's current questions.
// Sync never does this on its own; the sweep runs only when scheduled
// explicitly. Returns the number of answers removed.
func (s *InstanceService) PruneOrphanedAnswers(ctx context.Context) (int, error) {
	projs, err := s.projects.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, p := range projs {
		changed := false
		instances := append([]domain.Instance(nil), p.Instances...)
		for i := range instances {
			orphans := merge.OrphanedAnswers(instances[i].Questions, instances[i].Answers)
			if len(orphans) == 0 {
				continue
			}
			resolved := merge.ResolveAnswers(instances[i].Questions, instances[i].Answers)
			kept := make([]domain.Answer, 0, len(resolved))
			for _, a := range instances[i].Answers {
				if _, ok := resolved[a.QuestionKey]; ok {
					kept = append(kept, a)
				}
			}
			pruned += len(instances[i].Answers) - len(kept)
			instances[i].Answers = kept
			changed = true
		}
		if !changed {
			continue
		}
		if err := s.projects.SaveInstances(ctx, p.ID, instances); err != nil {
			// Same isolation stance as sync: one project's failure must not
			// stop the sweep.
			log.Printf("[questionnaire] prune: project %s: %v", p.ID, err)
		}
	}
	return pruned, nil
}

func (s *InstanceService) mutateInstance(ctx context.Context, p *ProjectDoc, instanceID string, mutate func(*domain.Instance)) (*domain.Instance, error) {
	instances := append([]domain.Instance(nil), p.Instances...)
	for i := range instances {
		if instances[i].ID != instanceID {
			continue
		}
		mutate(&instances[i])
		if err := s.projects.SaveInstances(ctx, p.ID, instances); err != nil {
			return nil, err
		}
		return &instances[i], nil
	}
	return nil, domain.ErrInstanceNotFound
}

func (s *InstanceService) ownedTemplate(ctx context.Context, designerID, templateID string) (*domain.Template, error) {
	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t.DesignerID != designerID {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

func (s *InstanceService) ownedProject(ctx context.Context, designerID, projectID string) (*ProjectDoc, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.DesignerID != designerID {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

func stampInstanceQuestionIDs(questions []domain.InstanceQuestion) []domain.InstanceQuestion {
	out := make([]domain.InstanceQuestion, 0, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		opts := make([]domain.InstanceOption, 0, len(q.Options))
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
