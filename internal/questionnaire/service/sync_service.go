package service

import (
	"context"
	"log"
	"time"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/merge"
)

// SyncService is the sync orchestrator: it applies the preserving merge
// across every project referencing a template and reports aggregate counts.
type SyncService struct {
	templates TemplateStore
	projects  ProjectStore
	reports   ReportStore
	now       func() time.Time
}

func NewSyncService(templates TemplateStore, projects ProjectStore, reports ReportStore) *SyncService {
	return &SyncService{templates: templates, projects: projects, reports: reports, now: time.Now}
}

// SyncTemplate propagates the template's current state into all projects
// referencing it. Safe mode leaves customized instances untouched; force
// mode updates them too and resets their customization flag. Project-only
// questions/options and recorded answers survive both modes.
//
// Each project is persisted in one write, so all of its instances succeed
// or fail together; a failing project is logged and skipped, never aborting
// the batch. Projects are processed sequentially in retrieval order.
func (s *SyncService) SyncTemplate(ctx context.Context, designerID, templateID string, mode domain.SyncMode) (*domain.SyncReport, error) {
	if !mode.Valid() {
		return nil, domain.ErrInvalidSyncMode
	}

	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t.DesignerID != designerID {
		return nil, domain.ErrTemplateNotFound
	}

	projs, err := s.projects.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &domain.SyncReport{
		TemplateID: templateID,
		Mode:       mode,
		RanAt:      now,
	}

	for _, p := range projs {
		changed := false
		instances := append([]domain.Instance(nil), p.Instances...)
		for i := range instances {
			inst := &instances[i]
			if inst.TemplateID != templateID {
				continue
			}
			if mode == domain.SyncSafe && inst.IsCustomized {
				report.SkippedCustomized++
				continue
			}

			inst.Title = t.Title
			inst.Description = t.Description
			inst.RoomType = t.RoomType
			inst.Questions = merge.Questions(inst.Questions, t.Questions, merge.SyncPolicy)
			inst.SyncedAt = now
			if mode == domain.SyncForce {
				inst.IsCustomized = false
			}
			changed = true
		}

		if !changed {
			continue
		}
		if err := s.projects.SaveInstances(ctx, p.ID, instances); err != nil {
			// Best effort with per-project isolation: log, count, move on.
			log.Printf("[questionnaire] sync template %s: project %s: %v", templateID, p.ID, err)
			report.FailedProjects++
			continue
		}
		report.UpdatedProjects++
	}

	if err := s.reports.Save(ctx, report); err != nil {
		log.Printf("[questionnaire] sync template %s: save report: %v", templateID, err)
	}
	return report, nil
}

// LastReport returns the most recent sync report for a template the caller
// owns, or nil when no sync has run within the report retention window.
func (s *SyncService) LastReport(ctx context.Context, designerID, templateID string) (*domain.SyncReport, error) {
	t, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t.DesignerID != designerID {
		return nil, domain.ErrTemplateNotFound
	}
	return s.reports.Get(ctx, templateID)
}
