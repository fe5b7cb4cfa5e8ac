package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
)

// In-memory stores for service tests. They deep-copy on read and write so
// assertions about "untouched" instances are meaningful.

type memTemplates struct {
	mu sync.Mutex
	m  map[string]domain.Template
}

func newMemTemplates() *memTemplates {
	return &memTemplates{m: make(map[string]domain.Template)}
}

func (s *memTemplates) Create(_ context.Context, t *domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[t.ID] = deepCopy(*t)
	return nil
}

func (s *memTemplates) GetByID(_ context.Context, id string) (*domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	out := deepCopy(t)
	return &out, nil
}

func (s *memTemplates) ListByDesigner(_ context.Context, designerID string) ([]domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Template
	for _, t := range s.m {
		if t.DesignerID == designerID {
			out = append(out, deepCopy(t))
		}
	}
	return out, nil
}

func (s *memTemplates) Update(_ context.Context, t *domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[t.ID]; !ok {
		return domain.ErrTemplateNotFound
	}
	s.m[t.ID] = deepCopy(*t)
	return nil
}

func (s *memTemplates) Delete(_ context.Context, designerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[id]
	if !ok || t.DesignerID != designerID {
		return false, nil
	}
	delete(s.m, id)
	return true, nil
}

type memProjects struct {
	mu       sync.Mutex
	order    []string
	m        map[string]ProjectDoc
	failSave map[string]bool
}

func newMemProjects() *memProjects {
	return &memProjects{m: make(map[string]ProjectDoc), failSave: make(map[string]bool)}
}

func (s *memProjects) add(p ProjectDoc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.m[p.ID] = deepCopy(p)
}

func (s *memProjects) GetByID(_ context.Context, projectID string) (*ProjectDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	out := deepCopy(p)
	return &out, nil
}

func (s *memProjects) ListByTemplate(_ context.Context, templateID string) ([]ProjectDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ProjectDoc
	for _, id := range s.order {
		p := s.m[id]
		for _, inst := range p.Instances {
			if inst.TemplateID == templateID {
				out = append(out, deepCopy(p))
				break
			}
		}
	}
	return out, nil
}

func (s *memProjects) ListAll(_ context.Context) ([]ProjectDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ProjectDoc
	for _, id := range s.order {
		out = append(out, deepCopy(s.m[id]))
	}
	return out, nil
}

func (s *memProjects) SaveInstances(_ context.Context, projectID string, instances []domain.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave[projectID] {
		return fmt.Errorf("simulated storage failure for %s", projectID)
	}
	p, ok := s.m[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	p.Instances = deepCopy(instances)
	s.m[projectID] = p
	return nil
}

type memReports struct {
	mu sync.Mutex
	m  map[string]domain.SyncReport
}

func newMemReports() *memReports {
	return &memReports{m: make(map[string]domain.SyncReport)}
}

func (s *memReports) Save(_ context.Context, report *domain.SyncReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[report.TemplateID] = *report
	return nil
}

func (s *memReports) Get(_ context.Context, templateID string) (*domain.SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[templateID]
	if !ok {
		return nil, nil
	}
	out := r
	return &out, nil
}

func deepCopy[T any](v T) T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}
