package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/service"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the orphaned-answer pruning sweep on a cron schedule.
// Sync itself never deletes answers; pruning only happens through this
// opt-in job. An empty spec disables it.
type Scheduler struct {
	instances *service.InstanceService
	spec      string
	cron      *cron.Cron
}

func NewScheduler(instances *service.InstanceService, spec string) *Scheduler {
	return &Scheduler{instances: instances, spec: spec}
}

// Start registers the sweep and starts the cron loop. Returns immediately.
func (s *Scheduler) Start() {
	if s.spec == "" {
		log.Println("[questionnaire] answer pruning disabled (no schedule)")
		return
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.spec, s.runSweep)
	if err != nil {
		log.Printf("[questionnaire] failed to schedule answer pruning: %v", err)
		return
	}

	log.Printf("[questionnaire] answer pruning scheduled (%s)", s.spec)
	s.cron.Start()
}

// Stop halts the cron loop, waiting for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pruned, err := s.instances.PruneOrphanedAnswers(ctx)
	if err != nil {
		log.Printf("[questionnaire] answer pruning failed: %v", err)
		return
	}
	log.Printf("[questionnaire] answer pruning removed %d orphaned answers", pruned)
}
