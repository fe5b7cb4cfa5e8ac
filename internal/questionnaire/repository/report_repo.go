package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/redis/go-redis/v9"
)

const (
	reportKeyPrefix = "qn:syncreport:"   // qn:syncreport:{template_id}
	reportTTL       = 7 * 24 * time.Hour // keep the last report for a week
)

// ReportRepository keeps the latest sync report per template in Redis.
// Reports are observability data, not source of truth, so a TTL is fine.
type ReportRepository struct {
	client *redis.Client
}

func NewReportRepository(client *redis.Client) *ReportRepository {
	return &ReportRepository{client: client}
}

func (r *ReportRepository) Save(ctx context.Context, report *domain.SyncReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := r.client.Set(ctx, reportKey(report.TemplateID), data, reportTTL).Err(); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Get returns the last report for a template, or nil when none is retained.
func (r *ReportRepository) Get(ctx context.Context, templateID string) (*domain.SyncReport, error) {
	data, err := r.client.Get(ctx, reportKey(templateID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	var report domain.SyncReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

func reportKey(templateID string) string {
	return reportKeyPrefix + templateID
}
