// Package merge implements the questionnaire template/instance merge engine:
// materializing template copies into projects and re-propagating template
// edits into diverged copies without destroying project-local content.
//
// All functions are pure. Inputs are never mutated; every call returns fresh
// slices, so callers can compare before/after states safely.
package merge

import (
	"time"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/google/uuid"
)

// Policy selects what happens to existing instance content that has no
// counterpart in the template.
type Policy struct {
	// PreserveUnmatched keeps existing questions/options that the template
	// does not claim. The sync path sets it so project-only additions (and
	// template-orphaned duplicates) survive; the assign/update path clears
	// it so the instance becomes exactly the template's shape again.
	PreserveUnmatched bool
}

// AssignPolicy is the re-assign merge: template wins, unmatched existing
// content is dropped.
var AssignPolicy = Policy{PreserveUnmatched: false}

// SyncPolicy is the safe/force sync merge: project-only content is never
// discarded.
var SyncPolicy = Policy{PreserveUnmatched: true}

// StableQuestionKey returns the identity used to address a question across
// merges: the template back-reference when present, else the local id.
func StableQuestionKey(q domain.InstanceQuestion) string {
	if q.SourceQuestionID != "" {
		return q.SourceQuestionID
	}
	return q.ID
}

// StableOptionKey is the option-level counterpart of StableQuestionKey.
func StableOptionKey(o domain.InstanceOption) string {
	if o.SourceOptionID != "" {
		return o.SourceOptionID
	}
	return o.ID
}

// Materialize creates a project-local copy of a template: deep copies of its
// questions and options, each stamped with the template item it came from.
func Materialize(t domain.Template, now time.Time) domain.Instance {
	questions := make([]domain.InstanceQuestion, 0, len(t.Questions))
	for _, tq := range t.Questions {
		questions = append(questions, newInstanceQuestion(tq))
	}
	return domain.Instance{
		ID:          uuid.NewString(),
		TemplateID:  t.ID,
		Title:       t.Title,
		Description: t.Description,
		RoomType:    t.RoomType,
		SyncedAt:    now,
		Questions:   questions,
		Answers:     []domain.Answer{},
	}
}

// Questions merges an instance's existing questions with the template's
// current questions under the given policy.
//
// Template-derived output comes first, in template order: a template
// question with a match keeps the matched question's local id (and any
// fields the template does not own) but takes text and multiple from the
// template; one without a match becomes a fresh stamped copy. Under
// SyncPolicy the remaining existing questions are appended afterwards in
// their original relative order.
//
// Matching is by source id under SyncPolicy (a project-only question is
// never captured by the template) and by stable key under AssignPolicy.
// If several existing questions claim the same source id, the first wins;
// the rest are treated as project-only for this pass.
func Questions(existing []domain.InstanceQuestion, tmpl []domain.TemplateQuestion, p Policy) []domain.InstanceQuestion {
	claims := make(map[string]int, len(existing))
	for i, q := range existing {
		key := q.SourceQuestionID
		if !p.PreserveUnmatched {
			key = StableQuestionKey(q)
		}
		if key == "" {
			continue
		}
		if _, taken := claims[key]; !taken {
			claims[key] = i
		}
	}

	out := make([]domain.InstanceQuestion, 0, len(tmpl)+len(existing))
	consumed := make(map[int]bool, len(tmpl))
	for _, tq := range tmpl {
		idx, ok := claims[tq.ID]
		if !ok {
			out = append(out, newInstanceQuestion(tq))
			continue
		}
		consumed[idx] = true
		out = append(out, mergeQuestion(existing[idx], tq, p))
	}

	if !p.PreserveUnmatched {
		return out
	}
	for i, q := range existing {
		if consumed[i] {
			continue
		}
		if idx, claimed := claims[q.SourceQuestionID]; claimed && idx == i {
			// First claimant of a source id the template no longer has:
			// template-sourced content the template dropped, so sync drops
			// it too. Its answers stay stored but become unreferenced.
			continue
		}
		out = append(out, copyQuestion(q))
	}
	return out
}

// mergeQuestion overwrites the template-owned fields of a matched question
// and merges its options by the same keyed rule.
func mergeQuestion(existing domain.InstanceQuestion, tq domain.TemplateQuestion, p Policy) domain.InstanceQuestion {
	merged := existing
	merged.SourceQuestionID = tq.ID
	merged.Text = tq.Text
	merged.Multiple = tq.Multiple
	merged.Options = options(existing.Options, tq.Options, p)
	return merged
}

func options(existing []domain.InstanceOption, tmpl []domain.TemplateOption, p Policy) []domain.InstanceOption {
	claims := make(map[string]int, len(existing))
	for i, o := range existing {
		key := o.SourceOptionID
		if !p.PreserveUnmatched {
			key = StableOptionKey(o)
		}
		if key == "" {
			continue
		}
		if _, taken := claims[key]; !taken {
			claims[key] = i
		}
	}

	out := make([]domain.InstanceOption, 0, len(tmpl)+len(existing))
	consumed := make(map[int]bool, len(tmpl))
	for _, to := range tmpl {
		idx, ok := claims[to.ID]
		if !ok {
			out = append(out, newInstanceOption(to))
			continue
		}
		consumed[idx] = true
		merged := existing[idx]
		merged.SourceOptionID = to.ID
		merged.Text = to.Text
		merged.ImageURL = to.ImageURL
		out = append(out, merged)
	}

	if !p.PreserveUnmatched {
		return out
	}
	for i, o := range existing {
		if consumed[i] {
			continue
		}
		if idx, claimed := claims[o.SourceOptionID]; claimed && idx == i {
			continue
		}
		out = append(out, o)
	}
	return out
}

func newInstanceQuestion(tq domain.TemplateQuestion) domain.InstanceQuestion {
	opts := make([]domain.InstanceOption, 0, len(tq.Options))
	for _, to := range tq.Options {
		opts = append(opts, newInstanceOption(to))
	}
	return domain.InstanceQuestion{
		ID:               uuid.NewString(),
		SourceQuestionID: tq.ID,
		Text:             tq.Text,
		Multiple:         tq.Multiple,
		Options:          opts,
	}
}

func newInstanceOption(to domain.TemplateOption) domain.InstanceOption {
	return domain.InstanceOption{
		ID:             uuid.NewString(),
		SourceOptionID: to.ID,
		Text:           to.Text,
		ImageURL:       to.ImageURL,
	}
}

func copyQuestion(q domain.InstanceQuestion) domain.InstanceQuestion {
	out := q
	out.Options = append([]domain.InstanceOption(nil), q.Options...)
	return out
}
