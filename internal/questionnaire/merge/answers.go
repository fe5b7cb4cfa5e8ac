package merge

import (
	"strings"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
)

// SaveAnswers validates a submitted answer payload against the instance's
// current questions and returns the answers to persist.
//
// Answers are keyed by stable question key. Selections referencing options
// not present on the question are silently dropped, and entries left with no
// selections and no free text are omitted entirely. Answers for questions
// that no longer exist are not carried over here; re-keying happens only on
// explicit re-save, so the caller replaces the stored collection wholesale.
func SaveAnswers(questions []domain.InstanceQuestion, submitted []domain.SubmittedAnswer) []domain.Answer {
	byKey := make(map[string]domain.SubmittedAnswer, len(submitted))
	for _, s := range submitted {
		if s.QuestionKey == "" {
			continue
		}
		if _, taken := byKey[s.QuestionKey]; !taken {
			byKey[s.QuestionKey] = s
		}
	}

	out := make([]domain.Answer, 0, len(questions))
	for _, q := range questions {
		key := StableQuestionKey(q)
		s, ok := byKey[key]
		if !ok {
			continue
		}

		valid := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			valid[StableOptionKey(o)] = true
		}
		selected := make([]string, 0, len(s.SelectedOptionKeys))
		for _, k := range s.SelectedOptionKeys {
			if valid[k] {
				selected = append(selected, k)
			}
		}

		freeText := strings.TrimSpace(s.FreeText)
		if len(selected) == 0 && freeText == "" {
			continue
		}
		out = append(out, domain.Answer{
			QuestionKey:        key,
			QuestionText:       q.Text,
			SelectedOptionKeys: selected,
			FreeText:           freeText,
		})
	}
	return out
}

// ResolveAnswers maps the instance's current questions to their stored
// answers by stable key. Stored answers whose question is gone are simply
// absent from the result; they stay in storage untouched.
func ResolveAnswers(questions []domain.InstanceQuestion, stored []domain.Answer) map[string]domain.Answer {
	byKey := make(map[string]domain.Answer, len(stored))
	for _, a := range stored {
		if _, taken := byKey[a.QuestionKey]; !taken {
			byKey[a.QuestionKey] = a
		}
	}

	out := make(map[string]domain.Answer, len(questions))
	for _, q := range questions {
		key := StableQuestionKey(q)
		if a, ok := byKey[key]; ok {
			out[key] = a
		}
	}
	return out
}

// OrphanedAnswers returns the stored answers whose stable key no longer
// resolves against the current questions. Merges never call this; it exists
// for the opt-in pruning sweep.
func OrphanedAnswers(questions []domain.InstanceQuestion, stored []domain.Answer) []domain.Answer {
	live := make(map[string]bool, len(questions))
	for _, q := range questions {
		live[StableQuestionKey(q)] = true
	}

	var out []domain.Answer
	for _, a := range stored {
		if !live[a.QuestionKey] {
			out = append(out, a)
		}
	}
	return out
}
