package merge

import (
	"testing"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerQuestions() []domain.InstanceQuestion {
	return []domain.InstanceQuestion{
		{
			ID: "iq1", SourceQuestionID: "q1", Text: "Style?",
			Options: []domain.InstanceOption{
				{ID: "io1", SourceOptionID: "o1", Text: "Modern"},
				{ID: "io2", SourceOptionID: "o2", Text: "Boho"},
				{ID: "io3", Text: "Project-only option"},
			},
		},
		{ID: "iq2", Text: "Budget note?"}, // project-only, no options
	}
}

func TestSaveAnswers(t *testing.T) {
	questions := answerQuestions()

	t.Run("keys answers by stable key and snapshots text", func(t *testing.T) {
		out := SaveAnswers(questions, []domain.SubmittedAnswer{
			{QuestionKey: "q1", SelectedOptionKeys: []string{"o2"}},
			{QuestionKey: "iq2", FreeText: "Around 20k"},
		})

		require.Len(t, out, 2)
		assert.Equal(t, "q1", out[0].QuestionKey)
		assert.Equal(t, "Style?", out[0].QuestionText)
		assert.Equal(t, []string{"o2"}, out[0].SelectedOptionKeys)
		assert.Equal(t, "iq2", out[1].QuestionKey)
		assert.Equal(t, "Around 20k", out[1].FreeText)
	})

	t.Run("drops stale selections referencing removed options", func(t *testing.T) {
		out := SaveAnswers(questions, []domain.SubmittedAnswer{
			{QuestionKey: "q1", SelectedOptionKeys: []string{"o1", "gone", "io3"}},
		})

		require.Len(t, out, 1)
		assert.Equal(t, []string{"o1", "io3"}, out[0].SelectedOptionKeys,
			"valid selections survive, including project-only option keys")
	})

	t.Run("omits entries with no selections and no text", func(t *testing.T) {
		out := SaveAnswers(questions, []domain.SubmittedAnswer{
			{QuestionKey: "q1", SelectedOptionKeys: []string{"gone"}, FreeText: "   "},
			{QuestionKey: "iq2", FreeText: "kept"},
		})

		require.Len(t, out, 1)
		assert.Equal(t, "iq2", out[0].QuestionKey)
	})

	t.Run("ignores entries for unknown questions", func(t *testing.T) {
		out := SaveAnswers(questions, []domain.SubmittedAnswer{
			{QuestionKey: "no-such-question", FreeText: "lost"},
		})
		assert.Empty(t, out)
	})

	t.Run("first entry wins on duplicate keys", func(t *testing.T) {
		out := SaveAnswers(questions, []domain.SubmittedAnswer{
			{QuestionKey: "iq2", FreeText: "first"},
			{QuestionKey: "iq2", FreeText: "second"},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "first", out[0].FreeText)
	})
}

func TestResolveAnswers(t *testing.T) {
	questions := answerQuestions()
	stored := []domain.Answer{
		{QuestionKey: "q1", QuestionText: "Style?", SelectedOptionKeys: []string{"o1"}},
		{QuestionKey: "orphan", QuestionText: "Removed question", FreeText: "still stored"},
	}

	t.Run("maps current questions to stored answers", func(t *testing.T) {
		out := ResolveAnswers(questions, stored)
		require.Contains(t, out, "q1")
		assert.Equal(t, []string{"o1"}, out["q1"].SelectedOptionKeys)
	})

	t.Run("orphaned answers are absent but not removed from storage", func(t *testing.T) {
		out := ResolveAnswers(questions, stored)
		assert.NotContains(t, out, "orphan")
		assert.Len(t, stored, 2, "resolution never rewrites the stored slice")
	})
}

func TestAnswerStabilityAcrossSync(t *testing.T) {
	// A sync that only changes a question's text must not orphan its answer:
	// the stable key is the source id, which the merge preserves.
	questions := answerQuestions()
	stored := SaveAnswers(questions, []domain.SubmittedAnswer{
		{QuestionKey: "q1", SelectedOptionKeys: []string{"o1"}},
	})
	require.Len(t, stored, 1)

	tpl := []domain.TemplateQuestion{
		{ID: "q1", Text: "Preferred Style?", Options: []domain.TemplateOption{
			{ID: "o1", Text: "Modern"}, {ID: "o2", Text: "Boho"},
		}},
	}
	synced := Questions(questions, tpl, SyncPolicy)

	out := ResolveAnswers(synced, stored)
	require.Contains(t, out, "q1")
	assert.Equal(t, []string{"o1"}, out["q1"].SelectedOptionKeys)
	assert.Equal(t, "Style?", out["q1"].QuestionText, "snapshot text is from save time, not sync time")
}

func TestOrphanedAnswers(t *testing.T) {
	questions := answerQuestions()
	stored := []domain.Answer{
		{QuestionKey: "q1"},
		{QuestionKey: "orphan-1"},
		{QuestionKey: "orphan-2"},
	}

	orphans := OrphanedAnswers(questions, stored)

	require.Len(t, orphans, 2)
	assert.Equal(t, "orphan-1", orphans[0].QuestionKey)
	assert.Equal(t, "orphan-2", orphans[1].QuestionKey)
}
