package service

import (
	"context"
	"testing"
	"time"

	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDesigner = "designer-1"
	testClient   = "client-1"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

type syncFixture struct {
	templates *memTemplates
	projects  *memProjects
	reports   *memReports
	instances *InstanceService
	sync      *SyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	f := &syncFixture{
		templates: newMemTemplates(),
		projects:  newMemProjects(),
		reports:   newMemReports(),
	}
	f.instances = NewInstanceService(f.templates, f.projects)
	f.instances.now = fixedNow
	f.sync = NewSyncService(f.templates, f.projects, f.reports)
	f.sync.now = fixedNow
	return f
}

func (f *syncFixture) seedTemplate(t *testing.T, tpl domain.Template) {
	t.Helper()
	require.NoError(t, f.templates.Create(context.Background(), &tpl))
}

func (f *syncFixture) seedProject(id, designerID string) {
	f.projects.add(ProjectDoc{ID: id, DesignerID: designerID, ClientID: testClient})
}

func (f *syncFixture) instancesOf(t *testing.T, projectID string) []domain.Instance {
	t.Helper()
	p, err := f.projects.GetByID(context.Background(), projectID)
	require.NoError(t, err)
	return p.Instances
}

func styleTemplate() domain.Template {
	return domain.Template{
		ID:         "tpl-1",
		DesignerID: testDesigner,
		Title:      "Living room intake",
		RoomType:   "living_room",
		Questions: []domain.TemplateQuestion{
			{ID: "A", Text: "Style?", Options: []domain.TemplateOption{
				{ID: "m", Text: "Modern"}, {ID: "b", Text: "Boho"},
			}},
		},
	}
}

func TestSyncTemplate_ModeValidation(t *testing.T) {
	f := newSyncFixture(t)
	f.seedTemplate(t, styleTemplate())

	_, err := f.sync.SyncTemplate(context.Background(), testDesigner, "tpl-1", "merge-everything")
	assert.ErrorIs(t, err, domain.ErrInvalidSyncMode)
}

func TestSyncTemplate_Ownership(t *testing.T) {
	f := newSyncFixture(t)
	f.seedTemplate(t, styleTemplate())

	t.Run("missing template", func(t *testing.T) {
		_, err := f.sync.SyncTemplate(context.Background(), testDesigner, "nope", domain.SyncSafe)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("other designer's template reads as missing", func(t *testing.T) {
		_, err := f.sync.SyncTemplate(context.Background(), "designer-2", "tpl-1", domain.SyncSafe)
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})
}

func TestSyncTemplate_CustomizationGating(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)
	f.seedTemplate(t, styleTemplate())
	f.seedProject("p1", testDesigner)

	_, err := f.instances.AssignOrUpdateTemplate(ctx, testDesigner, "p1", "tpl-1")
	require.NoError(t, err)

	inst := f.instancesOf(t, "p1")[0]
	title := "Client wants it cozy"
	_, err = f.instances.EditInstance(ctx, testDesigner, "p1", inst.ID, domain.InstancePatch{Title: &title})
	require.NoError(t, err)

	// Template changes after the customization.
	tpl, err := f.templates.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	tpl.Questions[0].Text = "Preferred Style?"
	require.NoError(t, f.templates.Update(ctx, tpl))

	t.Run("safe sync skips customized instances byte-for-byte", func(t *testing.T) {
		before := f.instancesOf(t, "p1")

		report, err := f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncSafe)
		require.NoError(t, err)

		assert.Equal(t, 0, report.UpdatedProjects)
		assert.Equal(t, 1, report.SkippedCustomized)
		assert.Equal(t, before, f.instancesOf(t, "p1"), "skipped instance must be structurally unchanged")
	})

	t.Run("force sync updates and resets the customization flag", func(t *testing.T) {
		report, err := f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncForce)
		require.NoError(t, err)

		assert.Equal(t, 1, report.UpdatedProjects)
		assert.Equal(t, 0, report.SkippedCustomized)

		after := f.instancesOf(t, "p1")[0]
		assert.False(t, after.IsCustomized)
		assert.Equal(t, "Preferred Style?", after.Questions[0].Text)
		assert.Equal(t, "Living room intake", after.Title, "force sync re-takes title from template")
	})
}

func TestSyncTemplate_SafeIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)
	f.seedTemplate(t, styleTemplate())
	f.seedProject("p1", testDesigner)

	_, err := f.instances.AssignOrUpdateTemplate(ctx, testDesigner, "p1", "tpl-1")
	require.NoError(t, err)

	_, err = f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncSafe)
	require.NoError(t, err)
	first := f.instancesOf(t, "p1")

	_, err = f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncSafe)
	require.NoError(t, err)
	second := f.instancesOf(t, "p1")

	assert.Equal(t, first, second, "repeated safe sync with no template changes must not drift")
}

func TestSyncTemplate_PerProjectFailureIsolation(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)
	f.seedTemplate(t, styleTemplate())
	f.seedProject("p1", testDesigner)
	f.seedProject("p2", testDesigner)

	_, err := f.instances.AssignOrUpdateTemplate(ctx, testDesigner, "p1", "tpl-1")
	require.NoError(t, err)
	_, err = f.instances.AssignOrUpdateTemplate(ctx, testDesigner, "p2", "tpl-1")
	require.NoError(t, err)

	f.projects.failSave["p1"] = true

	report, err := f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncForce)
	require.NoError(t, err, "one project's failure must not abort the batch")

	assert.Equal(t, 1, report.UpdatedProjects)
	assert.Equal(t, 1, report.FailedProjects)
}

func TestSyncTemplate_PersistsReport(t *testing.T) {
	ctx := context.Background()
	f := newSyncFixture(t)
	f.seedTemplate(t, styleTemplate())
	f.seedProject("p1", testDesigner)

	_, err := f.instances.AssignOrUpdateTemplate(ctx, testDesigner, "p1", "tpl-1")
	require.NoError(t, err)

	report, err := f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncSafe)
	require.NoError(t, err)

	stored, err := f.sync.LastReport(ctx, testDesigner, "tpl-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, report.UpdatedProjects, stored.UpdatedProjects)
	assert.Equal(t, domain.SyncSafe, stored.Mode)
	assert.Equal(t, fixedNow(), stored.RanAt)

	t.Run("no report for template never synced", func(t *testing.T) {
		f.seedTemplate(t, domain.Template{ID: "tpl-2", DesignerID: testDesigner, Title: "Other"})
		stored, err := f.sync.LastReport(ctx, testDesigner, "tpl-2")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestSyncTemplate_SpecScenario(t *testing.T) {
	// Template T: A("Style?", [Modern, Boho]). Assign to P. Designer adds a
	// project-only question B. T renames A and gains "Industrial". Safe sync
	// then updates A' and leaves B alone; the manual edit made the instance
	// customized first, so the safe sync is blocked until force is used.
	ctx := context.Background()
	f := newSyncFixture(t)
	f.seedTemplate(t, styleTemplate())
	f.seedProject("P", testDesigner)

	assigned, err := f.instances.AssignOrUpdateTemplate(ctx, testDesigner, "P", "tpl-1")
	require.NoError(t, err)
	require.Len(t, assigned.Questions, 1)
	assert.Equal(t, "A", assigned.Questions[0].SourceQuestionID)

	// Record an answer for A before any template edits.
	_, err = f.instances.SaveAnswers(ctx, testClient, "P", assigned.ID, []domain.SubmittedAnswer{
		{QuestionKey: "A", SelectedOptionKeys: []string{"b"}},
	})
	require.NoError(t, err)

	// Designer adds the project-only question B.
	questions := append(f.instancesOf(t, "P")[0].Questions, domain.InstanceQuestion{Text: "Budget note?"})
	_, err = f.instances.EditInstance(ctx, testDesigner, "P", assigned.ID, domain.InstancePatch{Questions: questions})
	require.NoError(t, err)

	// Template edit: rename A, add Industrial.
	tpl, err := f.templates.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	tpl.Questions[0].Text = "Preferred Style?"
	tpl.Questions[0].Options = append(tpl.Questions[0].Options, domain.TemplateOption{ID: "i", Text: "Industrial"})
	require.NoError(t, f.templates.Update(ctx, tpl))

	report, err := f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncSafe)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedCustomized, "the manual edit customized the instance")

	report, err = f.sync.SyncTemplate(ctx, testDesigner, "tpl-1", domain.SyncForce)
	require.NoError(t, err)
	assert.Equal(t, 1, report.UpdatedProjects)

	inst := f.instancesOf(t, "P")[0]
	assert.False(t, inst.IsCustomized)
	require.Len(t, inst.Questions, 2)

	aPrime := inst.Questions[0]
	assert.Equal(t, "A", aPrime.SourceQuestionID)
	assert.Equal(t, "Preferred Style?", aPrime.Text)
	require.Len(t, aPrime.Options, 3)
	assert.Equal(t, "Industrial", aPrime.Options[2].Text)

	b := inst.Questions[1]
	assert.Empty(t, b.SourceQuestionID)
	assert.Equal(t, "Budget note?", b.Text)

	// The answer recorded before the sync still resolves by stable key.
	view, err := f.instances.GetInstance(ctx, testClient, "P", inst.ID)
	require.NoError(t, err)
	require.Contains(t, view.ResolvedAnswers, "A")
	assert.Equal(t, []string{"b"}, view.ResolvedAnswers["A"].SelectedOptionKeys)
}
