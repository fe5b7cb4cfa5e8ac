package domain

import "time"

// Template is a designer-authored reusable questionnaire definition.
// It is storage-agnostic and shared across repository, service and HTTP layers.
type Template struct {
	ID          string             `json:"id"`
	DesignerID  string             `json:"designer_id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	RoomType    string             `json:"room_type"`
	Questions   []TemplateQuestion `json:"questions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TemplateQuestion is a question inside a template. IDs are assigned at
// creation and never reused.
type TemplateQuestion struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Multiple bool             `json:"multiple"`
	Options  []TemplateOption `json:"options"`
}

type TemplateOption struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

// Instance is a per-project materialized (and possibly diverged) copy of a
// template. Instances live inside their project's document and are always
// read and written together with their siblings.
type Instance struct {
	ID           string             `json:"id"`
	TemplateID   string             `json:"template_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	RoomType     string             `json:"room_type"`
	IsCustomized bool               `json:"is_customized"`
	SyncedAt     time.Time          `json:"synced_at"`
	Questions    []InstanceQuestion `json:"questions"`
	Answers      []Answer           `json:"answers"`
}

// InstanceQuestion mirrors a TemplateQuestion inside a project. An empty
// SourceQuestionID marks a project-only question that no sync may remove.
type InstanceQuestion struct {
	ID               string           `json:"id"`
	SourceQuestionID string           `json:"source_question_id,omitempty"`
	Text             string           `json:"text"`
	Multiple         bool             `json:"multiple"`
	Options          []InstanceOption `json:"options"`
}

type InstanceOption struct {
	ID             string `json:"id"`
	SourceOptionID string `json:"source_option_id,omitempty"`
	Text           string `json:"text"`
	ImageURL       string `json:"image_url,omitempty"`
}

// Answer is one recorded answer, addressed by the question's stable key so
// it survives re-synchronization. QuestionText is a snapshot taken at save
// time for export/display even after the question changes.
type Answer struct {
	QuestionKey        string   `json:"question_key"`
	QuestionText       string   `json:"question_text"`
	SelectedOptionKeys []string `json:"selected_option_keys,omitempty"`
	FreeText           string   `json:"free_text,omitempty"`
}

// SyncMode selects the orchestrator policy for a bulk sync run.
type SyncMode string

const (
	// SyncSafe propagates template changes only into non-customized instances.
	SyncSafe SyncMode = "safe"
	// SyncForce propagates into all instances and resets the customization
	// flag, while still preserving project-only content and answers.
	SyncForce SyncMode = "force"
)

// Valid reports whether the mode is one of the two supported policies.
func (m SyncMode) Valid() bool {
	return m == SyncSafe || m == SyncForce
}

// SyncReport is the aggregate outcome of one sync run over all projects
// referencing a template.
type SyncReport struct {
	TemplateID        string    `json:"template_id"`
	Mode              SyncMode  `json:"mode"`
	UpdatedProjects   int       `json:"updated_projects"`
	SkippedCustomized int       `json:"skipped_customized"`
	FailedProjects    int       `json:"failed_projects"`
	RanAt             time.Time `json:"ran_at"`
}

// InstancePatch is a designer's direct project-only edit. Nil fields are
// left untouched; any applied patch marks the instance as customized.
type InstancePatch struct {
	Title       *string
	Description *string
	RoomType    *string
	Questions   []InstanceQuestion
}

// SubmittedAnswer is one entry of a client answer payload before it is
// validated against the instance's current questions.
type SubmittedAnswer struct {
	QuestionKey        string   `json:"question_key"`
	SelectedOptionKeys []string `json:"selected_option_keys,omitempty"`
	FreeText           string   `json:"free_text,omitempty"`
}
