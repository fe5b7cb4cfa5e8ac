package http

import (
	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/service"
)

// Handler bundles the dependencies for questionnaire HTTP endpoints.
type Handler struct {
	templates *service.TemplateService
	instances *service.InstanceService
	sync      *service.SyncService
}

func New(templates *service.TemplateService, instances *service.InstanceService, sync *service.SyncService) *Handler {
	return &Handler{templates: templates, instances: instances, sync: sync}
}

type templateReq struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	RoomType    string                    `json:"room_type"`
	Questions   []domain.TemplateQuestion `json:"questions"`
}

type assignReq struct {
	TemplateID string `json:"template_id"`
}

type syncReq struct {
	Mode string `json:"mode"`
}

type editInstanceReq struct {
	Title       *string                   `json:"title"`
	Description *string                   `json:"description"`
	RoomType    *string                   `json:"room_type"`
	Questions   []domain.InstanceQuestion `json:"questions"`
}

type saveAnswersReq struct {
	Answers []domain.SubmittedAnswer `json:"answers"`
}
