package http

import "github.com/gin-gonic/gin"

// RegisterTemplates attaches template routes (CRUD + sync) to the group.
// syncLimit applies only to the bulk sync endpoint, the one fan-out
// operation in the system.
func (h *Handler) RegisterTemplates(rg *gin.RouterGroup, syncLimit gin.HandlerFunc) {
	rg.POST("", h.createTemplate)
	rg.GET("", h.listTemplates)
	rg.GET("/:template_id", h.getTemplate)
	rg.PUT("/:template_id", h.updateTemplate)
	rg.DELETE("/:template_id", h.deleteTemplate)
	rg.POST("/:template_id/sync", syncLimit, h.syncTemplate)
	rg.GET("/:template_id/sync-report", h.syncReport)
}

// RegisterProjectsSubroutes attaches the per-project questionnaire instance
// routes under the projects group.
func (h *Handler) RegisterProjectsSubroutes(rg *gin.RouterGroup) {
	rg.POST("/:public_id/questionnaires", h.assignTemplate)
	rg.GET("/:public_id/questionnaires/:instance_id", h.getInstance)
	rg.PATCH("/:public_id/questionnaires/:instance_id", h.editInstance)
	rg.DELETE("/:public_id/questionnaires/:instance_id", h.removeInstance)
	rg.PUT("/:public_id/questionnaires/:instance_id/answers", h.saveAnswers)
}
