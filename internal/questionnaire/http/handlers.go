package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/atelierhq/atelier-backend/internal/auth"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/domain"
	"github.com/atelierhq/atelier-backend/internal/questionnaire/service"
	"github.com/gin-gonic/gin"
)

func (h *Handler) createTemplate(c *gin.Context) {
	var req templateReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	t, err := h.templates.Create(c.Request.Context(), auth.UserDBID(c), service.TemplateInput{
		Title:       req.Title,
		Description: req.Description,
		RoomType:    req.RoomType,
		Questions:   req.Questions,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "template": t})
}

func (h *Handler) listTemplates(c *gin.Context) {
	items, err := h.templates.List(c.Request.Context(), auth.UserDBID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "templates": items})
}

func (h *Handler) getTemplate(c *gin.Context) {
	t, err := h.templates.Get(c.Request.Context(), auth.UserDBID(c), c.Param("template_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "template": t})
}

func (h *Handler) updateTemplate(c *gin.Context) {
	var req templateReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	t, err := h.templates.Update(c.Request.Context(), auth.UserDBID(c), c.Param("template_id"), service.TemplateInput{
		Title:       req.Title,
		Description: req.Description,
		RoomType:    req.RoomType,
		Questions:   req.Questions,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "template": t})
}

func (h *Handler) deleteTemplate(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), auth.UserDBID(c), c.Param("template_id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) syncTemplate(c *gin.Context) {
	var req syncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	report, err := h.sync.SyncTemplate(c.Request.Context(), auth.UserDBID(c), c.Param("template_id"), domain.SyncMode(req.Mode))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "report": report})
}

func (h *Handler) syncReport(c *gin.Context) {
	report, err := h.sync.LastReport(c.Request.Context(), auth.UserDBID(c), c.Param("template_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "no sync report retained"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "report": report})
}

func (h *Handler) assignTemplate(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TemplateID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	inst, err := h.instances.AssignOrUpdateTemplate(c.Request.Context(), auth.UserDBID(c), c.Param("public_id"), req.TemplateID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "instance": inst})
}

func (h *Handler) getInstance(c *gin.Context) {
	view, err := h.instances.GetInstance(c.Request.Context(), auth.UserDBID(c), c.Param("public_id"), c.Param("instance_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "instance": view.Instance, "resolved_answers": view.ResolvedAnswers})
}

func (h *Handler) editInstance(c *gin.Context) {
	var req editInstanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	inst, err := h.instances.EditInstance(c.Request.Context(), auth.UserDBID(c), c.Param("public_id"), c.Param("instance_id"), domain.InstancePatch{
		Title:       req.Title,
		Description: req.Description,
		RoomType:    req.RoomType,
		Questions:   req.Questions,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "instance": inst})
}

func (h *Handler) removeInstance(c *gin.Context) {
	if err := h.instances.RemoveInstance(c.Request.Context(), auth.UserDBID(c), c.Param("public_id"), c.Param("instance_id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) saveAnswers(c *gin.Context) {
	var req saveAnswersReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	inst, err := h.instances.SaveAnswers(c.Request.Context(), auth.UserDBID(c), c.Param("public_id"), c.Param("instance_id"), req.Answers)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "instance": inst})
}

// fail maps domain sentinels to status codes. Ownership failures read as
// not-found so callers cannot probe for other designers' resources.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrInstanceNotFound),
		errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrInvalidSyncMode):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}
