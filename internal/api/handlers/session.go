package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"uirecorder/internal/models"
	"uirecorder/internal/session"
	"uirecorder/pkg/response"
)

func (h *Handler) ListSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessions, err := h.sessions.List(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	response.Success(c, sessions)
}

func (h *Handler) GetSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	detail, err := h.sessions.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "session deleted", nil)
}

type textRequest struct {
	Value string `json:"value" binding:"max=1000"`
}

// UpdateSession returns a handler that sets one text field of a session.
func (h *Handler) UpdateSession(field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		ctx, id := c.Request.Context(), c.Param("id")
		var (
			sess *models.Session
			err  error
		)
		switch field {
		case "name":
			sess, err = h.sessions.Rename(ctx, userID, id, req.Value)
		case "description":
			sess, err = h.sessions.UpdateDescription(ctx, userID, id, req.Value)
		case "precondition":
			sess, err = h.sessions.UpdatePrecondition(ctx, userID, id, req.Value)
		default:
			err = fmt.Errorf("unknown session field %q", field)
		}
		if err != nil {
			h.fail(c, err)
			return
		}
		response.Success(c, sess)
	}
}

type stepUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

func (h *Handler) UpdateStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	step, ok := stepParam(c)
	if !ok {
		return
	}
	var req stepUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	_, err := h.sessions.UpdateStep(c.Request.Context(), userID, c.Param("id"), step, session.StepField(req.Field), req.Value)
	h.respondDetail(c, userID, err)
}

func (h *Handler) DeleteStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	step, ok := stepParam(c)
	if !ok {
		return
	}
	_, err := h.sessions.DeleteStep(c.Request.Context(), userID, c.Param("id"), step)
	h.respondDetail(c, userID, err)
}

type insertStepRequest struct {
	After  int                 `json:"after"`
	Record models.ActionRecord `json:"record"`
}

func (h *Handler) InsertStep(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req insertStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Record.Action != "" && !req.Record.Action.Valid() {
		response.BadRequest(c, "unknown action: "+string(req.Record.Action))
		return
	}
	_, err := h.sessions.InsertStep(c.Request.Context(), userID, c.Param("id"), req.After, req.Record)
	h.respondDetail(c, userID, err)
}

// respondDetail answers a step edit with the updated session and steps.
func (h *Handler) respondDetail(c *gin.Context, userID uint, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	detail, err := h.sessions.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, detail)
}

// ExportSession downloads a session with its steps as JSON or YAML.
func (h *Handler) ExportSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	detail, err := h.sessions.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	export := exportFrom(detail)
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	switch format {
	case "json":
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, detail.ID))
		c.JSON(200, export)
	case "yaml", "yml":
		out, err := yaml.Marshal(export)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.yaml"`, detail.ID))
		c.Data(200, "application/yaml", out)
	default:
		response.BadRequest(c, "format must be json or yaml")
	}
}

type sessionExport struct {
	Name         string                `json:"name" yaml:"name"`
	Description  string                `json:"description,omitempty" yaml:"description,omitempty"`
	Precondition string                `json:"precondition,omitempty" yaml:"precondition,omitempty"`
	URL          string                `json:"url" yaml:"url"`
	Device       string                `json:"device,omitempty" yaml:"device,omitempty"`
	Language     string                `json:"language" yaml:"language"`
	Steps        []models.ActionRecord `json:"steps" yaml:"steps"`
}

func exportFrom(d *models.SessionDetail) sessionExport {
	return sessionExport{
		Name:         d.Name,
		Description:  d.Description,
		Precondition: d.Precondition,
		URL:          d.URL,
		Device:       d.Device,
		Language:     d.Language,
		Steps:        d.Steps,
	}
}
