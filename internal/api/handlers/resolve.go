package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"uirecorder/internal/capture"
	"uirecorder/internal/dom"
	"uirecorder/pkg/response"
)

// Resolve runs the locator and description engine on posted HTML without
// a browser.
func (h *Handler) Resolve(c *gin.Context) {
	var req capture.PageAction
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Language == "" {
		req.Language = h.sessions.Language()
	}

	rec, err := capture.DescribePage(req, h.log)
	switch {
	case err == nil:
		response.Success(c, rec)
	case errors.Is(err, capture.ErrTargetNotFound), errors.Is(err, dom.ErrNoTarget):
		response.NotFound(c, err.Error())
	default:
		response.BadRequest(c, err.Error())
	}
}
