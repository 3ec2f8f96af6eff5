package handlers

import (
	"github.com/gin-gonic/gin"

	"uirecorder/internal/session"
	"uirecorder/pkg/chrome"
	"uirecorder/pkg/response"
)

type startRequest struct {
	Name   string `json:"name" binding:"max=200"`
	URL    string `json:"url" binding:"required"`
	Device string `json:"device"`
}

// StartRecording opens a browser on the requested page and starts a new
// session recording into it.
func (h *Handler) StartRecording(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if _, known := chrome.LookupDevice(req.Device); !known {
		response.BadRequest(c, "unknown device: "+req.Device)
		return
	}

	sess, err := h.sessions.Start(c.Request.Context(), userID, session.StartRequest{
		Name:   req.Name,
		URL:    req.URL,
		Device: req.Device,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "recording started", sess)
}

func (h *Handler) StopRecording(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sess, err := h.sessions.Stop(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "recording stopped", sess)
}

func (h *Handler) GetRecordingState(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	response.Success(c, h.sessions.State(userID))
}

type highlightRequest struct {
	Locator string `json:"locator" binding:"required"`
}

// Highlight outlines the element a locator resolves to in the live page.
func (h *Handler) Highlight(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	found, err := h.sessions.Highlight(c.Request.Context(), userID, c.Param("id"), req.Locator)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"found": found})
}

// RecordingWebSocket streams the records of one of the caller's sessions.
func (h *Handler) RecordingWebSocket(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, err := h.sessions.Get(c.Request.Context(), userID, id); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.stream.ServeWS(c.Writer, c.Request, id); err != nil {
		h.log.WithError(err).WithField("session", id).Warn("websocket upgrade failed")
	}
}
