package handlers

import (
	"github.com/gin-gonic/gin"

	"uirecorder/internal/describe"
	"uirecorder/pkg/response"
)

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

func (h *Handler) GetLanguage(c *gin.Context) {
	response.Success(c, gin.H{
		"language":  h.sessions.Language(),
		"supported": describe.Languages(),
	})
}

// SetLanguage changes the description language of new and live recordings.
// Unsupported codes fall back to the default language.
func (h *Handler) SetLanguage(c *gin.Context) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	lang, err := h.sessions.SetLanguage(c.Request.Context(), req.Language)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{"language": lang})
}
