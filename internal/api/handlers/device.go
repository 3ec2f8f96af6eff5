package handlers

import (
	"github.com/gin-gonic/gin"

	"uirecorder/pkg/chrome"
	"uirecorder/pkg/response"
)

type deviceView struct {
	Name      string `json:"name"`
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	Mobile    bool   `json:"mobile"`
	UserAgent string `json:"user_agent"`
	IsDefault bool   `json:"is_default"`
}

// GetDevices lists the emulation presets a recording can be started with.
func (h *Handler) GetDevices(c *gin.Context) {
	names := chrome.DeviceNames()
	devices := make([]deviceView, 0, len(names))
	for _, name := range names {
		info, _ := chrome.LookupDevice(name)
		devices = append(devices, deviceView{
			Name:      name,
			Width:     info.Width,
			Height:    info.Height,
			Mobile:    info.Mobile,
			UserAgent: info.UserAgent,
			IsDefault: name == chrome.DefaultDevice,
		})
	}
	response.Success(c, devices)
}
