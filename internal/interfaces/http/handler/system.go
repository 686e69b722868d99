package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicegen/backend/internal/interfaces/http/dto"
)

// SystemInfo describes the running service
type SystemInfo struct {
	Name    string
	Version string
	Engine  string
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	info      SystemInfo
	startTime time.Time
	now       func() time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(info SystemInfo) *SystemHandler {
	return &SystemHandler{
		info:      info,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// HealthResponse is the liveness probe body
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Liveness probe. Answers as long as the process serves HTTP.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Document Generator API"`
	Version   string `json:"version" example:"1.0.0"`
	Engine    string `json:"engine" example:"gofpdf"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns the service version, PDF engine and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.info.Name,
		Version:   h.info.Version,
		Engine:    h.info.Engine,
		GoVersion: runtime.Version(),
		Uptime:    h.now().Sub(h.startTime).Round(time.Second).String(),
	})
}

// NotFound answers unknown routes in the standard error format
func (h *SystemHandler) NotFound(c *gin.Context) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Route not found")
}

// MethodNotAllowed answers known routes called with the wrong method
func (h *SystemHandler) MethodNotAllowed(c *gin.Context) {
	h.Error(c, http.StatusMethodNotAllowed, dto.ErrCodeMethodNotAllowed, "Method not allowed")
}
