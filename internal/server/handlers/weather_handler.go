package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/service/weather"
)

// WeatherHandler exposes the Weather Pro search.
type WeatherHandler struct {
	svc    *weather.Service
	logger *zap.Logger
}

// NewWeatherHandler constructs the weather HTTP adapter.
func NewWeatherHandler(svc *weather.Service, logger *zap.Logger) *WeatherHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherHandler{svc: svc, logger: logger}
}

// Search looks up ?city=.
func (h *WeatherHandler) Search(c *gin.Context) {
	data, err := h.svc.Search(c.Request.Context(), c.Query("city"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// Current returns the display record, or 204 before any successful search.
func (h *WeatherHandler) Current(c *gin.Context) {
	current := h.svc.Current()
	if current == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, current)
}

// Logs returns the rolling search log.
func (h *WeatherHandler) Logs(c *gin.Context) {
	logs, err := h.svc.Logs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(logs), "logs": logs})
}
