package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cradle-labs/tuma-integrator/internal/apperrors"
	"github.com/cradle-labs/tuma-integrator/internal/core/services"
	"github.com/cradle-labs/tuma-integrator/internal/dto"
	"github.com/cradle-labs/tuma-integrator/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settingsHandler exposes the operational key-value store.
type settingsHandler struct {
	settingsService *services.SettingsService
}

func newSettingsHandler(ss *services.SettingsService) *settingsHandler {
	return &settingsHandler{settingsService: ss}
}

// registerSettingsRoutes registers routes for operational settings.
func registerSettingsRoutes(rg *gin.RouterGroup, settingsService *services.SettingsService) {
	h := newSettingsHandler(settingsService)

	settings := rg.Group("/ops/settings")
	{
		settings.PUT("/:key", h.setSetting)
		settings.GET("/:key", h.getSetting)
		settings.DELETE("/:key", h.deleteSetting)
	}
}

func (h *settingsHandler) setSetting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key := c.Param("key")

	var req dto.SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetSetting", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.settingsService.Set(c.Request.Context(), key, req.Value); err != nil {
		logger.Error("Failed to set setting", slog.String("key", key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set setting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

func (h *settingsHandler) getSetting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key := c.Param("key")

	pair, err := h.settingsService.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
		} else {
			logger.Error("Failed to get setting", slog.String("key", key), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get setting"})
		}
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *settingsHandler) deleteSetting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	key := c.Param("key")

	existed, err := h.settingsService.Delete(c.Request.Context(), key)
	if err != nil {
		logger.Error("Failed to delete setting", slog.String("key", key), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete setting"})
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
