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

// callbackHandler receives the fiat provider's webhooks. The provider
// retries non-2xx responses, so every processed callback answers 200; a
// failure here is our problem to reconcile, not the provider's to retry
// into a duplicate settlement.
type callbackHandler struct {
	onRampService  *services.OnRampService
	offRampService *services.OffRampService
}

func newCallbackHandler(on *services.OnRampService, off *services.OffRampService) *callbackHandler {
	return &callbackHandler{
		onRampService:  on,
		offRampService: off,
	}
}

// registerCallbackRoutes registers the provider webhook routes.
func registerCallbackRoutes(rg *gin.RouterGroup, on *services.OnRampService, off *services.OffRampService) {
	h := newCallbackHandler(on, off)

	rg.POST("/onramp", h.onRampCallback)
	rg.POST("/offramp", h.offRampCallback)
}

func (h *callbackHandler) onRampCallback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var callback dto.TransactionCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		logger.Warn("Malformed onramp callback payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback payload"})
		return
	}

	if err := h.onRampService.HandleCallback(c.Request.Context(), callback); err != nil {
		logCallbackOutcome(logger, "onramp", callback.TransactionCode, err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *callbackHandler) offRampCallback(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var callback dto.TransactionCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		logger.Warn("Malformed offramp callback payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback payload"})
		return
	}

	if err := h.offRampService.HandleDisburseCallback(c.Request.Context(), callback); err != nil {
		logCallbackOutcome(logger, "offramp", callback.TransactionCode, err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func logCallbackOutcome(logger *slog.Logger, direction, code string, err error) {
	if errors.Is(err, apperrors.ErrDoubleSubmission) {
		logger.Warn("Dropped duplicate or unknown callback",
			slog.String("direction", direction),
			slog.String("transaction_code", code))
		return
	}
	logger.Error("Callback processing failed",
		slog.String("direction", direction),
		slog.String("transaction_code", code),
		slog.String("error", err.Error()))
}
