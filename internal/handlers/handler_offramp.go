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

// offRampHandler handles HTTP requests for the crypto-in / fiat-out flow.
type offRampHandler struct {
	offRampService *services.OffRampService
}

func newOffRampHandler(os *services.OffRampService) *offRampHandler {
	return &offRampHandler{offRampService: os}
}

// registerOffRampRoutes registers routes related to payment sessions.
func registerOffRampRoutes(rg *gin.RouterGroup, offRampService *services.OffRampService) {
	h := newOffRampHandler(offRampService)

	sessions := rg.Group("/offramp/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:id", h.getSession)
		sessions.POST("/:id/settle", h.settleSession)
	}
}

func (h *offRampHandler) createSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	session, err := h.offRampService.CreateSession(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create session", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		}
		return
	}

	logger.Info("Payment session created", slog.String("session_id", session.SessionID))
	c.JSON(http.StatusCreated, dto.ToPaymentSessionResponse(*session))
}

func (h *offRampHandler) getSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("id")

	session, err := h.offRampService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			logger.Error("Failed to get session", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve session"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentSessionResponse(*session))
}

func (h *offRampHandler) settleSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("id")

	var req dto.SettleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SettleSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	session, err := h.offRampService.Settle(c.Request.Context(), sessionID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDoubleSubmission):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrMalformedAmount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRouteNotSupported):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRailRejected):
			logger.Warn("Fiat provider rejected disbursement", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider rejected the disbursement"})
		default:
			logger.Error("Failed to settle session", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to settle session"})
		}
		return
	}

	logger.Info("Session settled", slog.String("session_id", sessionID))
	c.JSON(http.StatusOK, dto.ToPaymentSessionResponse(*session))
}
