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

// onRampHandler handles HTTP requests for the fiat-in / crypto-out flow.
type onRampHandler struct {
	onRampService *services.OnRampService
}

func newOnRampHandler(os *services.OnRampService) *onRampHandler {
	return &onRampHandler{onRampService: os}
}

// registerOnRampRoutes registers routes related to on-ramp requests.
func registerOnRampRoutes(rg *gin.RouterGroup, onRampService *services.OnRampService) {
	h := newOnRampHandler(onRampService)

	onramp := rg.Group("/onramp")
	{
		onramp.POST("", h.createRequest)
		onramp.GET("/:id", h.getRequest)
	}
}

func (h *onRampHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateOnRampRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateOnRamp", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	request, err := h.onRampService.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrMalformedAmount), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRouteNotSupported):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrRailRejected):
			logger.Warn("Fiat provider rejected collection", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider rejected the collection"})
		default:
			logger.Error("Failed to create onramp request", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create onramp request"})
		}
		return
	}

	logger.Info("Onramp request created",
		slog.String("request_id", request.RequestID),
		slog.String("transaction_ref", request.TransactionRef))
	c.JSON(http.StatusCreated, dto.ToOnRampRequestResponse(*request))
}

func (h *onRampHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("id")

	request, err := h.onRampService.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		} else {
			logger.Error("Failed to get onramp request", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve request"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToOnRampRequestResponse(*request))
}
