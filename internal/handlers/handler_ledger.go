package handlers

import (
	"log/slog"
	"net/http"

	"github.com/cradle-labs/tuma-integrator/internal/core/services"
	"github.com/cradle-labs/tuma-integrator/internal/middleware"
	"github.com/cradle-labs/tuma-integrator/internal/models"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves read-only views of the settlement audit ledger.
type ledgerHandler struct {
	ledgerService *services.LedgerService
}

func newLedgerHandler(ls *services.LedgerService) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to the audit ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService *services.LedgerService) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("", h.listByAddress)
		ledger.GET("/method/:id", h.listByPaymentMethod)
	}
}

func (h *ledgerHandler) listByAddress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})
		return
	}

	entries, err := h.ledgerService.EntriesForAddress(c.Request.Context(), address)
	if err != nil {
		logger.Error("Failed to list ledger entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ledger entries"})
		return
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (h *ledgerHandler) listByPaymentMethod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	methodID := c.Param("id")

	entries, err := h.ledgerService.EntriesForPaymentMethod(c.Request.Context(), methodID)
	if err != nil {
		logger.Error("Failed to list ledger entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ledger entries"})
		return
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
