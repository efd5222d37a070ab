package handlers

import (
	"net/http"

	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/gin-gonic/gin"
)

// catalogHandler serves read-only views of the currency and provider
// catalog.
type catalogHandler struct {
	catalog *registry.Registry
}

func newCatalogHandler(catalog *registry.Registry) *catalogHandler {
	return &catalogHandler{catalog: catalog}
}

// registerCatalogRoutes registers routes for catalog views.
func registerCatalogRoutes(rg *gin.RouterGroup, catalog *registry.Registry) {
	h := newCatalogHandler(catalog)

	rg.GET("/currencies", h.listCurrencies)
	rg.GET("/providers", h.listProviders)
}

func (h *catalogHandler) listCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Currencies())
}

func (h *catalogHandler) listProviders(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Providers())
}
