package handlers

import (
	"regexp"

	"github.com/cradle-labs/tuma-integrator/internal/core/services"
	"github.com/cradle-labs/tuma-integrator/internal/middleware"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/cradle-labs/tuma-integrator/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

var chainAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{1,64}$`)

// RegisterCustomValidators installs the request binding validators used by
// the DTOs. Must run before the first request is bound.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("chain_address", func(fl validator.FieldLevel) bool {
			return chainAddressPattern.MatchString(fl.Field().String())
		})
	}
}

// RegisterRoutes sets up all application routes, injecting dependencies.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	svc *services.ServiceContainer,
	catalog *registry.Registry,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, svc, catalog)
	setupCallbackRoutes(r, cfg, svc)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(r *gin.Engine, svc *services.ServiceContainer, catalog *registry.Registry) {
	v1 := r.Group("/api/v1")

	registerCatalogRoutes(v1, catalog)
	registerAccountRoutes(v1, svc.Accounts)
	registerOnRampRoutes(v1, svc.OnRamp)
	registerOffRampRoutes(v1, svc.OffRamp)
	registerLedgerRoutes(v1, svc.Ledger)
	registerSettingsRoutes(v1, svc.Settings)
}

// setupCallbackRoutes configures the webhook group. Callbacks come from the
// public internet, so the group is rate limited per client IP.
func setupCallbackRoutes(r *gin.Engine, cfg *config.Config, svc *services.ServiceContainer) {
	rate, _ := limiter.NewRateFromFormatted(cfg.WebhookRateLimit)
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)

	callbacks := r.Group("/callbacks", middleware.RateLimit(ipLimiter))
	registerCallbackRoutes(callbacks, svc.OnRamp, svc.OffRamp)
}
