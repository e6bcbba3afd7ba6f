package services

import (
	"github.com/rinawarp/downloads/internal/config"
	"github.com/rinawarp/downloads/internal/database"
	"github.com/rinawarp/downloads/internal/messaging"

	"github.com/sirupsen/logrus"
)

type Services struct {
	Token       *TokenService
	Entitlement *EntitlementService
	RateLimit   *RateLimitService
	Installers  *InstallerStore
	Health      *HealthService
	Metrics     *MetricsService
	Events      *messaging.EventBus
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	tokenService := NewTokenService(cfg, logger)
	entitlementService := NewEntitlementService(db.PG, logger)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis)
	installerStore := NewInstallerStore(cfg, db.Minio, logger)
	healthService := NewHealthService(cfg, logger, db)
	metricsService := NewMetricsService(logger)
	eventBus := messaging.NewEventBus(cfg, logger)

	return &Services{
		Token:       tokenService,
		Entitlement: entitlementService,
		RateLimit:   rateLimitService,
		Installers:  installerStore,
		Health:      healthService,
		Metrics:     metricsService,
		Events:      eventBus,
	}, nil
}
