package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/config"
	"github.com/rinawarp/downloads/internal/database"
)

type HealthService struct {
	config *config.Config
	logger *logrus.Logger
	db     *database.Database
}

type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    map[string]string `json:"services"`
	Critical    []string          `json:"critical_failures,omitempty"`
	NonCritical []string          `json:"non_critical_failures,omitempty"`
}

func NewHealthService(cfg *config.Config, logger *logrus.Logger, db *database.Database) *HealthService {
	return &HealthService{
		config: cfg,
		logger: logger,
		db:     db,
	}
}

// CheckHealth pings each external store. Postgres and the object store are
// critical: without them no download can be authorized or served. Redis is
// non-critical because the rate limiter fails open.
func (s *HealthService) CheckHealth() *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Services:  make(map[string]string),
	}

	criticalServices := map[string]func() error{
		"postgresql":     s.checkPostgreSQL,
		"object_storage": s.checkObjectStorage,
	}

	nonCriticalServices := map[string]func() error{
		"redis": s.checkRedis,
	}

	allCriticalHealthy := true
	for name, checkFunc := range criticalServices {
		if err := checkFunc(); err != nil {
			status.Services[name] = "unhealthy"
			status.Critical = append(status.Critical, name)
			allCriticalHealthy = false
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", name)
		} else {
			status.Services[name] = "healthy"
		}
	}

	allNonCriticalHealthy := true
	for name, checkFunc := range nonCriticalServices {
		if err := checkFunc(); err != nil {
			status.Services[name] = "unhealthy"
			status.NonCritical = append(status.NonCritical, name)
			allNonCriticalHealthy = false
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", name)
		} else {
			status.Services[name] = "healthy"
		}
	}

	switch {
	case allCriticalHealthy && allNonCriticalHealthy:
		status.Status = "healthy"
	case allCriticalHealthy:
		status.Status = "degraded"
	default:
		status.Status = "unhealthy"
	}

	return status
}

func (s *HealthService) checkPostgreSQL() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.PG.Ping(ctx)
}

func (s *HealthService) checkRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Redis.Ping(ctx).Err()
}

func (s *HealthService) checkObjectStorage() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := s.db.Minio.BucketExists(ctx, s.db.Bucket)
	if err != nil {
		return err
	}
	if !exists {
		return ErrObjectNotFound
	}
	return nil
}
