package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/pkg/models"
)

// DatabaseQuerier interface for database operations
type DatabaseQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// EntitlementService answers whether a customer currently holds an active
// download entitlement. It is the single source of truth for both token
// issuance and token redemption; the entitlements table itself is written
// by the external billing webhook.
type EntitlementService struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewEntitlementService(db DatabaseQuerier, logger *logrus.Logger) *EntitlementService {
	return &EntitlementService{
		db:     db,
		logger: logger,
	}
}

// Check looks up the customer's entitlement row. A missing row returns
// (nil, nil): "no row" and "inactive" deliberately collapse into the same
// caller-visible outcome so the endpoint leaks nothing about whether a
// customer exists. A non-nil error means the store itself faulted.
func (s *EntitlementService) Check(ctx context.Context, customerID string) (*models.Entitlement, error) {
	ent := models.Entitlement{CustomerID: customerID}

	err := s.db.QueryRow(ctx,
		`SELECT status, tier FROM entitlements WHERE customer_id = $1 LIMIT 1`,
		customerID,
	).Scan(&ent.Status, &ent.Tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("entitlement lookup: %w", err)
	}

	return &ent, nil
}
