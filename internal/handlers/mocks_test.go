package handlers

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rinawarp/downloads/pkg/models"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(customerID string) (string, time.Time, error) {
	args := m.Called(customerID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) Verify(token string, now time.Time) (models.DownloadClaims, error) {
	args := m.Called(token, now)
	return args.Get(0).(models.DownloadClaims), args.Error(1)
}

type MockEntitlementService struct {
	mock.Mock
}

func (m *MockEntitlementService) Check(ctx context.Context, customerID string) (*models.Entitlement, error) {
	args := m.Called(ctx, customerID)
	ent, _ := args.Get(0).(*models.Entitlement)
	return ent, args.Error(1)
}

type MockInstallerStore struct {
	mock.Mock
}

func (m *MockInstallerStore) CanonicalKey(filename string) string {
	args := m.Called(filename)
	return args.String(0)
}

func (m *MockInstallerStore) Platform(filename string) string {
	args := m.Called(filename)
	return args.String(0)
}

func (m *MockInstallerStore) Fetch(ctx context.Context, key string) (io.ReadCloser, models.ObjectInfo, error) {
	args := m.Called(ctx, key)
	reader, _ := args.Get(0).(io.ReadCloser)
	return reader, args.Get(1).(models.ObjectInfo), args.Error(2)
}

func (m *MockInstallerStore) FetchVerification(ctx context.Context, filename string) (io.ReadCloser, models.ObjectInfo, error) {
	args := m.Called(ctx, filename)
	reader, _ := args.Get(0).(io.ReadCloser)
	return reader, args.Get(1).(models.ObjectInfo), args.Error(2)
}
