package tenant

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lms-platform/lms-backend/internal/db/models"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) FindWhitelabelByCustomDomain(ctx context.Context, domain string) (*models.Organization, error) {
	args := m.Called(ctx, domain)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Error(1)
}

func (m *mockLookup) FindWhitelabelBySubdomain(ctx context.Context, label string) (*models.Organization, error) {
	args := m.Called(ctx, label)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Error(1)
}

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	args := m.Called(ctx, id)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) (*models.Organization, bool, error) {
	args := m.Called(ctx, key)
	org, _ := args.Get(0).(*models.Organization)
	return org, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, org *models.Organization, ttl time.Duration) error {
	args := m.Called(ctx, key, org, ttl)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func approvedOrg(id int64, slug string) *models.Organization {
	return &models.Organization{
		ID:                id,
		Slug:              slug,
		Status:            models.OrganizationStatusApproved,
		WhitelabelEnabled: true,
	}
}
