package app

import (
	"context"
	"slices"

	"edu_social_client/internal/admin/domain"
	"edu_social_client/pkg/token"

	"github.com/stretchr/testify/mock"
)

// MockAdminRepository Mock AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAdminRepository) AssignRole(ctx context.Context, userID, role string) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockAdminRepository) DeleteUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAdminRepository) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.User), args.Error(1)
}

type fakeIdentity struct {
	id    string
	roles []token.RoleType
}

func (f fakeIdentity) UserID() string { return f.id }

func (f fakeIdentity) HasRole(role token.RoleType) bool { return slices.Contains(f.roles, role) }
