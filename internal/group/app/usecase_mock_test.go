package app

import (
	"context"
	"slices"

	"edu_social_client/internal/group/domain"
	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/token"

	"github.com/stretchr/testify/mock"
)

// MockGroupRepository Mock GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) CreateGroup(ctx context.Context, req domain.CreateGroupRequest) (domain.Group, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Group), args.Error(1)
}

func (m *MockGroupRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupRepository) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupRepository) GetGroup(ctx context.Context, id int64) (domain.Group, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Group), args.Error(1)
}

func (m *MockGroupRepository) UpdateGroup(ctx context.Context, id int64, req domain.CreateGroupRequest) (domain.Group, error) {
	args := m.Called(ctx, id, req)
	return args.Get(0).(domain.Group), args.Error(1)
}

func (m *MockGroupRepository) DeleteGroup(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGroupRepository) ArchiveGroup(ctx context.Context, id int64) (domain.Group, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Group), args.Error(1)
}

func (m *MockGroupRepository) SearchGroups(ctx context.Context, req domain.SearchRequest) ([]domain.Group, error) {
	args := m.Called(ctx, req)
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupRepository) AddMember(ctx context.Context, groupID int64, req domain.AddMemberRequest) (domain.Member, error) {
	args := m.Called(ctx, groupID, req)
	return args.Get(0).(domain.Member), args.Error(1)
}

func (m *MockGroupRepository) ListMembers(ctx context.Context, groupID int64) ([]domain.Member, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).([]domain.Member), args.Error(1)
}

func (m *MockGroupRepository) RemoveMember(ctx context.Context, groupID int64, userID string) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *MockGroupRepository) MakeCoAdmin(ctx context.Context, groupID int64, userID string) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *MockGroupRepository) CreatePost(ctx context.Context, groupID int64, req domain.CreatePostRequest) (domain.Post, error) {
	args := m.Called(ctx, groupID, req)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockGroupRepository) UploadFile(ctx context.Context, groupID int64, fileName string, data []byte, content string) (domain.Post, error) {
	args := m.Called(ctx, groupID, fileName, data, content)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockGroupRepository) ListPosts(ctx context.Context, groupID int64) ([]domain.Post, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *MockGroupRepository) DownloadFile(ctx context.Context, groupID, postID int64) ([]byte, error) {
	args := m.Called(ctx, groupID, postID)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockGroupRepository) DeletePost(ctx context.Context, groupID, postID int64) error {
	return m.Called(ctx, groupID, postID).Error(0)
}

func (m *MockGroupRepository) Statistics(ctx context.Context) (domain.Statistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Statistics), args.Error(1)
}

func (m *MockGroupRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

type fakeIdentity struct {
	id    string
	roles []token.RoleType
}

func (f fakeIdentity) UserID() string { return f.id }

func (f fakeIdentity) RequireUser() (string, error) {
	if f.id == "" {
		return "", errprocess.ErrSession
	}
	return f.id, nil
}

func (f fakeIdentity) HasRole(role token.RoleType) bool {
	return slices.Contains(f.roles, role)
}
