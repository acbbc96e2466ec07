package repository

import (
	"context"
	"net/url"

	"edu_social_client/internal/admin/domain"
	"edu_social_client/pkg/httpclient"
)

const usersPath = "/api/admin/users"

// AdminRepository admin user management backend
type AdminRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	AssignRole(ctx context.Context, userID, role string) error
	DeleteUser(ctx context.Context, userID string) error
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error)
}

type adminRepository struct {
	client *httpclient.Client
}

// NewAdminRepository create AdminRepository over REST
func NewAdminRepository(client *httpclient.Client) AdminRepository {
	return &adminRepository{client: client}
}

func userPath(id string) string {
	return usersPath + "/" + url.PathEscape(id)
}

func (r *adminRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.client.Get(ctx, usersPath, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *adminRepository) AssignRole(ctx context.Context, userID, role string) error {
	return r.client.Post(ctx, userPath(userID)+"/role", url.Values{"role": {role}}, nil, nil)
}

func (r *adminRepository) DeleteUser(ctx context.Context, userID string) error {
	return r.client.Delete(ctx, userPath(userID), nil)
}

func (r *adminRepository) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	var u domain.User
	// the backend answers 201 with an empty body when it does not echo the user
	err := r.client.Post(ctx, usersPath, nil, req, &u)
	return u, err
}
