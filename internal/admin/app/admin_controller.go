package app

import (
	"context"
	"slices"
	"strings"
	"sync"

	"edu_social_client/internal/admin/domain"
	"edu_social_client/internal/admin/repository"
	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"
	"edu_social_client/pkg/password"
	"edu_social_client/pkg/token"

	"go.uber.org/zap"
)

// ViewUsers change hook name of the user management page
const ViewUsers = "users"

// Identity current session user
type Identity interface {
	UserID() string
	HasRole(role token.RoleType) bool
}

// AdminController 管理員用戶管理
type AdminController struct {
	repo     repository.AdminRepository
	identity Identity
	onChange func(view string)

	mu    sync.Mutex
	users []domain.User
}

// NewAdminController create AdminController, onChange may be nil
func NewAdminController(repo repository.AdminRepository, identity Identity, onChange func(view string)) *AdminController {
	return &AdminController{repo: repo, identity: identity, onChange: onChange}
}

func (c *AdminController) requireAdmin(op string) error {
	if c.identity.HasRole(token.RoleAdmin) {
		return nil
	}
	logger.Log.Warn("admin operation refused", zap.String("op", op), zap.String("user_id", c.identity.UserID()))
	return errprocess.ErrForbidden
}

func (c *AdminController) changed() {
	if c.onChange != nil {
		c.onChange(ViewUsers)
	}
}

// LoadUsers replace the held user list
func (c *AdminController) LoadUsers(ctx context.Context) error {
	if err := c.requireAdmin("list users"); err != nil {
		return err
	}
	users, err := c.repo.ListUsers(ctx)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "list users", err)
	}
	c.mu.Lock()
	c.users = users
	c.mu.Unlock()
	c.changed()
	return nil
}

// AssignRole grant role to userID, the held copy gets the role appended
func (c *AdminController) AssignRole(ctx context.Context, userID, role string) error {
	if err := c.requireAdmin("assign role"); err != nil {
		return err
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return errprocess.Validation("invalid role " + role)
	}
	if err := c.repo.AssignRole(ctx, userID, string(r)); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "assign role", err)
	}
	c.mu.Lock()
	for i := range c.users {
		if c.users[i].ID == userID && !c.users[i].HasRole(r) {
			c.users[i].Roles = append(c.users[i].Roles, string(r))
		}
	}
	c.mu.Unlock()
	c.changed()
	return nil
}

// DeleteUser delete userID, removed locally on success
func (c *AdminController) DeleteUser(ctx context.Context, userID string) error {
	if err := c.requireAdmin("delete user"); err != nil {
		return err
	}
	if userID == c.identity.UserID() {
		return errprocess.Validation("cannot delete the current user")
	}
	if err := c.repo.DeleteUser(ctx, userID); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "delete user", err)
	}
	c.mu.Lock()
	c.users = slices.DeleteFunc(c.users, func(u domain.User) bool { return u.ID == userID })
	c.mu.Unlock()
	c.changed()
	return nil
}

// CreateUser create an account and append it
func (c *AdminController) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	if err := c.requireAdmin("create user"); err != nil {
		return domain.User{}, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" {
		return domain.User{}, errprocess.Validation("username and email are required")
	}
	if req.Password != "" {
		if err := password.ValidateStrength(req.Password); err != nil {
			return domain.User{}, errprocess.Validation(err.Error())
		}
	}
	if req.Role != "" {
		r, ok := domain.ParseRole(req.Role)
		if !ok {
			return domain.User{}, errprocess.Validation("invalid role " + req.Role)
		}
		req.Role = string(r)
	}
	u, err := c.repo.CreateUser(ctx, req)
	if err != nil {
		return domain.User{}, errprocess.Wrap(errprocess.ErrNetwork, "create user", err)
	}
	if u.Username == "" {
		u = domain.User{Username: req.Username, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}
		if req.Role != "" {
			u.Roles = []string{req.Role}
		}
	}
	c.mu.Lock()
	c.users = append(c.users, u)
	c.mu.Unlock()
	c.changed()
	return u, nil
}

// Users copy of the held list
func (c *AdminController) Users() []domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.users)
}
