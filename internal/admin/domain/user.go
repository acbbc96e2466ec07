package domain

import (
	"slices"
	"strings"

	"edu_social_client/pkg/token"
)

// User platform account as seen by an administrator
type User struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// HasRole case-insensitive role check
func (u User) HasRole(role token.RoleType) bool {
	return slices.ContainsFunc(u.Roles, func(r string) bool {
		return strings.EqualFold(r, string(role))
	})
}

// CreateUserRequest POST /api/admin/users body
type CreateUserRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty"`
}

// AssignableRoles roles an administrator may grant
var AssignableRoles = []token.RoleType{token.RoleStudent, token.RoleTeacher, token.RoleAdmin}

// ParseRole normalise role, false when it is not assignable
func ParseRole(role string) (token.RoleType, bool) {
	r := token.RoleType(strings.ToUpper(strings.TrimSpace(role)))
	return r, slices.Contains(AssignableRoles, r)
}
