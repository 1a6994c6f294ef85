package backend

import (
	"context"
	"net/http"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// UsersAPI — группы /users и /roles (только администратор).
type UsersAPI struct {
	c *Client
}

// List возвращает всех пользователей.
func (u *UsersAPI) List(ctx context.Context) ([]model.UserProfile, error) {
	var users []model.UserProfile
	err := u.c.do(ctx, request{
		group:  "users",
		op:     "users.list",
		method: http.MethodGet,
		path:   "/users",
	}, &users)
	return users, err
}

// Get возвращает пользователя по ID.
func (u *UsersAPI) Get(ctx context.Context, id int) (*model.UserProfile, error) {
	var user model.UserProfile
	err := u.c.do(ctx, request{
		group:  "users",
		op:     "users.get",
		method: http.MethodGet,
		path:   idPath("/users", id),
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRole назначает пользователю роль.
func (u *UsersAPI) UpdateRole(ctx context.Context, id, roleID int) (*model.UserProfile, error) {
	var user model.UserProfile
	err := u.c.do(ctx, request{
		group:  "users",
		op:     "users.update_role",
		method: http.MethodPut,
		path:   idPath("/users", id, "/role"),
		body:   map[string]int{"role_id": roleID},
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateStatus активирует или деактивирует пользователя.
func (u *UsersAPI) UpdateStatus(ctx context.Context, id int, active bool) (*model.UserProfile, error) {
	var user model.UserProfile
	err := u.c.do(ctx, request{
		group:  "users",
		op:     "users.update_status",
		method: http.MethodPut,
		path:   idPath("/users", id, "/status"),
		body:   map[string]bool{"is_active": active},
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRoles возвращает справочник ролей.
func (u *UsersAPI) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := u.c.do(ctx, request{
		group:  "users",
		op:     "roles.list",
		method: http.MethodGet,
		path:   "/roles",
	}, &roles)
	return roles, err
}

// CreateRole создаёт роль.
func (u *UsersAPI) CreateRole(ctx context.Context, in *model.NewRole) (*model.Role, error) {
	var role model.Role
	err := u.c.do(ctx, request{
		group:  "users",
		op:     "roles.create",
		method: http.MethodPost,
		path:   "/roles",
		body:   in,
	}, &role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}
