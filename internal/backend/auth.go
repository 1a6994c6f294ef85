package backend

import (
	"context"
	"net/http"

	"github.com/bigkaa/carreserve/web-module/internal/domain/model"
)

// LoginResponse — ответ POST /auth/login.
type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	User        model.UserProfile `json:"user"`
}

// AuthAPI — группа /auth.
type AuthAPI struct {
	c *Client
}

// Login выполняет вход по intranet ID (mock SSO на стороне backend).
func (a *AuthAPI) Login(ctx context.Context, intranetID string) (*LoginResponse, error) {
	var resp LoginResponse
	err := a.c.do(ctx, request{
		group:  "auth",
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"intranet_id": intranetID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me возвращает профиль владельца токена из context.
func (a *AuthAPI) Me(ctx context.Context) (*model.UserProfile, error) {
	var user model.UserProfile
	err := a.c.do(ctx, request{
		group:  "auth",
		op:     "auth.me",
		method: http.MethodGet,
		path:   "/auth/me",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout сообщает backend о выходе. Токен backend не отзывает.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.do(ctx, request{
		group:  "auth",
		op:     "auth.logout",
		method: http.MethodPost,
		path:   "/auth/logout",
	}, nil)
}
