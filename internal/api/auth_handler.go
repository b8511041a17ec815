package api

import (
	"context"
	"net/http"

	"github.com/example/lablink/internal/application"
)

type authService interface {
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	Register(ctx context.Context, params application.RegisterParams) (application.User, error)
	Logout(ctx context.Context, token string) error
}

// UserDTO is the public user summary.
type UserDTO struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
}

// TokenDTO is returned by a successful login.
type TokenDTO struct {
	AccessToken string `json:"access_token" yaml:"access_token"`
}

func toUserDTO(u application.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}

// AuthHandler serves login, logout, registration and the current user.
type AuthHandler struct {
	service authService
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login accepts {email|username, password}.
func (h *AuthHandler) Login(ctx context.Context, call *Call) (Response, error) {
	result, err := h.service.Login(ctx, application.LoginParams{
		Email:    call.Fields.String("email", "username"),
		Password: call.Fields.Raw("password"),
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: TokenDTO{AccessToken: result.Token}}, nil
}

func (h *AuthHandler) Logout(ctx context.Context, call *Call) (Response, error) {
	if err := h.service.Logout(ctx, call.Token); err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusNoContent}, nil
}

func (h *AuthHandler) Register(ctx context.Context, call *Call) (Response, error) {
	user, err := h.service.Register(ctx, application.RegisterParams{
		Email:    call.Fields.String("email"),
		Password: call.Fields.Raw("password"),
		Name:     call.Fields.String("name"),
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusCreated, Body: toUserDTO(user)}, nil
}

// Me returns the user admitted by the session gate.
func (h *AuthHandler) Me(ctx context.Context, call *Call) (Response, error) {
	return Response{Status: http.StatusOK, Body: toUserDTO(call.User)}, nil
}
