package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ryanbastic/noteboard/internal/auth"
)

// --- Huma Input/Output types ---

type CredentialsBody struct {
	Name   string `json:"name" doc:"Account name" required:"true" minLength:"1"`
	Secret string `json:"secret" doc:"Account secret" required:"true" minLength:"1"`
}

type AuthInput struct {
	Body CredentialsBody
}

type AuthResponse struct {
	AccountName string `json:"account_name" doc:"Authenticated account name"`
}

type AuthOutput struct {
	Body AuthResponse
}

// --- Handler ---

type AuthHandler struct {
	directory *auth.Directory
	logger    *slog.Logger
}

func NewAuthHandler(directory *auth.Directory, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{directory: directory, logger: logger}
}

func registerAuthRoutes(api huma.API, h *AuthHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/v1/auth/login",
		Summary:     "Log in to an existing account",
		Tags:        []string{"auth"},
	}, h.Login)

	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/v1/auth/register",
		Summary:       "Register a new account",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusCreated,
	}, h.Register)
}

func (h *AuthHandler) Login(ctx context.Context, input *AuthInput) (*AuthOutput, error) {
	name, err := h.directory.Login(ctx, input.Body.Name, input.Body.Secret)
	if err != nil {
		var ae *auth.AuthError
		if errors.As(err, &ae) {
			return nil, huma.Error401Unauthorized(string(ae.Reason))
		}
		h.logger.Error("login failed", "name", input.Body.Name, "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}
	return &AuthOutput{Body: AuthResponse{AccountName: name}}, nil
}

func (h *AuthHandler) Register(ctx context.Context, input *AuthInput) (*AuthOutput, error) {
	name, err := h.directory.Register(ctx, input.Body.Name, input.Body.Secret)
	if err != nil {
		var ae *auth.AuthError
		if errors.As(err, &ae) {
			if ae.Reason == auth.ReasonNameTaken {
				return nil, huma.Error409Conflict(string(ae.Reason))
			}
			return nil, huma.Error422UnprocessableEntity(string(ae.Reason))
		}
		h.logger.Error("register failed", "name", input.Body.Name, "error", err)
		return nil, huma.Error500InternalServerError("register failed")
	}
	return &AuthOutput{Body: AuthResponse{AccountName: name}}, nil
}
