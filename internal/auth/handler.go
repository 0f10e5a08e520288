// Package auth exposes the registration and login endpoints for users and
// admins. Credential checks live in the users and admins services; this
// package only handles the HTTP surface.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mercato-app/mercato/internal/admins"
	"github.com/mercato-app/mercato/internal/platform/httpx"
	"github.com/mercato-app/mercato/internal/users"
)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginResponse carries the issued token at the envelope's top level.
type loginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

// Handler serves registration and login.
type Handler struct {
	logger    *slog.Logger
	users     *users.Service
	admins    *admins.Service
	validator *validator.Validate
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, users *users.Service, admins *admins.Service) *Handler {
	return &Handler{
		logger:    logger,
		users:     users,
		admins:    admins,
		validator: validator.New(),
	}
}

// MountRoutes registers the public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/users/register", h.register)
	r.Post("/users/login", h.loginUser)
	r.Post("/admins/login", h.loginAdmin)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Invalid request payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.FailValidation(err))
		return
	}
	if err := h.users.Register(r.Context(), req); err != nil {
		h.logger.Warn("registration rejected", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Registration successful")
}

func (h *Handler) loginUser(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.users.Login)
}

func (h *Handler) loginAdmin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.admins.Login)
}

type authenticateFunc func(ctx context.Context, email, password string) (string, error)

func (h *Handler) login(w http.ResponseWriter, r *http.Request, authenticate authenticateFunc) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, httpx.Fail(httpx.ErrValidation, "Invalid request payload"))
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, httpx.FailValidation(err))
		return
	}
	token, err := authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		Success:     true,
		Message:     "Login successful",
		AccessToken: token,
	})
}
