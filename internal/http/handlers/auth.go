package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/budget-be/internal/auth"
	"github.com/hongminglow/budget-be/internal/http/respond"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/models/dto"
)

// Registrar creates accounts.
type Registrar interface {
	AddAccount(ctx context.Context, req *dto.RegistrationRequest) (models.User, error)
}

// Authenticator checks credentials and issues tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, creds auth.Credentials) (auth.Token, error)
}

// AuthHandler owns the register/login endpoints.
type AuthHandler struct {
	accounts Registrar
	authn    Authenticator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts Registrar, authn Authenticator) *AuthHandler {
	return &AuthHandler{accounts: accounts, authn: authn}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req *dto.RegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Failure(w, r, err)
		return
	}
	if req != nil {
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
	}
	if err := validateStruct(req); err != nil {
		respond.Failure(w, r, err)
		return
	}

	created, err := h.accounts.AddAccount(r.Context(), req)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Failure(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(&req); err != nil {
		respond.Failure(w, r, err)
		return
	}

	tok, err := h.authn.Authenticate(r.Context(), auth.Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: tok.Token, User: tok.User})
}
