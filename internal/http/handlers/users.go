package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/budget-be/internal/http/respond"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/models/dto"
	"github.com/hongminglow/budget-be/internal/query"
)

// AccountDirectory is the account service consumed by the user routes.
type AccountDirectory interface {
	ListAccounts(ctx context.Context, filter *query.Predicate, page query.PageRequest) ([]models.User, error)
	GetAccount(ctx context.Context, id int64) (models.User, error)
	UpdateAccount(ctx context.Context, upd *dto.UserUpdate) (models.User, error)
	DeleteAccount(ctx context.Context, id int64) (bool, error)
}

// UserHandler serves the /users resource.
type UserHandler struct {
	accounts        AccountDirectory
	defaultPageSize int
	maxPageSize     int
}

func NewUserHandler(accounts AccountDirectory, defaultPageSize, maxPageSize int) *UserHandler {
	return &UserHandler{accounts: accounts, defaultPageSize: defaultPageSize, maxPageSize: maxPageSize}
}

// Register attaches the user routes to the router.
func (h *UserHandler) Register(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Get("/users/{id}", h.handleGet)
	r.Put("/users/{id}", h.handleUpdate)
	r.Delete("/users/{id}", h.handleDelete)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	size, err := queryInt(r, "size")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	pageReq := query.PageRequest{Page: page, Size: size}.Normalize(h.defaultPageSize, h.maxPageSize)

	users, err := h.accounts.ListAccounts(r.Context(), userFilter(r), pageReq)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", users)
}

func (h *UserHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	user, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	var upd *dto.UserUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respond.Failure(w, r, err)
		return
	}
	if upd != nil {
		upd.ID = id
	}
	if err := validateStruct(upd); err != nil {
		respond.Failure(w, r, err)
		return
	}

	user, err := h.accounts.UpdateAccount(r.Context(), upd)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	deleted, err := h.accounts.DeleteAccount(r.Context(), id)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User deleted successfully", deleted)
}

// userFilter builds a predicate from the username/email query params, or nil when neither is set.
func userFilter(r *http.Request) *query.Predicate {
	var pred *query.Predicate
	for _, field := range []string{"username", "email"} {
		v := strings.TrimSpace(r.URL.Query().Get(field))
		if v == "" {
			continue
		}
		pattern := "%" + escapeLike(v) + "%"
		if pred == nil {
			pred = query.Where(field, query.OpILike, pattern)
		} else {
			pred.And(field, query.OpILike, pattern)
		}
	}
	return pred
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
