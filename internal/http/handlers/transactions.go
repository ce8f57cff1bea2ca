package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/budget-be/internal/http/respond"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/models/dto"
)

// Ledger is the transaction service consumed by the transaction routes.
type Ledger interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error)
	ListIncome(ctx context.Context, userID int64) ([]models.Transaction, error)
	ListExpenses(ctx context.Context, userID int64) ([]models.Transaction, error)
	ListAll(ctx context.Context) ([]models.Transaction, error)
	ListAllIncome(ctx context.Context) ([]models.Transaction, error)
	ListAllExpenses(ctx context.Context) ([]models.Transaction, error)
	Get(ctx context.Context, id int64) (models.Transaction, error)
	Insert(ctx context.Context, req *dto.TransactionRequest) (models.Transaction, error)
	Update(ctx context.Context, upd *dto.TransactionUpdate) (models.Transaction, error)
	Delete(ctx context.Context, id int64) (bool, error)
	OccurrenceTypes(ctx context.Context) ([]models.OccurrenceType, error)
}

// TransactionHandler serves transactions and their occurrence types.
type TransactionHandler struct {
	ledger Ledger
}

func NewTransactionHandler(ledger Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// Register attaches the transaction routes to the router.
func (h *TransactionHandler) Register(r chi.Router) {
	r.Get("/users/{id}/transactions", h.byUser(h.ledger.ListByUser))
	r.Get("/users/{id}/transactions/income", h.byUser(h.ledger.ListIncome))
	r.Get("/users/{id}/transactions/expenses", h.byUser(h.ledger.ListExpenses))

	r.Get("/transactions", h.all(h.ledger.ListAll))
	r.Post("/transactions", h.handleInsert)
	r.Get("/transactions/income", h.all(h.ledger.ListAllIncome))
	r.Get("/transactions/expenses", h.all(h.ledger.ListAllExpenses))
	r.Get("/transactions/{id}", h.handleGet)
	r.Put("/transactions/{id}", h.handleUpdate)
	r.Delete("/transactions/{id}", h.handleDelete)

	r.Get("/occurrence-types", h.handleOccurrenceTypes)
}

func (h *TransactionHandler) byUser(list func(context.Context, int64) ([]models.Transaction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "id")
		if err != nil {
			respond.Failure(w, r, err)
			return
		}
		txs, err := list(r.Context(), userID)
		if err != nil {
			respond.Failure(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, "ok", txs)
	}
}

func (h *TransactionHandler) all(list func(context.Context) ([]models.Transaction, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := list(r.Context())
		if err != nil {
			respond.Failure(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, "ok", txs)
	}
}

func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	tx, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", tx)
}

func (h *TransactionHandler) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req *dto.TransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Failure(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		respond.Failure(w, r, err)
		return
	}
	tx, err := h.ledger.Insert(r.Context(), req)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Transaction created successfully", tx)
}

func (h *TransactionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	var upd *dto.TransactionUpdate
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
	tx, err := h.ledger.Update(r.Context(), upd)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Transaction updated successfully", tx)
}

func (h *TransactionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	deleted, err := h.ledger.Delete(r.Context(), id)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Transaction deleted successfully", deleted)
}

func (h *TransactionHandler) handleOccurrenceTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.ledger.OccurrenceTypes(r.Context())
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", types)
}
