// Package ledger serves a user's income and expense transactions.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hongminglow/budget-be/internal/apperr"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/models/dto"
	"github.com/hongminglow/budget-be/internal/storage"
)

const (
	MsgNoTransactionFound      = "No transaction found"
	MsgTransactionNotDeletable = "Transaction can not be deleted. The given transaction does not exist."
	MsgTransactionRequestNull  = "The transaction is null"
	MsgTransactionNull         = "Transaction is null"
	MsgInvalidKind             = "Transaction type must be income or expense"
	MsgNoOccurrenceType        = "No occurrence type found"
	MsgNoUserFound             = "No user found"
)

// UserChecker reports whether an account exists.
type UserChecker interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// Service is a thin layer over the transaction store.
type Service struct {
	txs   storage.TransactionStore
	users UserChecker
	now   func() time.Time
}

func NewService(txs storage.TransactionStore, users UserChecker) *Service {
	return &Service{txs: txs, users: users, now: time.Now}
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return nonNil(s.txs.FindAllByUserID(ctx, userID))
}

func (s *Service) ListIncome(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return filterKind(models.Income)(s.txs.FindAllByUserID(ctx, userID))
}

func (s *Service) ListExpenses(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return filterKind(models.Expense)(s.txs.FindAllByUserID(ctx, userID))
}

func (s *Service) ListAll(ctx context.Context) ([]models.Transaction, error) {
	return nonNil(s.txs.FindAll(ctx))
}

func (s *Service) ListAllIncome(ctx context.Context) ([]models.Transaction, error) {
	return filterKind(models.Income)(s.txs.FindAll(ctx))
}

func (s *Service) ListAllExpenses(ctx context.Context) ([]models.Transaction, error) {
	return filterKind(models.Expense)(s.txs.FindAll(ctx))
}

func (s *Service) Get(ctx context.Context, id int64) (models.Transaction, error) {
	tx, err := s.txs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Transaction{}, apperr.ResourceNotFound(MsgNoTransactionFound)
		}
		return models.Transaction{}, err
	}
	return tx, nil
}

// Insert books a new transaction for an existing user.
func (s *Service) Insert(ctx context.Context, req *dto.TransactionRequest) (models.Transaction, error) {
	if req == nil {
		return models.Transaction{}, apperr.BadParameter(MsgTransactionRequestNull)
	}
	kind, err := parseKind(req.Type)
	if err != nil {
		return models.Transaction{}, err
	}
	exists, err := s.users.ExistsByID(ctx, req.UserID)
	if err != nil {
		return models.Transaction{}, err
	}
	if !exists {
		return models.Transaction{}, apperr.ResourceNotFound(MsgNoUserFound)
	}
	occurrence, err := s.occurrenceType(ctx, req.OccurrenceTypeID)
	if err != nil {
		return models.Transaction{}, err
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now().UTC()
	}
	return s.txs.Save(ctx, models.Transaction{
		UserID:         req.UserID,
		Amount:         req.Amount,
		Description:    strings.TrimSpace(req.Description),
		Kind:           kind,
		OccurrenceType: occurrence,
		OccurredAt:     occurredAt,
	})
}

// Update applies the non-nil fields of upd to a stored transaction.
func (s *Service) Update(ctx context.Context, upd *dto.TransactionUpdate) (models.Transaction, error) {
	if upd == nil {
		return models.Transaction{}, apperr.BadParameter(MsgTransactionNull)
	}
	tx, err := s.Get(ctx, upd.ID)
	if err != nil {
		return models.Transaction{}, err
	}
	if upd.Type != nil {
		kind, err := parseKind(*upd.Type)
		if err != nil {
			return models.Transaction{}, err
		}
		tx.Kind = kind
	}
	if upd.OccurrenceTypeID != nil {
		occurrence, err := s.occurrenceType(ctx, *upd.OccurrenceTypeID)
		if err != nil {
			return models.Transaction{}, err
		}
		tx.OccurrenceType = occurrence
	}
	if upd.Amount != nil {
		tx.Amount = *upd.Amount
	}
	if upd.Description != nil {
		tx.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.OccurredAt != nil {
		tx.OccurredAt = *upd.OccurredAt
	}
	return s.txs.Save(ctx, tx)
}

func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	exists, err := s.txs.ExistsByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperr.ResourceNotFound(MsgTransactionNotDeletable)
	}
	if err := s.txs.DeleteByID(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) OccurrenceTypes(ctx context.Context) ([]models.OccurrenceType, error) {
	types, err := s.txs.OccurrenceTypes(ctx)
	if err != nil {
		return nil, err
	}
	if types == nil {
		return []models.OccurrenceType{}, nil
	}
	return types, nil
}

func (s *Service) occurrenceType(ctx context.Context, id int64) (models.OccurrenceType, error) {
	occurrence, err := s.txs.FindOccurrenceType(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.OccurrenceType{}, apperr.ResourceNotFound(MsgNoOccurrenceType)
		}
		return models.OccurrenceType{}, err
	}
	return occurrence, nil
}

func parseKind(raw string) (models.TransactionKind, error) {
	kind := models.TransactionKind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", apperr.BadParameter(MsgInvalidKind)
	}
	return kind, nil
}

func nonNil(txs []models.Transaction, err error) ([]models.Transaction, error) {
	if err != nil {
		return nil, err
	}
	if txs == nil {
		return []models.Transaction{}, nil
	}
	return txs, nil
}

func filterKind(kind models.TransactionKind) func([]models.Transaction, error) ([]models.Transaction, error) {
	return func(txs []models.Transaction, err error) ([]models.Transaction, error) {
		if err != nil {
			return nil, err
		}
		out := make([]models.Transaction, 0, len(txs))
		for _, tx := range txs {
			if tx.Kind == kind {
				out = append(out, tx)
			}
		}
		return out, nil
	}
}
