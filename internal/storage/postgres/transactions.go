package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/storage"
)

var _ storage.TransactionStore = (*TransactionStore)(nil)

const transactionSelect = `
	SELECT t.id, t.user_id, t.amount::text, t.description, t.kind, o.id, o.name, t.occurred_at, t.created_at
	FROM transactions t
	JOIN transaction_occurrence_type o ON o.id = t.occurrence_type_id`

// TransactionStore provides Postgres-backed persistence for transactions.
type TransactionStore struct {
	pool *pgxpool.Pool
}

func (s *TransactionStore) FindByID(ctx context.Context, id int64) (models.Transaction, error) {
	return scanTransaction(s.pool.QueryRow(ctx, transactionSelect+` WHERE t.id = $1`, id))
}

func (s *TransactionStore) FindAllByUserID(ctx context.Context, userID int64) ([]models.Transaction, error) {
	return s.list(ctx, transactionSelect+` WHERE t.user_id = $1 ORDER BY t.occurred_at DESC, t.id DESC`, userID)
}

func (s *TransactionStore) FindAll(ctx context.Context) ([]models.Transaction, error) {
	return s.list(ctx, transactionSelect+` ORDER BY t.occurred_at DESC, t.id DESC`)
}

func (s *TransactionStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check transaction exists: %w", err)
	}
	return exists, nil
}

func (s *TransactionStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// Save inserts the transaction when ID is zero and updates it otherwise,
// then reloads it with its occurrence type.
func (s *TransactionStore) Save(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	var id int64
	var err error
	if tx.ID == 0 {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO transactions (user_id, amount, description, kind, occurrence_type_id, occurred_at)
			VALUES ($1, CAST($2::text AS NUMERIC), $3, $4, $5, $6)
			RETURNING id`,
			tx.UserID, tx.Amount, tx.Description, string(tx.Kind), tx.OccurrenceType.ID, tx.OccurredAt).Scan(&id)
	} else {
		err = s.pool.QueryRow(ctx, `
			UPDATE transactions
			SET amount = CAST($1::text AS NUMERIC), description = $2, kind = $3, occurrence_type_id = $4, occurred_at = $5
			WHERE id = $6
			RETURNING id`,
			tx.Amount, tx.Description, string(tx.Kind), tx.OccurrenceType.ID, tx.OccurredAt, tx.ID).Scan(&id)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	return s.FindByID(ctx, id)
}

func (s *TransactionStore) OccurrenceTypes(ctx context.Context) ([]models.OccurrenceType, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM transaction_occurrence_type ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list occurrence types: %w", err)
	}
	defer rows.Close()

	var out []models.OccurrenceType
	for rows.Next() {
		var o models.OccurrenceType
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *TransactionStore) FindOccurrenceType(ctx context.Context, id int64) (models.OccurrenceType, error) {
	var o models.OccurrenceType
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM transaction_occurrence_type WHERE id = $1`, id).Scan(&o.ID, &o.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.OccurrenceType{}, storage.ErrNotFound
		}
		return models.OccurrenceType{}, err
	}
	return o, nil
}

func (s *TransactionStore) list(ctx context.Context, sql string, args ...any) ([]models.Transaction, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var tx models.Transaction
	var kind string
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Description, &kind,
		&tx.OccurrenceType.ID, &tx.OccurrenceType.Name, &tx.OccurredAt, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, err
	}
	tx.Kind = models.TransactionKind(kind)
	return tx, nil
}
