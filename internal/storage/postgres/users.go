package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/query"
	"github.com/hongminglow/budget-be/internal/storage"
)

// Ensure UserStore satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*UserStore)(nil)

const userColumnsSQL = `id, username, email, password_hash, created_at, updated_at`

// UserStore provides Postgres-backed persistence for accounts.
type UserStore struct {
	pool *pgxpool.Pool
}

// FindByID fetches a user by id.
func (s *UserStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumnsSQL+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsername fetches a user by username.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumnsSQL+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// FindByEmail fetches a user by email address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumnsSQL+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *UserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (s *UserStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// Save inserts a new user row when ID is zero and updates the existing row otherwise.
func (s *UserStore) Save(ctx context.Context, user models.User) (models.User, error) {
	var row pgx.Row
	if user.ID == 0 {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING `+userColumnsSQL,
			user.Username, user.Email, user.PasswordHash)
	} else {
		row = s.pool.QueryRow(ctx, `
			UPDATE users
			SET username = $1, email = $2, password_hash = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING `+userColumnsSQL,
			user.Username, user.Email, user.PasswordHash, user.ID)
	}
	saved, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return saved, nil
}

// FindAll returns one page of users matching pred, ordered by id.
func (s *UserStore) FindAll(ctx context.Context, pred query.Predicate, page query.PageRequest) (query.Page[models.User], error) {
	where, args, err := whereClause(pred, userColumns)
	if err != nil {
		return query.Page[models.User]{}, err
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return query.Page[models.User]{}, fmt.Errorf("count users: %w", err)
	}

	listSQL := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		userColumnsSQL, where, len(args)+1, len(args)+2)
	var limit any
	if page.Size > 0 {
		limit = page.Size
	}
	rows, err := s.pool.Query(ctx, listSQL, append(args, limit, page.Offset())...)
	if err != nil {
		return query.Page[models.User]{}, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return query.Page[models.User]{}, err
		}
		items = append(items, user)
	}
	if err := rows.Err(); err != nil {
		return query.Page[models.User]{}, fmt.Errorf("list users: %w", err)
	}
	return query.Page[models.User]{Items: items, Page: page.Page, Size: page.Size, Total: total}, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
