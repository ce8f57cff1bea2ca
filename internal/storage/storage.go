package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/query"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidPredicate indicates a filter the store cannot translate.
var ErrInvalidPredicate = errors.New("invalid predicate")

// UserStore captures account persistence. Implementations must enforce
// username and email uniqueness themselves and report violations as
// ErrAlreadyExists; callers' lookups before Save are not atomic with it.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	// Save inserts the user when ID is zero and updates it otherwise.
	Save(ctx context.Context, user models.User) (models.User, error)
	FindAll(ctx context.Context, pred query.Predicate, page query.PageRequest) (query.Page[models.User], error)
}

// TransactionStore captures transaction persistence.
type TransactionStore interface {
	FindByID(ctx context.Context, id int64) (models.Transaction, error)
	FindAllByUserID(ctx context.Context, userID int64) ([]models.Transaction, error)
	FindAll(ctx context.Context) ([]models.Transaction, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	Save(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	OccurrenceTypes(ctx context.Context) ([]models.OccurrenceType, error)
	FindOccurrenceType(ctx context.Context, id int64) (models.OccurrenceType, error)
}
