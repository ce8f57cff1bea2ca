// Package directory owns the business rules for creating, reading, updating,
// and deleting user accounts. It is the only place account invariants are
// checked before delegating to the user store.
package directory

import (
	"context"
	"errors"

	"github.com/hongminglow/budget-be/internal/apperr"
	"github.com/hongminglow/budget-be/internal/auth"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/models/dto"
	"github.com/hongminglow/budget-be/internal/query"
	"github.com/hongminglow/budget-be/internal/storage"
)

// Messages returned to API consumers verbatim.
const (
	MsgNoUserFound        = "No user found"
	MsgUserNotDeletable   = "User can not be deleted. The given user does not exist."
	MsgRegistrationNull   = "The registration is null"
	MsgUserNull           = "User is null"
	MsgUsernameDuplicated = "Username already exists"
	MsgEmailDuplicated    = "Email already exists"
)

// Directory enforces account uniqueness and existence rules.
//
// The username and email checks in AddAccount are not atomic with the
// subsequent Save; the store's unique constraints close that race and
// surface as storage.ErrAlreadyExists.
type Directory struct {
	users  storage.UserStore
	hasher auth.Hasher
}

func New(users storage.UserStore, hasher auth.Hasher) *Directory {
	return &Directory{users: users, hasher: hasher}
}

// ListAccounts returns one page of accounts matching filter. A nil filter matches every account.
func (d *Directory) ListAccounts(ctx context.Context, filter *query.Predicate, page query.PageRequest) ([]models.User, error) {
	pred := query.MatchAll()
	if filter != nil {
		pred = *filter
	}
	result, err := d.users.FindAll(ctx, pred, page)
	if err != nil {
		return nil, err
	}
	if result.Items == nil {
		return []models.User{}, nil
	}
	return result.Items, nil
}

// GetAccount returns the account with the given id.
func (d *Directory) GetAccount(ctx context.Context, id int64) (models.User, error) {
	user, err := d.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, notFound(err, MsgNoUserFound)
	}
	return user, nil
}

// DeleteAccount removes the account with the given id.
func (d *Directory) DeleteAccount(ctx context.Context, id int64) (bool, error) {
	exists, err := d.users.ExistsByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, apperr.ResourceNotFound(MsgUserNotDeletable)
	}
	if err := d.users.DeleteByID(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// AddAccount registers a new account. The plaintext password in req is
// replaced by its hash before the account is stored.
func (d *Directory) AddAccount(ctx context.Context, req *dto.RegistrationRequest) (models.User, error) {
	if req == nil {
		return models.User{}, apperr.BadParameter(MsgRegistrationNull)
	}

	if taken, err := d.found(d.users.FindByUsername(ctx, req.Username)); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, apperr.DuplicateEntry(MsgUsernameDuplicated)
	}
	if taken, err := d.found(d.users.FindByEmail(ctx, req.Email)); err != nil {
		return models.User{}, err
	} else if taken {
		return models.User{}, apperr.DuplicateEntry(MsgEmailDuplicated)
	}

	hash, err := d.hasher.Encode(req.Password)
	if err != nil {
		return models.User{}, err
	}
	req.Password = hash

	return d.users.Save(ctx, toUser(req))
}

// UpdateAccount applies the non-nil fields of upd to the stored account.
// Changed usernames and emails are not re-checked against other accounts here.
func (d *Directory) UpdateAccount(ctx context.Context, upd *dto.UserUpdate) (models.User, error) {
	if upd == nil {
		return models.User{}, apperr.BadParameter(MsgUserNull)
	}
	user, err := d.users.FindByID(ctx, upd.ID)
	if err != nil {
		return models.User{}, notFound(err, MsgNoUserFound)
	}
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	if upd.Email != nil {
		user.Email = *upd.Email
	}
	saved, err := d.users.Save(ctx, user)
	if err != nil {
		// the row may have been deleted since FindByID
		return models.User{}, notFound(err, MsgNoUserFound)
	}
	return saved, nil
}

func (d *Directory) found(_ models.User, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func notFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.ResourceNotFound(msg)
	}
	return err
}

func toUser(req *dto.RegistrationRequest) models.User {
	return models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.Password,
	}
}
