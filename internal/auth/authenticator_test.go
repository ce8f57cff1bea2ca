package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/budget-be/internal/apperr"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/storage"
)

type fakeFinder struct {
	user models.User
	err  error
}

func (f fakeFinder) FindByUsername(context.Context, string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	return f.user, nil
}

func newTestAuthenticator(t *testing.T, finder UserFinder) *Authenticator {
	t.Helper()
	return NewAuthenticator(finder, NewBcryptHasher(bcrypt.MinCost), NewTokenManager("secret", "budget-test", time.Hour))
}

func TestAuthenticateSuccess(t *testing.T) {
	hash, err := NewBcryptHasher(bcrypt.MinCost).Encode("password1")
	require.NoError(t, err)
	a := newTestAuthenticator(t, fakeFinder{user: models.User{ID: 7, Username: "bob", PasswordHash: hash}})

	tok, err := a.Authenticate(context.Background(), Credentials{Username: "bob", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.Equal(t, int64(7), tok.User.ID)

	ok, err := a.AuthenticateToken(tok.Token)
	require.NoError(t, err)
	assert.True(t, ok != nil)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	a := newTestAuthenticator(t, fakeFinder{err: storage.ErrNotFound})

	_, err := a.Authenticate(context.Background(), Credentials{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, apperr.ErrResourceNotFound)
	assert.EqualError(t, err, "User not found")
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hash, err := NewBcryptHasher(bcrypt.MinCost).Encode("password1")
	require.NoError(t, err)
	a := newTestAuthenticator(t, fakeFinder{user: models.User{ID: 7, Username: "bob", PasswordHash: hash}})

	_, err = a.Authenticate(context.Background(), Credentials{Username: "bob", Password: "nope"})
	assert.ErrorIs(t, err, apperr.ErrBadCredentials)
	assert.EqualError(t, err, "Invalid login information")
}

func TestAuthenticateStoreFailurePassesThrough(t *testing.T) {
	dbErr := errors.New("db down")
	a := newTestAuthenticator(t, fakeFinder{err: dbErr})

	_, err := a.Authenticate(context.Background(), Credentials{Username: "bob", Password: "x"})
	assert.Same(t, dbErr, err)
}

func TestAuthenticateTokenInvalid(t *testing.T) {
	a := newTestAuthenticator(t, fakeFinder{})

	claims, err := a.AuthenticateToken("garbage")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.EqualError(t, err, MsgTokenInvalid)
}

func TestAuthenticateTokenReturnsClaims(t *testing.T) {
	a := newTestAuthenticator(t, fakeFinder{})
	signed, err := a.tokens.Generate(models.User{ID: 12, Username: "dana", Email: "dana@example.com"})
	require.NoError(t, err)

	claims, err := a.AuthenticateToken(signed)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.Equal(t, "dana", claims.Username)
}
