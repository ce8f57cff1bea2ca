package auth

import (
	"context"
	"errors"

	"github.com/hongminglow/budget-be/internal/apperr"
	"github.com/hongminglow/budget-be/internal/models"
	"github.com/hongminglow/budget-be/internal/storage"
)

// MsgTokenInvalid is reported for any bearer token that fails validation.
const MsgTokenInvalid = "Token invalid"

// Credentials is a username/password login attempt.
type Credentials struct {
	Username string
	Password string
}

// Token is an issued bearer token together with the account it belongs to.
type Token struct {
	Token string
	User  models.User
}

// UserFinder is the slice of the user store needed to log in.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// Authenticator checks credentials and issues or verifies tokens.
type Authenticator struct {
	users  UserFinder
	hasher Hasher
	tokens *TokenManager
}

func NewAuthenticator(users UserFinder, hasher Hasher, tokens *TokenManager) *Authenticator {
	return &Authenticator{users: users, hasher: hasher, tokens: tokens}
}

// Authenticate verifies the credentials and returns a signed token.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (Token, error) {
	user, err := a.users.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Token{}, apperr.ResourceNotFound("User not found")
		}
		return Token{}, err
	}
	if !a.hasher.Valid(creds.Password, user.PasswordHash) {
		return Token{}, apperr.BadCredentials("Invalid login information")
	}
	signed, err := a.tokens.Generate(user)
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, User: user}, nil
}

// AuthenticateToken validates a bearer token and returns its claims.
func (a *Authenticator) AuthenticateToken(token string) (*Claims, error) {
	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, apperr.Unauthorized(MsgTokenInvalid)
	}
	return claims, nil
}
