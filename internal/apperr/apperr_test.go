package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIsVerbatim(t *testing.T) {
	err := ResourceNotFound("No user found")
	assert.Equal(t, "No user found", err.Error())
}

func TestIsMatchesKindSentinel(t *testing.T) {
	err := DuplicateEntry("Username already exists")

	assert.True(t, errors.Is(err, ErrDuplicateEntry))
	assert.False(t, errors.Is(err, ErrResourceNotFound))
	assert.True(t, errors.Is(err, DuplicateEntry("Username already exists")))
	assert.False(t, errors.Is(err, DuplicateEntry("Email already exists")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", BadParameter("User is null"))

	assert.Equal(t, KindBadParameter, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("db down")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "duplicate_entry", KindDuplicateEntry.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
