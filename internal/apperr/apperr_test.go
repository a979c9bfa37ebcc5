package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "gone")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(KindRateLimited, "slow down"))
	assert.Equal(t, KindRateLimited, KindOf(wrapped))
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(Validation("bad input %d", 3), KindValidation))
	assert.False(t, IsKind(nil, KindValidation))
	assert.False(t, IsKind(errors.New("plain"), KindValidation))
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(KindPersistence, "save failed", errors.New("connection reset"))
	assert.Equal(t, "persistence: save failed: connection reset", err.Error())
	assert.Equal(t, "connection reset", errors.Unwrap(err).Error())
}
