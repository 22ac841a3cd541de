package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrConcurrentModification, "timetable tt-1 changed")
	assert.True(t, errors.Is(err, ErrConcurrentModification))
	assert.False(t, errors.Is(err, ErrPlacementConflict))
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "timetable was modified concurrently, reload and retry", ErrConcurrentModification.Message)
}

func TestWithDetails(t *testing.T) {
	details := map[string]string{"reason": "OVERLAP"}
	err := WithDetails(ErrPlacementConflict, "slot taken", details)
	assert.Equal(t, details, err.Details)
	assert.Nil(t, ErrPlacementConflict.Details)
	assert.Nil(t, WithDetails(nil, "x", details))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("edit: %w", Clone(ErrNotFound, "timetable not found"))
	assert.Equal(t, "NOT_FOUND", FromError(wrapped).Code)

	internal := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, internal.Code)
	assert.True(t, errors.Is(internal, sql.ErrConnDone))
}
