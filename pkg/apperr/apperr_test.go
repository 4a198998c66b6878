package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindForbidden, KindOf(Forbidden("no")))
	assert.Equal(t, KindInvariantViolation, KindOf(Invariant("last admin")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))

	// Classified errors survive wrapping.
	wrapped := fmt.Errorf("handler: %w", Conflict("duplicate"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("load roster", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDetails(t *testing.T) {
	err := Forbidden("insufficient role").WithDetails(map[string]any{
		"actual_role":    "EMPLOYEE",
		"required_roles": []string{"ADMIN"},
	})
	assert.Equal(t, "EMPLOYEE", err.Details["actual_role"])
}
