// internal/core/domain/errors_test.go
package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected domain.Kind
	}{
		{
			name:     "tagged_error",
			err:      domain.E(domain.KindConflict, "refId taken"),
			expected: domain.KindConflict,
		},
		{
			name:     "wrapped_tagged_error",
			err:      fmt.Errorf("handler: %w", domain.Ef(domain.KindNotFound, "item %s not found", "abc")),
			expected: domain.KindNotFound,
		},
		{
			name:     "validation_error",
			err:      domain.NewValidationError(domain.FieldError{Field: "name", Message: "name is required"}),
			expected: domain.KindValidation,
		},
		{
			name:     "plain_error",
			err:      errors.New("something broke"),
			expected: domain.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.KindOf(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.WrapErr(domain.KindStorageUnavailable, "failed to save item", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to save item")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidationError_Message(t *testing.T) {
	err := domain.NewValidationError(
		domain.FieldError{Field: "refId", Message: "refId is required"},
		domain.FieldError{Field: "name", Message: "name is required"},
	)

	assert.Equal(t, "invalid input: please check the following fields: refId, name", err.Error())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "validation_failed", domain.KindValidation.String())
	assert.Equal(t, "conflict", domain.KindConflict.String())
	assert.Equal(t, "not_found", domain.KindNotFound.String())
	assert.Equal(t, "unsupported_media_type", domain.KindUnsupportedMedia.String())
	assert.Equal(t, "payload_too_large", domain.KindPayloadTooLarge.String())
	assert.Equal(t, "storage_unavailable", domain.KindStorageUnavailable.String())
	assert.Equal(t, "unknown", domain.KindUnknown.String())
}
