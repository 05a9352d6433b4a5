package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewEmptyInputError("no rows after filtering"),
			want: "[EMPTY_INPUT] no rows after filtering",
		},
		{
			name: "with cause",
			err:  NewFormatError("missing household id column", fmt.Errorf("sheet 2016")),
			want: "[FORMAT] missing household id column: sheet 2016",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NewStorageError("write failed", cause)

	assert.Equal(t, cause, err.Unwrap())
}

func TestIsType(t *testing.T) {
	base := NewInsufficientDataError("baseline band is empty")
	wrapped := fmt.Errorf("aggregate: %w", base)

	assert.True(t, IsType(base, ErrTypeInsufficientData))
	assert.True(t, IsType(wrapped, ErrTypeInsufficientData))
	assert.False(t, IsType(wrapped, ErrTypeFormat))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeFormat))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewFormatError("bad header", nil).
		WithContext("sheet", "2019").
		WithContext("row", 1)

	require.NotNil(t, err.Context)
	assert.Equal(t, "2019", err.Context["sheet"])
	assert.Equal(t, 1, err.Context["row"])
}
