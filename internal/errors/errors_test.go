package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_FormatsCategoryAndSeverity(t *testing.T) {
	err := New(CategoryConfig, SeverityFatal, "bad theme reference")
	require.Equal(t, "config (fatal): bad theme reference", err.Error())
}

func TestWrap_UnwrapsToCause(t *testing.T) {
	cause := errors.New("open failed")
	err := Wrap(cause, CategoryFileSystem, SeverityError, "reading manuscript")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "open failed")
}

func TestAsBinderError_ThroughWrappedChain(t *testing.T) {
	inner := NewConfigError("target collides with context dir")
	wrapped := fmt.Errorf("compile: %w", inner)

	be, ok := AsBinderError(wrapped)
	require.True(t, ok)
	require.Equal(t, CategoryConfig, be.Category)
	require.True(t, IsCategory(wrapped, CategoryConfig))
	require.False(t, IsCategory(wrapped, CategoryValidation))
}

func TestWithDetail_CarriesValidatorBlob(t *testing.T) {
	err := NewValidationError("manifest failed schema validation").
		WithDetail("readingOrder.0.url: expected string")
	require.Equal(t, "readingOrder.0.url: expected string", err.Detail)
	// Detail must not leak into the one-line message.
	require.NotContains(t, err.Error(), "expected string")
}

func TestWithContext_Accumulates(t *testing.T) {
	err := NewConfigError("collision").
		WithContext("target", "/out").
		WithContext("label", "workspaceDir")
	require.Equal(t, "/out", err.Context["target"])
	require.Equal(t, "workspaceDir", err.Context["label"])
}
