package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid intent",
			err:  &InvalidIntentError{Reason: "source is empty"},
			want: "invalid download intent: source is empty",
		},
		{
			name: "duplicate in flight",
			err:  &DuplicateInFlightError{ContentKey: "artist - track"},
			want: `download already in flight for "artist - track"`,
		},
		{
			name: "no results found",
			err:  &NoResultsFoundError{Query: "unknown band"},
			want: `no results found for "unknown band"`,
		},
		{
			name: "external tool with exit code",
			err:  &ExternalToolError{Message: "network unreachable", ExitCode: 1},
			want: "external tool failed (exit 1): network unreachable",
		},
		{
			name: "external tool without exit code",
			err:  &ExternalToolError{Message: "timed out"},
			want: "external tool failed: timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("disk full")

	fsErr := &FilesystemError{Path: "/downloads", Err: cause}
	require.ErrorIs(t, fsErr, cause)

	storeErr := &StoreError{Op: "insert", Err: cause}
	require.ErrorIs(t, storeErr, cause)

	toolErr := &ExternalToolError{Message: "killed", Err: cause}
	require.ErrorIs(t, toolErr, cause)
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("submit failed: %w", &DuplicateInFlightError{ContentKey: "key"})

	var dupErr *DuplicateInFlightError
	require.ErrorAs(t, wrapped, &dupErr)
	require.Equal(t, "key", dupErr.ContentKey)

	var invalidErr *InvalidIntentError
	require.False(t, errors.As(wrapped, &invalidErr))
}
