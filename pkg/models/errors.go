package models

import "fmt"

// InvalidIntentError rejects a malformed intent before any side effect
type InvalidIntentError struct {
	Reason string
}

func (e *InvalidIntentError) Error() string {
	return fmt.Sprintf("invalid download intent: %s", e.Reason)
}

// DuplicateInFlightError rejects an intent whose content key is already
// being downloaded
type DuplicateInFlightError struct {
	ContentKey string
}

func (e *DuplicateInFlightError) Error() string {
	return fmt.Sprintf("download already in flight for %q", e.ContentKey)
}

// NoResultsFoundError indicates that search resolution produced no source
type NoResultsFoundError struct {
	Query string
}

func (e *NoResultsFoundError) Error() string {
	return fmt.Sprintf("no results found for %q", e.Query)
}

// ExternalToolError indicates that the fetch tool failed or timed out
type ExternalToolError struct {
	Message  string
	ExitCode int
	Err      error
}

func (e *ExternalToolError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("external tool failed (exit %d): %s", e.ExitCode, e.Message)
	}
	return fmt.Sprintf("external tool failed: %s", e.Message)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// FilesystemError indicates that the download destination cannot be used
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error at %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// StoreError indicates the record store is unavailable; submit callers may retry
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
