package errors

import (
	"fmt"
)

// TargetNotFound creates a not-found error for a target with no threads
func TargetNotFound(target string) *MarginError {
	return New(ErrCodeNotFound, fmt.Sprintf("no threads for target: %s", target)).
		WithDetail("target", target)
}

// ThreadNotFound creates a not-found error for an unknown thread id
func ThreadNotFound(target, threadID string) *MarginError {
	return New(ErrCodeNotFound, fmt.Sprintf("thread %s not found in %s", threadID, target)).
		WithDetail("target", target).
		WithDetail("thread", threadID)
}

// CommentNotFound creates a not-found error for an out-of-range comment index
func CommentNotFound(target, threadID string, index int) *MarginError {
	return New(ErrCodeNotFound, fmt.Sprintf("thread %s has no comment at index %d", threadID, index)).
		WithDetail("target", target).
		WithDetail("thread", threadID).
		WithDetail("index", index)
}

// RootCommentDelete creates an invalid-input error for deleting a thread's root comment
func RootCommentDelete(target, threadID string) *MarginError {
	return New(ErrCodeInvalidInput, "the thread-starting comment cannot be deleted").
		WithDetail("target", target).
		WithDetail("thread", threadID)
}

// PersistenceFailed wraps a backing-store failure
func PersistenceFailed(err error, path string) *MarginError {
	return Wrap(err, ErrCodePersistence, fmt.Sprintf("backing store operation failed: %s", path)).
		WithDetail("path", path)
}

// UserNotFound creates a lookup error for an unknown username
func UserNotFound(username string) *MarginError {
	return New(ErrCodeUserLookup, fmt.Sprintf("user not found: %s", username)).
		WithDetail("username", username)
}

// UserLookupFailed wraps a user-lookup transport failure
func UserLookupFailed(err error, username string) *MarginError {
	return Wrap(err, ErrCodeUserLookup, fmt.Sprintf("user lookup failed: %s", username)).
		WithDetail("username", username)
}

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *MarginError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *MarginError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// AlreadyRunning reports a bridge daemon that holds the pidfile
func AlreadyRunning(pid int) *MarginError {
	return New(ErrCodeAlreadyRunning, fmt.Sprintf("bridge already running with PID %d", pid)).
		WithDetail("pid", pid)
}
