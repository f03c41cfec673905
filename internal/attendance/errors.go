package attendance

import (
	"errors"

	"qrattend/internal/capture"
)

// Scan and session errors. Each maps to exactly one notice via NoticeFor.
var (
	ErrInvalidPayload     = errors.New("invalid qr payload")
	ErrIncompleteSession  = errors.New("incomplete session metadata")
	ErrNoActiveSession    = errors.New("no active session")
	ErrDuplicate          = errors.New("already recorded for today")
	ErrPersistence        = errors.New("persistence failure")
	ErrCaptureUnavailable = capture.ErrUnavailable
)

// Persistence failures are split by the write that failed. Both match
// ErrPersistence with errors.Is.
var (
	ErrSessionCreate = &persistenceError{op: "session create"}
	ErrRecordCreate  = &persistenceError{op: "record create"}
)

type persistenceError struct{ op string }

func (e *persistenceError) Error() string        { return e.op + " failed" }
func (e *persistenceError) Is(target error) bool { return target == ErrPersistence }
