package attendance

import (
	"errors"
	"fmt"

	"qrattend/internal/model"
)

// Level is the notice category shown to the operator.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is the single user-visible signal for one terminal scan state.
type Notice struct {
	Level   Level        `json:"level"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Status  model.Status `json:"status,omitempty"`
}

// Accepted is the notice for a recorded scan.
func Accepted(rec model.Record) Notice {
	return Notice{
		Level:   LevelSuccess,
		Title:   "Attendance Recorded",
		Message: fmt.Sprintf("%s (%s) marked %s", rec.StudentName, rec.StudentID, rec.Status),
		Status:  rec.Status,
	}
}

// NoticeFor maps an error from the scan pipeline to its notice.
func NoticeFor(err error) Notice {
	switch {
	case errors.Is(err, ErrInvalidPayload):
		return Notice{Level: LevelError, Title: "Invalid QR Code", Message: "The code does not carry a student name and ID."}
	case errors.Is(err, ErrIncompleteSession):
		return Notice{Level: LevelWarning, Title: "Incomplete Information", Message: "Fill in college, instructor, section and course before scanning."}
	case errors.Is(err, ErrNoActiveSession):
		return Notice{Level: LevelWarning, Title: "No Active Session", Message: "Start a session before scanning."}
	case errors.Is(err, ErrDuplicate):
		return Notice{Level: LevelWarning, Title: "Already Scanned", Message: "This student is already recorded for today."}
	case errors.Is(err, ErrSessionCreate):
		return Notice{Level: LevelError, Title: "Session Error", Message: "The session could not be created. Try again."}
	case errors.Is(err, ErrPersistence):
		return Notice{Level: LevelError, Title: "Save Failed", Message: "The attendance record could not be saved. Try again."}
	case errors.Is(err, ErrCaptureUnavailable):
		return Notice{Level: LevelError, Title: "Camera Unavailable", Message: "The scanner could not be started."}
	default:
		return Notice{Level: LevelError, Title: "Error", Message: err.Error()}
	}
}

// Outcome is the metric/log label for a terminal state; nil is accepted.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid"
	case errors.Is(err, ErrIncompleteSession):
		return "incomplete_session"
	case errors.Is(err, ErrNoActiveSession):
		return "no_session"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrSessionCreate):
		return "session_create_failed"
	case errors.Is(err, ErrPersistence):
		return "record_create_failed"
	case errors.Is(err, ErrCaptureUnavailable):
		return "capture_unavailable"
	default:
		return "error"
	}
}
