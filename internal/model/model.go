package model

import "time"

// Date and clock layouts used for scan_date / scan_time / session_date.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Status classifies a scan against the daily cutoff.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
)

// SessionMeta is the operator-supplied description of a class meeting.
type SessionMeta struct {
	College    string `json:"college"`
	Instructor string `json:"instructor"`
	Section    string `json:"section"`
	Course     string `json:"course"`
}

// Complete reports whether every descriptive field is non-empty.
func (m SessionMeta) Complete() bool {
	return m.College != "" && m.Instructor != "" && m.Section != "" && m.Course != ""
}

// Session is one instructor-defined class meeting.
type Session struct {
	ID          string    `json:"id"`
	College     string    `json:"college"`
	Instructor  string    `json:"instructor"`
	Section     string    `json:"section"`
	Course      string    `json:"course"`
	SessionDate string    `json:"session_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Meta returns the descriptive fields of the session.
func (s Session) Meta() SessionMeta {
	return SessionMeta{College: s.College, Instructor: s.Instructor, Section: s.Section, Course: s.Course}
}

// Record is a single attendance entry. At most one exists per
// (SessionID, StudentID, ScanDate).
type Record struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	StudentName string    `json:"student_name"`
	StudentID   string    `json:"student_id"`
	Status      Status    `json:"status"`
	ScanDate    string    `json:"scan_date"`
	ScanTime    string    `json:"scan_time"`
	CreatedAt   time.Time `json:"created_at"`
}
