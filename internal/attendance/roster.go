package attendance

import (
	"strings"

	"qrattend/internal/model"
)

// Summary counts a roster by status.
type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
}

// Summarize counts records by status.
func Summarize(records []model.Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case model.StatusPresent:
			s.Present++
		case model.StatusLate:
			s.Late++
		}
	}
	return s
}

// Filter keeps records whose student name or id contains term,
// case-insensitively. An empty term keeps everything.
func Filter(records []model.Record, term string) []model.Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return records
	}
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.StudentName), term) ||
			strings.Contains(strings.ToLower(r.StudentID), term) {
			out = append(out, r)
		}
	}
	return out
}
