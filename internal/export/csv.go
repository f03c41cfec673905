// Package export renders attendance rosters as delimited text.
package export

import (
	"strings"
	"time"

	"qrattend/internal/model"
)

// Header is the first row of every export.
var Header = []string{"Student Name", "Student ID", "Status", "Scan Time", "Scan Date"}

// ContentType of the export.
const ContentType = "text/csv; charset=utf-8"

// CSV renders records in the given order. Name and time are always quoted;
// the other fields are written as-is unless they contain a comma, quote or
// line break, in which case they are quoted too.
func CSV(records []model.Record) string {
	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	b.WriteString("\n")
	for _, r := range records {
		b.WriteString(quote(r.StudentName))
		b.WriteByte(',')
		b.WriteString(field(r.StudentID))
		b.WriteByte(',')
		b.WriteString(field(string(r.Status)))
		b.WriteByte(',')
		b.WriteString(quote(r.ScanTime))
		b.WriteByte(',')
		b.WriteString(field(r.ScanDate))
		b.WriteString("\n")
	}
	return b.String()
}

// Filename names the download after the calendar date of now.
func Filename(now time.Time) string {
	return "attendance_" + now.Format(model.DateLayout) + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func field(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
