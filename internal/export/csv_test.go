package export_test

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"qrattend/internal/export"
	"qrattend/internal/model"
)

func TestCSV(t *testing.T) {
	t.Run("quotes name and time only", func(t *testing.T) {
		got := export.CSV([]model.Record{
			{StudentName: "A, B", StudentID: "1", Status: model.StatusPresent, ScanTime: "09:00", ScanDate: "2024-09-12"},
		})
		want := "Student Name,Student ID,Status,Scan Time,Scan Date\n" +
			`"A, B",1,present,"09:00",2024-09-12` + "\n"
		if got != want {
			t.Errorf("(actual, expected) =\n(%q,\n %q)", got, want)
		}
	})

	t.Run("ids with delimiters are quoted and round trip", func(t *testing.T) {
		got := export.CSV([]model.Record{
			{StudentName: "Abebe Kebede", StudentID: "HU,001", Status: model.StatusLate, ScanTime: "10:05:00", ScanDate: "2024-09-12"},
		})
		want := "Student Name,Student ID,Status,Scan Time,Scan Date\n" +
			`"Abebe Kebede","HU,001",late,"10:05:00",2024-09-12` + "\n"
		if got != want {
			t.Errorf("(actual, expected) =\n(%q,\n %q)", got, want)
		}
		rows, err := csv.NewReader(strings.NewReader(got)).ReadAll()
		if err != nil {
			t.Fatalf("not valid csv: %v", err)
		}
		if len(rows) != 2 || len(rows[1]) != 5 || rows[1][1] != "HU,001" {
			t.Errorf("rows: %q", rows)
		}
	})

	t.Run("empty roster is header only", func(t *testing.T) {
		if got := export.CSV(nil); got != "Student Name,Student ID,Status,Scan Time,Scan Date\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("round trips visible fields in order", func(t *testing.T) {
		records := []model.Record{
			{ID: "x", StudentName: "Abebe Kebede", StudentID: "HU001", Status: model.StatusPresent, ScanTime: "09:15:00", ScanDate: "2024-09-12"},
			{ID: "y", StudentName: "Tadesse, Almaz", StudentID: "HU002", Status: model.StatusPresent, ScanTime: "09:18:00", ScanDate: "2024-09-12"},
			{ID: "z", StudentName: "Dawit Haile", StudentID: "HU003", Status: model.StatusLate, ScanTime: "10:25:00", ScanDate: "2024-09-12"},
		}
		rows, err := csv.NewReader(strings.NewReader(export.CSV(records))).ReadAll()
		if err != nil {
			t.Fatalf("not valid csv: %v", err)
		}
		if len(rows) != len(records)+1 {
			t.Fatalf("rows: %d", len(rows))
		}
		for i, r := range records {
			row := rows[i+1]
			want := []string{r.StudentName, r.StudentID, string(r.Status), r.ScanTime, r.ScanDate}
			if strings.Join(row, "\x00") != strings.Join(want, "\x00") {
				t.Errorf("row %d: (actual, expected) = (%q, %q)", i, row, want)
			}
		}
	})
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 9, 12, 17, 0, 0, 0, time.UTC)
	if got := export.Filename(now); got != "attendance_2024-09-12.csv" {
		t.Errorf("got %q", got)
	}
}
