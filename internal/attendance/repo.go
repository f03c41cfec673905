package attendance

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/google/uuid"

	"qrattend/internal/model"
)

// Dialect selects placeholder syntax for the SQL repository.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Repository persists sessions and records in Postgres or SQLite.
type Repository struct {
	db      *sql.DB
	dialect Dialect
}

// NewRepository creates a repo over an open database.
func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

var placeholder = regexp.MustCompile(`\$\d+`)

// q rewrites $n placeholders for SQLite. Queries never reuse a placeholder.
func (r *Repository) q(query string) string {
	if r.dialect == SQLite {
		return placeholder.ReplaceAllString(query, "?")
	}
	return query
}

const sessionColumns = `id, college, instructor, section, course, session_date, created_at`

const recordColumns = `id, session_id, student_name, student_id, status, scan_date, scan_time, created_at`

// CreateSession inserts a session and returns the stored row.
func (r *Repository) CreateSession(ctx context.Context, s model.Session) (model.Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, r.q(`
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`), s.ID, s.College, s.Instructor, s.Section, s.Course, s.SessionDate, s.CreatedAt)
	if err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// GetSession returns a single session by id.
func (r *Repository) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, r.q(`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`), id)
	return scanSession(row)
}

// LatestSession returns the most recently created session on date.
func (r *Repository) LatestSession(ctx context.Context, date string) (*model.Session, error) {
	row := r.db.QueryRowContext(ctx, r.q(`
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE session_date = $1
		ORDER BY created_at DESC
		LIMIT 1
	`), date)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*model.Session, error) {
	var s model.Session
	if err := row.Scan(&s.ID, &s.College, &s.Instructor, &s.Section, &s.Course, &s.SessionDate, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// FindRecord returns the record for the dedup key, if any.
func (r *Repository) FindRecord(ctx context.Context, sessionID, studentID, date string) (*model.Record, error) {
	row := r.db.QueryRowContext(ctx, r.q(`
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE session_id = $1 AND student_id = $2 AND scan_date = $3
		LIMIT 1
	`), sessionID, studentID, date)
	var rec model.Record
	if err := scanRecord(row, &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// InsertRecord writes a new record. A conflicting dedup key inserts nothing
// and yields ErrDuplicate.
func (r *Repository) InsertRecord(ctx context.Context, rec model.Record) (model.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, r.q(`
		INSERT INTO attendance_records (`+recordColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (session_id, student_id, scan_date) DO NOTHING
		RETURNING id
	`), rec.ID, rec.SessionID, rec.StudentName, rec.StudentID, string(rec.Status), rec.ScanDate, rec.ScanTime, rec.CreatedAt)
	if err := row.Scan(&rec.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, ErrDuplicate
		}
		return model.Record{}, err
	}
	return rec, nil
}

// ListRecords returns a session's records by ascending scan time.
func (r *Repository) ListRecords(ctx context.Context, sessionID string) ([]model.Record, error) {
	rows, err := r.db.QueryContext(ctx, r.q(`
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY scan_date ASC, scan_time ASC, created_at ASC
	`), sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []model.Record
	for rows.Next() {
		var rec model.Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, rec *model.Record) error {
	var status string
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentName, &rec.StudentID, &status, &rec.ScanDate, &rec.ScanTime, &rec.CreatedAt); err != nil {
		return err
	}
	rec.Status = model.Status(status)
	return nil
}
