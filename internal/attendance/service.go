package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"qrattend/internal/metrics"
	"qrattend/internal/model"
	"qrattend/internal/scan"
)

// DefaultCutoff is 10:00 local time.
const DefaultCutoff = 10 * time.Hour

// Decision is an accepted scan.
type Decision struct {
	Status model.Status
	Record model.Record
}

// Result is the outcome of one scan event. SessionID is the session the
// scan ran against, set even when the decision was rejected, so the caller
// can carry it into the next call.
type Result struct {
	Candidate scan.Candidate
	SessionID string
	Decision  Decision
}

// Service owns the session lifecycle and the attendance decision.
// It holds no per-run state; the active session id is always passed in.
type Service struct {
	store  Store
	cutoff time.Duration
	loc    *time.Location
}

// NewService creates a service backed by a store. cutoff is the offset from
// local midnight after which a scan is late; zero means midnight and only a
// negative cutoff selects DefaultCutoff.
func NewService(store Store, cutoff time.Duration, loc *time.Location) *Service {
	if cutoff < 0 {
		cutoff = DefaultCutoff
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, cutoff: cutoff, loc: loc}
}

// Location is the zone calendar dates are derived in.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns the calendar date of now in the service location.
func (s *Service) Today(now time.Time) string {
	return now.In(s.loc).Format(model.DateLayout)
}

// EnsureSession returns existingID unchanged when set. Otherwise it creates
// a session from meta, which must be complete.
func (s *Service) EnsureSession(ctx context.Context, meta model.SessionMeta, existingID string, now time.Time) (string, error) {
	if existingID != "" {
		return existingID, nil
	}
	meta = normalize(meta)
	if !meta.Complete() {
		return "", ErrIncompleteSession
	}

	local := now.In(s.loc)
	created, err := s.store.CreateSession(ctx, model.Session{
		College:     meta.College,
		Instructor:  meta.Instructor,
		Section:     meta.Section,
		Course:      meta.Course,
		SessionDate: local.Format(model.DateLayout),
		CreatedAt:   now.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionCreate, err)
	}
	metrics.SessionCreated()
	return created.ID, nil
}

// Classify returns late iff now is strictly after the cutoff on now's
// local calendar date.
func (s *Service) Classify(now time.Time) model.Status {
	local := now.In(s.loc)
	y, m, d := local.Date()
	h := int(s.cutoff / time.Hour)
	mi := int(s.cutoff % time.Hour / time.Minute)
	sec := int(s.cutoff % time.Minute / time.Second)
	cutoff := time.Date(y, m, d, h, mi, sec, 0, s.loc)
	if local.After(cutoff) {
		return model.StatusLate
	}
	return model.StatusPresent
}

// Decide checks the session, rejects a second scan of the same student on
// the same day, classifies the scan and persists the record.
func (s *Service) Decide(ctx context.Context, c scan.Candidate, sessionID string, now time.Time) (Decision, error) {
	if sessionID == "" {
		return Decision{}, ErrNoActiveSession
	}
	if !c.Valid() {
		return Decision{}, ErrInvalidPayload
	}

	date := s.Today(now)
	existing, err := s.store.FindRecord(ctx, sessionID, c.StudentID, date)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: duplicate check: %w", ErrPersistence, err)
	}
	if existing != nil {
		return Decision{}, ErrDuplicate
	}

	status := s.Classify(now)
	rec, err := s.store.InsertRecord(ctx, model.Record{
		SessionID:   sessionID,
		StudentName: c.Name,
		StudentID:   c.StudentID,
		Status:      status,
		ScanDate:    date,
		ScanTime:    now.In(s.loc).Format(model.ClockLayout),
		CreatedAt:   now.UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return Decision{}, ErrDuplicate
		}
		return Decision{}, fmt.Errorf("%w: %w", ErrRecordCreate, err)
	}
	return Decision{Status: status, Record: rec}, nil
}

// Record runs an already parsed candidate through session materialization
// and the decision. A non-empty sessionID must name a stored session;
// otherwise the scan is rejected with ErrNoActiveSession and the result
// carries no session id.
func (s *Service) Record(ctx context.Context, c scan.Candidate, meta model.SessionMeta, sessionID string, now time.Time) (Result, error) {
	res := Result{Candidate: c, SessionID: sessionID}
	if !c.Valid() {
		return res, ErrInvalidPayload
	}

	if sessionID != "" {
		sess, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return res, fmt.Errorf("%w: session lookup: %w", ErrPersistence, err)
		}
		if sess == nil {
			res.SessionID = ""
			return res, fmt.Errorf("%w: unknown session %q", ErrNoActiveSession, sessionID)
		}
	}

	id, err := s.EnsureSession(ctx, meta, sessionID, now)
	if err != nil {
		return res, err
	}
	res.SessionID = id

	d, err := s.Decide(ctx, c, id, now)
	if err != nil {
		return res, err
	}
	res.Decision = d
	return res, nil
}

// Scan parses raw and records it.
func (s *Service) Scan(ctx context.Context, raw string, meta model.SessionMeta, sessionID string, now time.Time) (Result, error) {
	return s.Record(ctx, scan.Parse(raw), meta, sessionID, now)
}

// Session returns the session by id, or nil.
func (s *Service) Session(ctx context.Context, id string) (*model.Session, error) {
	return s.store.GetSession(ctx, id)
}

// LatestSession returns the most recent session created on date, or nil.
func (s *Service) LatestSession(ctx context.Context, date string) (*model.Session, error) {
	return s.store.LatestSession(ctx, date)
}

// Records lists a session's records by scan time.
func (s *Service) Records(ctx context.Context, sessionID string) ([]model.Record, error) {
	return s.store.ListRecords(ctx, sessionID)
}

func normalize(m model.SessionMeta) model.SessionMeta {
	return model.SessionMeta{
		College:    strings.TrimSpace(m.College),
		Instructor: strings.TrimSpace(m.Instructor),
		Section:    strings.TrimSpace(m.Section),
		Course:     strings.TrimSpace(m.Course),
	}
}
