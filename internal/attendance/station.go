package attendance

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"qrattend/internal/metrics"
	"qrattend/internal/model"
	"qrattend/internal/scan"
)

// Cue plays the audible confirmation for an accepted scan.
type Cue interface {
	Play(ctx context.Context) error
}

// BellCue rings the terminal bell on W.
type BellCue struct {
	W io.Writer
}

// Play writes a BEL character.
func (b BellCue) Play(context.Context) error {
	_, err := b.W.Write([]byte{'\a'})
	return err
}

const cueTimeout = 500 * time.Millisecond

// Station is one scanning run: the operator's session metadata and the
// single active session id, which it adopts on the first successful session
// creation and never changes afterwards.
//
// A Station is not safe for concurrent use; scan events must be handled one
// at a time.
type Station struct {
	svc       *Service
	meta      model.SessionMeta
	sessionID string
	cue       Cue
	now       func() time.Time
	log       *logrus.Logger
}

// StationOption configures a Station.
type StationOption func(*Station)

// WithCue sets the cue played after an accepted scan.
func WithCue(c Cue) StationOption { return func(s *Station) { s.cue = c } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StationOption { return func(s *Station) { s.now = now } }

// WithLogger sets the logger for scan outcomes.
func WithLogger(l *logrus.Logger) StationOption { return func(s *Station) { s.log = l } }

// NewStation creates a run. sessionID may be empty, in which case the
// session is created lazily from meta on the first valid scan.
func NewStation(svc *Service, meta model.SessionMeta, sessionID string, opts ...StationOption) *Station {
	st := &Station{
		svc:       svc,
		meta:      meta,
		sessionID: sessionID,
		now:       time.Now,
		log:       logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(st)
	}
	return st
}

// SessionID returns the active session id, empty until one exists.
func (st *Station) SessionID() string { return st.sessionID }

// Handle processes one decoded payload to its terminal state and returns the
// notice for it. Once the payload parses, ctx cancellation no longer aborts
// the event so a started write is not interrupted.
func (st *Station) Handle(ctx context.Context, raw string) Notice {
	start := st.now()
	c := scan.Parse(raw)
	if !c.Valid() {
		return st.finish(c, ErrInvalidPayload, Decision{}, start)
	}

	res, err := st.svc.Record(context.WithoutCancel(ctx), c, st.meta, st.sessionID, start)
	if st.sessionID == "" && res.SessionID != "" {
		st.sessionID = res.SessionID
		st.log.WithField("session_id", st.sessionID).Info("session started")
	}
	if err == nil {
		st.playCue(ctx)
	}
	return st.finish(c, err, res.Decision, start)
}

// Fail reports a capture-side error, such as the camera failing to start.
func (st *Station) Fail(err error) Notice {
	st.log.WithError(err).Warn("capture error")
	metrics.ObserveScan(Outcome(ErrCaptureUnavailable), 0)
	return NoticeFor(ErrCaptureUnavailable)
}

func (st *Station) finish(c scan.Candidate, err error, d Decision, start time.Time) Notice {
	outcome := Outcome(err)
	metrics.ObserveScan(outcome, st.now().Sub(start))

	entry := st.log.WithFields(logrus.Fields{
		"outcome":    outcome,
		"student_id": c.StudentID,
		"session_id": st.sessionID,
		"payload":    c.Kind.String(),
	})
	if err != nil {
		entry.WithError(err).Info("scan rejected")
		return NoticeFor(err)
	}
	entry.WithField("status", d.Status).Info("scan accepted")
	return Accepted(d.Record)
}

// playCue never affects the scan outcome.
func (st *Station) playCue(ctx context.Context) {
	if st.cue == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cueTimeout)
	defer cancel()
	if err := st.cue.Play(ctx); err != nil {
		st.log.WithError(err).Debug("cue failed")
	}
}
