package attendance_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"qrattend/internal/attendance"
	"qrattend/internal/model"
)

type cueFunc func(ctx context.Context) error

func (f cueFunc) Play(ctx context.Context) error { return f(ctx) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStation(t *testing.T) {
	t.Run("adopts the session created by the first valid scan", func(t *testing.T) {
		store := attendance.NewMemoryStore()
		st := attendance.NewStation(
			newService(store), fullMeta, "",
			attendance.WithClock(fixedClock(at(12, 9, 15, 0, 0))),
			attendance.WithLogger(quietLogger()),
		)

		if n := st.Handle(context.Background(), "not|"); n.Title != "Invalid QR Code" {
			t.Errorf("invalid notice: %+v", n)
		}
		if st.SessionID() != "" {
			t.Errorf("invalid scan must not create a session")
		}

		n := st.Handle(context.Background(), "Abebe Kebede|HU001")
		if n.Level != attendance.LevelSuccess || n.Status != model.StatusPresent {
			t.Errorf("accepted notice: %+v", n)
		}
		first := st.SessionID()
		if first == "" {
			t.Fatal("session should be adopted")
		}

		n = st.Handle(context.Background(), "Almaz Tadesse|HU002")
		if n.Level != attendance.LevelSuccess {
			t.Errorf("second student: %+v", n)
		}
		if st.SessionID() != first {
			t.Errorf("session switched mid-run: (actual, expected) = (%s, %s)", st.SessionID(), first)
		}

		if n := st.Handle(context.Background(), "HU001"); n.Title != "Already Scanned" {
			t.Errorf("duplicate notice: %+v", n)
		}

		recs, _ := store.ListRecords(context.Background(), first)
		if len(recs) != 2 {
			t.Errorf("records: %+v", recs)
		}
	})

	t.Run("incomplete metadata keeps the run without a session", func(t *testing.T) {
		st := attendance.NewStation(
			newService(attendance.NewMemoryStore()), model.SessionMeta{College: "c"}, "",
			attendance.WithLogger(quietLogger()),
		)
		n := st.Handle(context.Background(), "HU001")
		if n.Title != "Incomplete Information" {
			t.Errorf("notice: %+v", n)
		}
		if st.SessionID() != "" {
			t.Errorf("no session expected")
		}
	})

	t.Run("cue plays only on acceptance and its failure is swallowed", func(t *testing.T) {
		played := 0
		cue := cueFunc(func(context.Context) error {
			played++
			return errors.New("no audio device")
		})
		st := attendance.NewStation(
			newService(attendance.NewMemoryStore()), fullMeta, "",
			attendance.WithCue(cue),
			attendance.WithClock(fixedClock(at(12, 10, 5, 0, 0))),
			attendance.WithLogger(quietLogger()),
		)

		n := st.Handle(context.Background(), "HU003")
		if n.Level != attendance.LevelSuccess || n.Status != model.StatusLate {
			t.Errorf("notice: %+v", n)
		}
		st.Handle(context.Background(), "HU003")
		st.Handle(context.Background(), "")
		if played != 1 {
			t.Errorf("cue plays: (actual, expected) = (%d, %d)", played, 1)
		}
	})

	t.Run("cancelled context does not abort a parsed scan", func(t *testing.T) {
		store := attendance.NewMemoryStore()
		st := attendance.NewStation(
			newService(store), fullMeta, "",
			attendance.WithClock(fixedClock(at(12, 9, 0, 0, 0))),
			attendance.WithLogger(quietLogger()),
		)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		n := st.Handle(ctx, "Dawit Haile|HU003")
		if n.Level != attendance.LevelSuccess {
			t.Errorf("notice: %+v", n)
		}
		recs, _ := store.ListRecords(context.Background(), st.SessionID())
		if len(recs) != 1 {
			t.Errorf("record should be written: %+v", recs)
		}
	})

	t.Run("resumes an existing session", func(t *testing.T) {
		store := attendance.NewMemoryStore()
		if _, err := store.CreateSession(context.Background(), model.Session{ID: "resumed", SessionDate: "2024-09-12"}); err != nil {
			t.Fatal(err)
		}
		st := attendance.NewStation(newService(store), model.SessionMeta{}, "resumed",
			attendance.WithLogger(quietLogger()))
		st.Handle(context.Background(), "HU001")
		recs, _ := store.ListRecords(context.Background(), "resumed")
		if len(recs) != 1 {
			t.Errorf("records: %+v", recs)
		}
	})

	t.Run("unknown configured session rejects scans", func(t *testing.T) {
		store := attendance.NewMemoryStore()
		st := attendance.NewStation(newService(store), fullMeta, "no-such-session",
			attendance.WithClock(fixedClock(at(12, 9, 15, 0, 0))),
			attendance.WithLogger(quietLogger()))

		if n := st.Handle(context.Background(), "Abebe Kebede|HU001"); n.Title != "No Active Session" {
			t.Errorf("notice: %+v", n)
		}
		if st.SessionID() != "no-such-session" {
			t.Errorf("session id changed: %q", st.SessionID())
		}
		if recs, _ := store.ListRecords(context.Background(), "no-such-session"); len(recs) != 0 {
			t.Errorf("orphan records: %+v", recs)
		}
		if latest, _ := store.LatestSession(context.Background(), "2024-09-12"); latest != nil {
			t.Errorf("no session should be created: %+v", latest)
		}
	})

	t.Run("capture failure notice", func(t *testing.T) {
		st := attendance.NewStation(newService(attendance.NewMemoryStore()), fullMeta, "",
			attendance.WithLogger(quietLogger()))
		if n := st.Fail(errors.New("permission denied")); n.Title != "Camera Unavailable" {
			t.Errorf("notice: %+v", n)
		}
	})
}

func TestBellCue(t *testing.T) {
	var buf bytes.Buffer
	if err := (attendance.BellCue{W: &buf}).Play(context.Background()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\a" {
		t.Errorf("(actual, expected) = (%q, %q)", buf.String(), "\a")
	}
}
