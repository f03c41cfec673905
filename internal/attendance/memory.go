package attendance

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"qrattend/internal/model"
)

// MemoryStore is a map-backed Store for dev runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	records  []model.Record
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]model.Session)}
}

func (m *MemoryStore) CreateSession(_ context.Context, s model.Session) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) LatestSession(_ context.Context, date string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Session
	for _, s := range m.sessions {
		if s.SessionDate != date {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			s := s
			latest = &s
		}
	}
	return latest, nil
}

func (m *MemoryStore) FindRecord(_ context.Context, sessionID, studentID, date string) (*model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.find(sessionID, studentID, date); i >= 0 {
		rec := m.records[i]
		return &rec, nil
	}
	return nil, nil
}

func (m *MemoryStore) InsertRecord(_ context.Context, rec model.Record) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(rec.SessionID, rec.StudentID, rec.ScanDate) >= 0 {
		return model.Record{}, ErrDuplicate
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *MemoryStore) ListRecords(_ context.Context, sessionID string) ([]model.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []model.Record
	for _, rec := range m.records {
		if rec.SessionID == sessionID {
			res = append(res, rec)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].ScanDate != res[j].ScanDate {
			return res[i].ScanDate < res[j].ScanDate
		}
		return res[i].ScanTime < res[j].ScanTime
	})
	return res, nil
}

func (m *MemoryStore) find(sessionID, studentID, date string) int {
	for i, rec := range m.records {
		if rec.SessionID == sessionID && rec.StudentID == studentID && rec.ScanDate == date {
			return i
		}
	}
	return -1
}
