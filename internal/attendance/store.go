package attendance

import (
	"context"

	"qrattend/internal/model"
)

// Store is the persistence collaborator holding sessions and records.
//
// Lookups return (nil, nil) when nothing matches. InsertRecord returns
// ErrDuplicate when a record for the same (session, student, date) exists.
type Store interface {
	CreateSession(ctx context.Context, s model.Session) (model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	LatestSession(ctx context.Context, date string) (*model.Session, error)

	FindRecord(ctx context.Context, sessionID, studentID, date string) (*model.Record, error)
	InsertRecord(ctx context.Context, r model.Record) (model.Record, error)
	ListRecords(ctx context.Context, sessionID string) ([]model.Record, error)
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryStore)(nil)
)
