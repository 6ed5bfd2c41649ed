package session

import "context"

// Store persists sessions. Implementations: SQLiteStore for the server,
// MemoryStore when no database path is configured and in tests.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
