package sagalog

import "context"

// Repository is the port for persisting saga log entries. The orchestrator
// depends on this abstraction so the log can live in SQLite, Postgres, or
// an in-memory slice in tests.
type Repository interface {
	// Save appends a new log entry. The table is an append-only audit log,
	// never an upsert.
	Save(ctx context.Context, entry *Entry) error
}
