package storage

import (
	"context"
	"time"
)

// Run is one recorded compilation.
type Run struct {
	ID            string
	Project       string
	CreatedAt     time.Time
	CorpusPath    string
	TemplatesPath string
	LuisPath      string
	Intents       int
	Utterances    int
	Templates     int
	Warnings      int
	Report        []byte
}

// RunStore persists compilation history.
type RunStore interface {
	// SaveRun inserts a run, assigning an id when it has none.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by id.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the most recent runs first, optionally filtered by project.
	ListRuns(ctx context.Context, project string, limit int) ([]Run, error)

	Close() error
}
