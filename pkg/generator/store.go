package generator

import "context"

// Record marks one successful run of a generator.
type Record struct {
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"`
}

type Search struct {
	GeneratorName string
	Latest        bool
}

// Store keeps generation records. Search returns the most recent first.
type Store interface {
	Search(ctx context.Context, s Search) ([]Record, error)
	Save(ctx context.Context, r Record) error
}
