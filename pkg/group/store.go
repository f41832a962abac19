package group

import "context"

// Reader is the read-only view of stored groups handed to generators.
type Reader interface {
	// Search returns matching groups, most recent first.
	Search(ctx context.Context, s Search) ([]ResolvedGroupWithData, error)
}

// Store persists groups. Each Save is atomic for a single group.
type Store interface {
	Reader
	Save(ctx context.Context, g ResolvedGroupWithData) error
}
