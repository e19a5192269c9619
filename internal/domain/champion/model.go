package champion

import "context"

// Champion is one entry of the static champion catalog.
type Champion struct {
	ID   int
	Key  string
	Name string
}

// Catalog maps numeric champion ids to display names.
type Catalog interface {
	// Name returns false when the id is not in the current catalog.
	Name(ctx context.Context, championID int) (string, bool, error)
}
