package monitor

import "github.com/wagoodman/go-progress"

// Import tracks a single batch import: every row read, and the rows that made it into the store.
type Import struct {
	RowsProcessed progress.Monitorable
	RowsCreated   progress.Monitorable
}

// Mutation describes a committed change to one or more entities.
type Mutation struct {
	EntityType string
	Action     string
	Count      int
}
