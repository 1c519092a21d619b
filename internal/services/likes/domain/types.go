// Package domain holds the core types and ports for the likes backfill
package domain

// LegacyLikes is one content record's legacy liked_by payload, raw.
// Decoding stays out of the cursor so one record's junk cannot stop the scan;
// nulls, empties, duplicates, and non-string entries are expected inputs
type LegacyLikes struct {
	PostID string
	Raw    []byte
}

// Report aggregates the outcome of one likes backfill run
type Report struct {
	Posts    int
	Inserted int
	Deduped  int
	Skipped  int
}
