// Package domain holds the core types and ports for the slug backfill
package domain

// Post is the projection of a content record the slug backfill needs
type Post struct {
	ID    string
	Title string
	Slug  string
}

// Report aggregates the outcome of one slug backfill run
type Report struct {
	Scanned  int
	Migrated int
	Skipped  int
}
