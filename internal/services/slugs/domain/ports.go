package domain

import "context"

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context) (Report, error)
}

// PostIter is a lazy forward-only cursor over matched posts
// Next returns ok=false once the set is exhausted or after an error;
// the final error, if any, surfaces on the last Next call
type PostIter interface {
	Next() (Post, bool, error)
	Close()
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	// Guard verifies the expected tables exist before any scan starts
	Guard(ctx context.Context) error

	// ScanMissingSlug opens a cursor over posts with a missing or empty slug
	ScanMissingSlug(ctx context.Context) (PostIter, error)

	// SlugTaken reports whether any post other than excludeID holds slug
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)

	// ClaimSlug conditionally assigns slug to the post; false means the
	// slug was taken by another row between probe and write
	ClaimSlug(ctx context.Context, id, slug string) (bool, error)
}
