package domain

import "context"

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context) (Report, error)
}

// LikesIter is a lazy forward-only cursor over posts with legacy likes
type LikesIter interface {
	Next() (LegacyLikes, bool, error)
	Close()
}

// StorageRepo is the storage repository interface
type StorageRepo interface {
	// Guard verifies the expected tables exist before any scan starts
	Guard(ctx context.Context) error

	// ScanLegacyLikes opens a cursor over posts with a non-empty liked_by array
	ScanLegacyLikes(ctx context.Context) (LikesIter, error)

	// InsertLike performs the insert-if-absent write for (postID, userID).
	// true means a row was created; false means the pair already existed
	InsertLike(ctx context.Context, postID, userID string) (bool, error)
}
