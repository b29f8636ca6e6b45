package db

import "errors"

// Domain-level database error sentinels.
var (
	// Project errors
	ErrProjectNotFound = errors.New("project not found")

	// Keyword target errors
	ErrKeywordTargetNotFound  = errors.New("keyword target not found")
	ErrDuplicateKeywordTarget = errors.New("keyword target already exists")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
