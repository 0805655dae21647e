package analyses

import "errors"

var (
	ErrNotFound  = errors.New("analysis not found")
	ErrNotQueued = errors.New("analysis is not queued")
)
