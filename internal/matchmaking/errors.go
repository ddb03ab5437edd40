// internal/matchmaking/errors.go

package matchmaking

import "errors"

var (
	ErrMissingIntent    = errors.New("intent mode is required")
	ErrNotQueued        = errors.New("user is not in the queue")
	ErrAlreadyInSession = errors.New("user is already in an active session")
)
