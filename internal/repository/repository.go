// internal/repository/repository.go
package repository

import "errors"

// Storage-level failures. Finders return (nil, nil) on a miss; these are
// reserved for the conditional writes, whose guards are evaluated inside
// the same atomic unit as the change.
var (
	ErrNotFound          = errors.New("record not found")
	ErrGroupFull         = errors.New("group is at capacity")
	ErrRequestNotPending = errors.New("join request is not pending")
	ErrDuplicatePending  = errors.New("requester already has a pending request")
)
