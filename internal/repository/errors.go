package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrInvalidArgument means a caller-supplied parameter violates a
	// precondition. Surfaced immediately, never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForeignKeyViolation means the referenced channel or post does
	// not exist. The caller decides whether to create the parent first.
	ErrForeignKeyViolation = errors.New("referenced row does not exist")

	// ErrDuplicateSnapshot means a snapshot with the same
	// (channel_id, msg_id, snapshot_time) is already recorded. Collectors
	// should treat it as idempotent success, not crash their loop.
	ErrDuplicateSnapshot = errors.New("metric snapshot already recorded")
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// translateError maps driver-level constraint failures to the typed
// errors above. Anything else (connection loss, serialization conflicts)
// passes through for the caller's own retry policy.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pqForeignKeyViolation:
		return ErrForeignKeyViolation
	case pqUniqueViolation:
		return ErrDuplicateSnapshot
	}
	return err
}
