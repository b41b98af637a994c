package workspace

import (
	"errors"

	"github.com/odvcencio/treedb/pkg/object"
)

var (
	// ErrStoreNotFound reports that no store exists at (or above) the
	// requested location. Fatal at construction.
	ErrStoreNotFound = errors.New("store not found")

	// ErrRefNotFound reports a missing branch, lock, or start-point
	// reference. Recoverable; surfaced to the caller.
	ErrRefNotFound = object.ErrRefNotFound

	// ErrInvalidRefTarget reports a reference that resolved to something
	// other than a commit where a commit was required.
	ErrInvalidRefTarget = errors.New("reference does not point to a commit")

	// ErrPendingChanges reports an operation that needs a clean index
	// while uncommitted changes exist. Commit or discard first.
	ErrPendingChanges = errors.New("workspace has pending changes")

	// ErrLockWaitTimeout reports that an advisory lock stayed contended
	// for the whole configured wait budget.
	ErrLockWaitTimeout = errors.New("lock wait timeout exceeded")
)
