package workspace

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odvcencio/treedb/pkg/object"
)

// Locked reports whether the advisory lock with the given id is held.
// Existence of the lock reference means held; its target is irrelevant.
func (ws *Workspace) Locked(id string) (bool, error) {
	_, err := ws.store.ResolveRef(lockRefPrefix + id)
	if err != nil {
		if errors.Is(err, object.ErrRefNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// WithLock runs fn while holding the advisory lock named id. The lock is
// a reference under refs/locks/ pointing at a blob with a random token,
// so release only ever removes a lock this call created. Acquisition is
// create-if-absent, retried at the configured poll interval until the
// configured wall-clock budget elapses (ErrLockWaitTimeout). The lock is
// released on every exit path, including panics.
//
// This is advisory, not crash-safe: a process that dies while holding
// the lock leaves it held until someone deletes the reference.
func (ws *Workspace) WithLock(id string, fn func() error) error {
	token, err := ws.store.CreateBlob([]byte(uuid.NewString()))
	if err != nil {
		return fmt.Errorf("lock %q: %w", id, err)
	}

	ref := lockRefPrefix + id
	deadline := time.Now().Add(ws.cfg.LockWaitTimeout.Duration)
	for {
		err := ws.store.CreateRef(ref, token)
		if err == nil {
			break
		}
		if !errors.Is(err, object.ErrRefCASMismatch) {
			return fmt.Errorf("lock %q: %w", id, err)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("lock %q: %w", id, ErrLockWaitTimeout)
		}
		time.Sleep(ws.cfg.LockWaitInterval.Duration)
	}
	ws.log.Debug("lock acquired", zap.String("id", id))

	defer ws.release(id, token)
	return fn()
}

// release deletes the lock reference, but only while it still points at
// this workspace's token.
func (ws *Workspace) release(id string, token object.Hash) {
	ref := lockRefPrefix + id
	current, err := ws.store.ResolveRef(ref)
	if err != nil || current != token {
		ws.log.Warn("lock not released: not held by this workspace",
			zap.String("id", id),
		)
		return
	}
	if err := ws.store.DeleteRef(ref); err != nil {
		ws.log.Warn("lock release failed", zap.String("id", id), zap.Error(err))
		return
	}
	ws.log.Debug("lock released", zap.String("id", id))
}
