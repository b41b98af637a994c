package object

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// fsBackend stores objects with a 2-character fan-out directory layout
// (objects/ab/cdef0123...) and references as files under refs/. Object
// writes and ref updates are atomic via temp-file + rename; ref
// compare-and-swap uses an O_EXCL lockfile next to the ref.
type fsBackend struct {
	root string
}

// NewFSBackend creates a filesystem backend rooted at dir. The objects/
// and refs/ subdirectories are created lazily.
func NewFSBackend(dir string) Backend {
	return &fsBackend{root: dir}
}

func (b *fsBackend) objectPath(h Hash) string {
	return filepath.Join(b.root, "objects", string(h[:2]), string(h[2:]))
}

func (b *fsBackend) refPath(name string) string {
	return filepath.Join(b.root, filepath.FromSlash(name))
}

func (b *fsBackend) HasObject(h Hash) bool {
	_, err := os.Stat(b.objectPath(h))
	return err == nil
}

func (b *fsBackend) PutObject(h Hash, data []byte) error {
	// Fast path: already exists.
	if b.HasObject(h) {
		return nil
	}

	dir := filepath.Join(b.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}

	// Atomic write via temp + rename.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write close: %w", err)
	}
	if err := os.Rename(tmpName, b.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write rename: %w", err)
	}
	return nil
}

func (b *fsBackend) GetObject(h Hash) ([]byte, error) {
	data, err := os.ReadFile(b.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return data, nil
}

func (b *fsBackend) ReadRef(name string) (Hash, error) {
	if err := validateRefName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(b.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("read ref %q: %w", name, ErrRefNotFound)
		}
		return "", fmt.Errorf("read ref %q: %w", name, err)
	}
	return Hash(strings.TrimRight(string(data), "\n")), nil
}

// WriteRef writes a hash to the named ref file using lockfile + rename
// atomic semantics. See Backend for the expectOld contract.
func (b *fsBackend) WriteRef(name string, h Hash, expectOld *Hash) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	refPath := b.refPath(name)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		_ = os.Remove(lockPath)
	}()

	if expectOld != nil {
		oldHash, err := b.ReadRef(name)
		if err != nil && !errors.Is(err, ErrRefNotFound) {
			return fmt.Errorf("update ref %q: read old hash: %w", name, err)
		}
		if oldHash != *expectOld {
			return fmt.Errorf(
				"update ref %q: %w (expected %q, found %q)",
				name, ErrRefCASMismatch, *expectOld, oldHash,
			)
		}
	}

	if _, err := lockFile.WriteString(string(h) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	return nil
}

func (b *fsBackend) DeleteRef(name string) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	if err := os.Remove(b.refPath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete ref %q: %w", name, ErrRefNotFound)
		}
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

// ListRefs walks refs under the given slash-separated prefix (e.g.
// "refs/heads"). Names are returned relative to the backend root.
func (b *fsBackend) ListRefs(prefix string) (map[string]Hash, error) {
	if err := validateRefName(prefix); err != nil {
		return nil, err
	}
	dir := filepath.Join(b.root, filepath.FromSlash(prefix))

	refs := make(map[string]Hash)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || strings.HasSuffix(path, ".lock") {
			return nil
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = Hash(strings.TrimRight(string(data), "\n"))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

func (b *fsBackend) Close() error { return nil }

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}
