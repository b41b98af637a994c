package object

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrObjectNotFound reports a missing object hash.
	ErrObjectNotFound = errors.New("object not found")
	// ErrRefNotFound reports a missing named reference.
	ErrRefNotFound = errors.New("reference not found")
	// ErrRefCASMismatch reports a failed compare-and-swap on a reference.
	ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
	// ErrInvalidRefName reports a reference name that is empty, absolute,
	// or contains "." or ".." segments.
	ErrInvalidRefName = errors.New("invalid reference name")
)

// validateRefName rejects names that could resolve outside the store
// root when mapped onto the filesystem. Names are slash-separated with
// non-empty segments; "." and ".." are forbidden everywhere.
func validateRefName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") {
		return fmt.Errorf("ref %q: %w", name, ErrInvalidRefName)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("ref %q: %w", name, ErrInvalidRefName)
		}
	}
	return nil
}

// Backend persists raw objects and mutable references. Objects are
// immutable once written; references are the only mutable state.
//
// WriteRef semantics: expectOld == nil is an unconditional write;
// a non-nil empty hash requires the ref to not exist yet; any other
// value requires the current ref to match it. Mismatches return an
// error wrapping ErrRefCASMismatch.
type Backend interface {
	PutObject(h Hash, data []byte) error
	GetObject(h Hash) ([]byte, error)
	HasObject(h Hash) bool

	ReadRef(name string) (Hash, error)
	WriteRef(name string, h Hash, expectOld *Hash) error
	DeleteRef(name string) error
	ListRefs(prefix string) (map[string]Hash, error)

	Close() error
}
