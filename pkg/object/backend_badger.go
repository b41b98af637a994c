package object

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const (
	badgerObjectPrefix = "obj:"
	badgerRefPrefix    = "ref:"
)

// badgerBackend keeps objects and references as prefixed keys inside a
// single Badger database. Ref compare-and-swap rides on Badger's
// serializable transactions instead of lockfiles.
type badgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend opens (or creates) a Badger database at dir.
func NewBadgerBackend(dir string) (Backend, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &badgerBackend{db: db}, nil
}

func objectKey(h Hash) []byte { return []byte(badgerObjectPrefix + string(h)) }
func refKey(name string) []byte { return []byte(badgerRefPrefix + name) }

func (b *badgerBackend) PutObject(h Hash, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		// Objects are immutable: an existing key is already correct.
		if _, err := txn.Get(objectKey(h)); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(objectKey(h), data)
	})
}

func (b *badgerBackend) GetObject(h Hash) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(objectKey(h))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("object read %s: %w", h, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return out, nil
}

func (b *badgerBackend) HasObject(h Hash) bool {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(objectKey(h))
		return err
	})
	return err == nil
}

func (b *badgerBackend) ReadRef(name string) (Hash, error) {
	if err := validateRefName(name); err != nil {
		return "", err
	}
	var out Hash
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(refKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = Hash(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("read ref %q: %w", name, ErrRefNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read ref %q: %w", name, err)
	}
	return out, nil
}

func (b *badgerBackend) WriteRef(name string, h Hash, expectOld *Hash) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		if expectOld != nil {
			var old Hash
			item, err := txn.Get(refKey(name))
			switch {
			case err == nil:
				if err := item.Value(func(val []byte) error {
					old = Hash(val)
					return nil
				}); err != nil {
					return err
				}
			case errors.Is(err, badger.ErrKeyNotFound):
				old = ""
			default:
				return err
			}
			if old != *expectOld {
				return fmt.Errorf(
					"%w (expected %q, found %q)", ErrRefCASMismatch, *expectOld, old,
				)
			}
		}
		return txn.Set(refKey(name), []byte(h))
	})
	if err != nil {
		return fmt.Errorf("update ref %q: %w", name, err)
	}
	return nil
}

func (b *badgerBackend) DeleteRef(name string) error {
	if err := validateRefName(name); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(refKey(name)); err != nil {
			return err
		}
		return txn.Delete(refKey(name))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete ref %q: %w", name, ErrRefNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	return nil
}

func (b *badgerBackend) ListRefs(prefix string) (map[string]Hash, error) {
	refs := make(map[string]Hash)
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seek := []byte(badgerRefPrefix + prefix)
		for it.Seek(seek); it.ValidForPrefix(seek); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), badgerRefPrefix)
			if err := item.Value(func(val []byte) error {
				refs[name] = Hash(val)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

func (b *badgerBackend) Close() error {
	return b.db.Close()
}
