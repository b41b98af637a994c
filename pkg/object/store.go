package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
)

// objectCacheSize bounds the in-memory decoded-object cache. Objects are
// immutable, so cached entries can never go stale.
const objectCacheSize = 4096

type cachedObject struct {
	objType ObjectType
	data    []byte
}

// Store is a content-addressed object store over a pluggable Backend.
// Payloads are framed as "type len\0content", hashed with SHA-256 over
// the uncompressed envelope, and compressed with zstd at rest.
type Store struct {
	backend Backend
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	cache   *lru.Cache[Hash, cachedObject]
}

// NewStore wraps a Backend in a Store.
func NewStore(backend Backend) (*Store, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("new store: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("new store: zstd decoder: %w", err)
	}
	cache, err := lru.New[Hash, cachedObject](objectCacheSize)
	if err != nil {
		return nil, fmt.Errorf("new store: cache: %w", err)
	}
	return &Store{backend: backend, enc: enc, dec: dec, cache: cache}, nil
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if _, ok := s.cache.Get(h); ok {
		return true
	}
	return s.backend.HasObject(h)
}

// Write stores an object and returns its content hash. Writing the same
// content twice is a no-op that yields the same hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)

	h := HashObject(objType, data)
	if s.Has(h) {
		return h, nil
	}

	if err := s.backend.PutObject(h, s.enc.EncodeAll(raw, nil)); err != nil {
		return "", err
	}
	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if c, ok := s.cache.Get(h); ok {
		return c.objType, c.data, nil
	}

	compressed, err := s.backend.GetObject(h)
	if err != nil {
		return "", nil, err
	}
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: decompress: %w", h, err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid format (no NUL)", h)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q", h, header)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", h, length, len(content))
	}

	s.cache.Add(h, cachedObject{objType: objType, data: content})
	return objType, content, nil
}

// Type returns the object type for a hash without interpreting its content.
func (s *Store) Type(h Hash) (ObjectType, error) {
	objType, _, err := s.Read(h)
	return objType, err
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// CreateBlob stores content as a new Blob and returns its hash.
func (s *Store) CreateBlob(content []byte) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(&Blob{Data: content}))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}

// ---------------------------------------------------------------------------
// References
// ---------------------------------------------------------------------------

// ResolveRef returns the hash the named reference points at.
func (s *Store) ResolveRef(name string) (Hash, error) {
	return s.backend.ReadRef(name)
}

// CreateRef creates a reference that must not already exist.
func (s *Store) CreateRef(name string, h Hash) error {
	none := Hash("")
	return s.backend.WriteRef(name, h, &none)
}

// UpdateRefCAS moves a reference to h. With a non-nil expectOld the update
// only succeeds when the reference currently matches it (an empty expected
// hash means "must not exist"); nil expectOld writes unconditionally.
func (s *Store) UpdateRefCAS(name string, h Hash, expectOld *Hash) error {
	return s.backend.WriteRef(name, h, expectOld)
}

// DeleteRef removes a reference.
func (s *Store) DeleteRef(name string) error {
	return s.backend.DeleteRef(name)
}

// ListRefs lists references under a slash-separated prefix.
func (s *Store) ListRefs(prefix string) (map[string]Hash, error) {
	return s.backend.ListRefs(prefix)
}
