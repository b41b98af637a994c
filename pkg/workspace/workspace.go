// Package workspace layers a transactional, path-addressed data store on
// top of a content-addressed object store. Callers mutate an in-memory
// index tree; changes persist only when committed, as immutable
// parent-linked snapshots on a branch.
package workspace

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/odvcencio/treedb/pkg/object"
	"github.com/odvcencio/treedb/pkg/tree"
)

// storeDirName is the on-disk directory that marks a store root.
const storeDirName = ".treedb"

const (
	branchRefPrefix = "refs/heads/"
	lockRefPrefix   = "refs/locks/"
)

// CommitSigner signs canonical commit payload bytes and returns an
// encoded signature string persisted in the commit.
type CommitSigner func(payload []byte) (string, error)

// Workspace owns an in-memory index tree and a tracked branch, and
// coordinates add/commit/diff/lock/branch-switch operations against the
// object store. One Workspace instance has exclusive ownership of its
// index; the store's references are the only state shared with other
// instances.
type Workspace struct {
	store  *object.Store
	cfg    *Config
	root   string // store root directory, holds config.toml
	log    *zap.Logger
	signer CommitSigner

	head  string      // full ref name of the tracked branch
	index object.Hash // current index tree, replaced on every mutation
}

// Option customizes a Workspace.
type Option func(*Workspace)

// WithLogger attaches a structured logger. Default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(ws *Workspace) { ws.log = l }
}

// WithSigner makes every commit carry a signature over its payload.
func WithSigner(s CommitSigner) Option {
	return func(ws *Workspace) { ws.signer = s }
}

// Init creates a new store under dir and opens a workspace on it. The
// config is persisted next to the store data so later Opens agree on
// branch naming, identity, and backend choice.
func Init(dir string, cfg *Config, opts ...Option) (*Workspace, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}

	root := filepath.Join(dir, storeDirName)
	if _, err := os.Stat(root); err == nil {
		return nil, fmt.Errorf("init: store already exists at %s", root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", root, err)
	}
	if err := WriteConfig(filepath.Join(root, "config.toml"), cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return open(root, cfg, opts)
}

// Open searches upward from dir for a store and opens a workspace on it.
// The tracked branch is the configured default; if that branch has no
// commits yet the index starts as a fresh empty tree. Fails with
// ErrStoreNotFound when no store exists at or above dir.
func Open(dir string, opts ...Option) (*Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		root := filepath.Join(cur, storeDirName)
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			cfg, err := LoadConfig(filepath.Join(root, "config.toml"))
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return open(root, cfg, opts)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w", dir, ErrStoreNotFound)
		}
		cur = parent
	}
}

// open wires the backend, store, and initial index for a store root.
func open(root string, cfg *Config, opts []Option) (*Workspace, error) {
	backend, err := openBackend(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	store, err := object.NewStore(backend)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	ws := &Workspace{
		store: store,
		cfg:   cfg,
		root:  root,
		log:   zap.NewNop(),
		head:  branchRefPrefix + cfg.DefaultBranch,
	}
	for _, opt := range opts {
		opt(ws)
	}

	if err := ws.resetIndex(); err != nil {
		store.Close()
		return nil, err
	}

	ws.log.Debug("workspace opened",
		zap.String("branch", ws.head),
		zap.String("backend", cfg.Backend),
	)
	return ws, nil
}

func openBackend(root string, cfg *Config) (object.Backend, error) {
	switch cfg.Backend {
	case BackendFS:
		return object.NewFSBackend(root), nil
	case BackendBadger:
		return object.NewBadgerBackend(filepath.Join(root, "badger"))
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// resetIndex points the index at the tracked branch's tree, or at a
// fresh empty tree when the branch has no commits yet.
func (ws *Workspace) resetIndex() error {
	b, err := ws.Branch()
	if err != nil {
		return err
	}
	if b == nil {
		empty, err := ws.store.TreeBuilder().Write()
		if err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
		ws.index = empty
		return nil
	}
	ws.index = b.TreeHash
	return nil
}

// Close releases the underlying store.
func (ws *Workspace) Close() error {
	return ws.store.Close()
}

// Store exposes the underlying object store for read-side tooling.
func (ws *Workspace) Store() *object.Store { return ws.store }

// Index returns the current index tree hash.
func (ws *Workspace) Index() object.Hash { return ws.index }

// BranchName returns the short name of the tracked branch.
func (ws *Workspace) BranchName() string {
	return strings.TrimPrefix(ws.head, branchRefPrefix)
}

// Config returns the workspace configuration.
func (ws *Workspace) Config() *Config { return ws.cfg }

// CreateBranch creates branch name pointing at the commit startPoint
// resolves to. An empty startPoint means the current branch. The start
// point must exist (ErrRefNotFound) and must point at a commit
// (ErrInvalidRefTarget).
func (ws *Workspace) CreateBranch(name, startPoint string) error {
	ref := ws.head
	if startPoint != "" {
		ref = branchRefName(startPoint)
	}

	target, err := ws.store.ResolveRef(ref)
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	objType, err := ws.store.Type(target)
	if err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	if objType != object.TypeCommit {
		return fmt.Errorf("create branch %q from %q: %w", name, ref, ErrInvalidRefTarget)
	}

	if err := ws.store.CreateRef(branchRefPrefix+name, target); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	ws.log.Info("branch created",
		zap.String("name", name),
		zap.String("start", ref),
	)
	return nil
}

// SetBranch switches the workspace to another branch. It refuses with
// ErrPendingChanges while the index differs from the current branch tip,
// leaving the index untouched. On success the index is replaced with the
// new branch's tree.
func (ws *Workspace) SetBranch(name string) error {
	ref := branchRefName(name)
	if _, err := ws.store.ResolveRef(ref); err != nil {
		return fmt.Errorf("set branch %q: %w", name, err)
	}

	dirty, err := ws.HasChanges()
	if err != nil {
		return fmt.Errorf("set branch %q: %w", name, err)
	}
	if dirty {
		return fmt.Errorf("set branch %q: commit or discard pending changes first: %w", name, ErrPendingChanges)
	}

	ws.head = ref
	ws.cfg.DefaultBranch = ws.BranchName()
	if err := ws.resetIndex(); err != nil {
		return fmt.Errorf("set branch %q: %w", name, err)
	}
	ws.log.Info("branch switched", zap.String("name", name))
	return nil
}

// SaveConfig persists the current configuration, including the tracked
// branch, back to the store's config file.
func (ws *Workspace) SaveConfig() error {
	return WriteConfig(filepath.Join(ws.root, "config.toml"), ws.cfg)
}

// Add places entries as direct children of the directory named by the
// slash-separated path, replacing the index with the rebuilt tree. No
// persisted reference is touched.
func (ws *Workspace) Add(dir string, entries []object.TreeEntry) error {
	out, err := tree.BuildPath(ws.store, dir, entries, ws.index)
	if err != nil {
		return fmt.Errorf("add %q: %w", dir, err)
	}
	ws.index = out
	return nil
}

// AddBlob stores content as a blob and adds it to the index at the given
// full path (directory plus leaf name). It returns the new blob's hash.
func (ws *Workspace) AddBlob(fullPath string, content []byte) (object.Hash, error) {
	trimmed := strings.Trim(fullPath, "/")
	dir, name := path.Split(trimmed)
	if name == "" {
		return "", fmt.Errorf("add blob: path %q has no leaf name", fullPath)
	}

	blob, err := ws.store.CreateBlob(content)
	if err != nil {
		return "", fmt.Errorf("add blob %q: %w", fullPath, err)
	}
	entry := object.TreeEntry{Name: name, Kind: object.KindBlob, Hash: blob}
	if err := ws.Add(dir, []object.TreeEntry{entry}); err != nil {
		return "", err
	}
	return blob, nil
}

// Diff returns the structural difference between the tracked branch's
// tree (the empty tree when the branch has no commits yet) and the
// index. Pure read; no side effects.
func (ws *Workspace) Diff() ([]tree.Change, error) {
	base := object.Hash("")
	b, err := ws.Branch()
	if err != nil {
		return nil, err
	}
	if b != nil {
		base = b.TreeHash
	}
	return tree.Diff(ws.store, base, ws.index)
}

// HasChanges reports whether the index differs from the branch tip. This
// predicate alone decides clean versus dirty.
func (ws *Workspace) HasChanges() (bool, error) {
	changes, err := ws.Diff()
	if err != nil {
		return false, err
	}
	return len(changes) > 0, nil
}

// Commit persists the index as a new commit on the tracked branch and
// advances the branch reference to it with a compare-and-swap against
// the tip observed during this call, so a concurrent advance surfaces as
// an error instead of being overwritten. A clean index is a deliberate
// no-op returning an empty hash. Nil author or committer fall back to
// the configured identity; a nil committer falls back to the author.
func (ws *Workspace) Commit(message string, author, committer *object.Signature) (object.Hash, error) {
	changes, err := ws.Diff()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if len(changes) == 0 {
		return "", nil
	}

	b, err := ws.Branch()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	var parents []object.Hash
	expectOld := object.Hash("")
	if b != nil {
		parents = []object.Hash{b.Head}
		expectOld = b.Head
	}

	if author == nil {
		sig := ws.defaultSignature()
		author = &sig
	}
	if committer == nil {
		committer = author
	}

	commit := &object.CommitObj{
		TreeHash:  ws.index,
		Parents:   parents,
		Author:    *author,
		Committer: *committer,
		Message:   message,
	}
	if ws.signer != nil {
		sig, err := ws.signer(object.CommitSigningPayload(commit))
		if err != nil {
			return "", fmt.Errorf("commit: sign: %w", err)
		}
		commit.Signature = sig
	}

	h, err := ws.store.WriteCommit(commit)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if err := ws.store.UpdateRefCAS(ws.head, h, &expectOld); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	ws.log.Info("commit created",
		zap.String("branch", ws.BranchName()),
		zap.String("hash", string(h)),
		zap.Int("changes", len(changes)),
	)
	return h, nil
}

// CommitOnSuccess runs fn and commits the index afterwards only when fn
// returns nil. It refuses to start over uncommitted work
// (ErrPendingChanges). When fn fails, no commit is attempted and the
// index keeps whatever partial mutations fn applied; callers needing
// atomicity must discard the workspace or reset to the branch tip
// themselves.
func (ws *Workspace) CommitOnSuccess(message string, author, committer *object.Signature, fn func() error) (object.Hash, error) {
	dirty, err := ws.HasChanges()
	if err != nil {
		return "", fmt.Errorf("commit on success: %w", err)
	}
	if dirty {
		return "", fmt.Errorf("commit on success: commit pending changes first: %w", ErrPendingChanges)
	}

	if err := fn(); err != nil {
		return "", err
	}
	return ws.Commit(message, author, committer)
}

// Walk returns a fresh, finite traversal of the commits reachable from
// the current branch tip. Every call restarts from the tip; a branch
// with no commits yields an exhausted walker.
func (ws *Workspace) Walk(order object.WalkOrder) (*object.Walker, error) {
	b, err := ws.Branch()
	if err != nil {
		return nil, err
	}
	tip := object.Hash("")
	if b != nil {
		tip = b.Head
	}
	return ws.store.Walk(tip, order), nil
}

func (ws *Workspace) defaultSignature() object.Signature {
	return object.MakeSignature(ws.cfg.AuthorName, ws.cfg.AuthorEmail, time.Time{}, ws.cfg.TZOffsetMinutes)
}

// branchRefName expands a short branch name to a full ref name, leaving
// already-full names alone.
func branchRefName(name string) string {
	if strings.HasPrefix(name, "refs/") {
		return name
	}
	return branchRefPrefix + name
}
