package workspace

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odvcencio/treedb/pkg/object"
)

// Branch is a read-only view of a branch: its reference, the commit the
// reference points at, and that commit's tree. It is recomputed on every
// access and never cached.
type Branch struct {
	Ref      string
	Head     object.Hash
	Commit   *object.CommitObj
	TreeHash object.Hash
}

// Branch resolves the tracked branch. A reference that does not exist is
// a normal state ("no commits yet") and returns (nil, nil), not an
// error.
func (ws *Workspace) Branch() (*Branch, error) {
	tip, err := ws.store.ResolveRef(ws.head)
	if err != nil {
		if errors.Is(err, object.ErrRefNotFound) {
			return nil, nil
		}
		return nil, err
	}
	commit, err := ws.store.ReadCommit(tip)
	if err != nil {
		return nil, fmt.Errorf("branch %s: %w", ws.head, err)
	}
	return &Branch{
		Ref:      ws.head,
		Head:     tip,
		Commit:   commit,
		TreeHash: commit.TreeHash,
	}, nil
}

// ListBranches returns the short names of every branch, sorted.
func (ws *Workspace) ListBranches() ([]string, error) {
	refs, err := ws.store.ListRefs(strings.TrimSuffix(branchRefPrefix, "/"))
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	names := make([]string, 0, len(refs))
	for ref := range refs {
		names = append(names, strings.TrimPrefix(ref, branchRefPrefix))
	}
	sort.Strings(names)
	return names, nil
}
