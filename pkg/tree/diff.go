package tree

import (
	"fmt"
	"path"
	"sort"

	"github.com/odvcencio/treedb/pkg/object"
)

// ChangeType classifies what happened to a path between two trees.
type ChangeType int

const (
	Added    ChangeType = iota // path exists only in the after tree
	Removed                    // path exists only in the before tree
	Modified                   // path exists in both with different content
)

func (t ChangeType) String() string {
	switch t {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Change records a single leaf-level difference between two trees.
type Change struct {
	Path    string
	Type    ChangeType
	OldHash object.Hash // empty for Added
	NewHash object.Hash // empty for Removed
}

// Diff computes the structural change set between two trees, compared
// leaf by leaf at full paths. An empty hash stands for the empty tree.
// Identical trees (same hash) diff to nil without reading the store.
// Results are sorted by path.
func Diff(s *object.Store, before, after object.Hash) ([]Change, error) {
	if before == after {
		return nil, nil
	}

	beforeLeaves, err := flatten(s, before)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	afterLeaves, err := flatten(s, after)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	var changes []Change
	for p, oldHash := range beforeLeaves {
		newHash, ok := afterLeaves[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Type: Removed, OldHash: oldHash})
		case newHash != oldHash:
			changes = append(changes, Change{Path: p, Type: Modified, OldHash: oldHash, NewHash: newHash})
		}
	}
	for p, newHash := range afterLeaves {
		if _, ok := beforeLeaves[p]; !ok {
			changes = append(changes, Change{Path: p, Type: Added, NewHash: newHash})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	return changes, nil
}

// flatten walks a tree recursively, mapping each leaf's full
// forward-slash path to its blob hash.
func flatten(s *object.Store, h object.Hash) (map[string]object.Hash, error) {
	leaves := make(map[string]object.Hash)
	if h == "" {
		return leaves, nil
	}
	if err := flattenRec(s, h, "", leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

func flattenRec(s *object.Store, h object.Hash, prefix string, leaves map[string]object.Hash) error {
	tr, err := s.ReadTree(h)
	if err != nil {
		return fmt.Errorf("flatten %s: %w", h, err)
	}
	for _, e := range tr.Entries {
		full := e.Name
		if prefix != "" {
			full = path.Join(prefix, e.Name)
		}
		if e.Kind == object.KindTree {
			if err := flattenRec(s, e.Hash, full, leaves); err != nil {
				return err
			}
		} else {
			leaves[full] = e.Hash
		}
	}
	return nil
}
