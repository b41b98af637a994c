// Package tree manipulates immutable, content-addressed directory trees:
// path-based updates with structural sharing, deterministic listings, and
// tree-to-tree diffs.
package tree

import (
	"fmt"
	"strings"

	"github.com/odvcencio/treedb/pkg/object"
)

// BuildPath writes entries as direct children of the directory named by
// the slash-separated path, rebuilding only the directories along that
// path. Every subtree not on the path keeps its hash from base, so the
// result shares all untouched structure with the original tree.
//
// Leading and trailing separators are stripped; an empty path places the
// entries at the root. An empty base means "start from an empty tree",
// as does any path segment that does not yet exist in base. An entry
// whose name is already present at the target directory replaces the
// existing one. The returned hash is deterministic: identical inputs
// always produce the identical tree.
func BuildPath(s *object.Store, path string, entries []object.TreeEntry, base object.Hash) (object.Hash, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("build path %q: no entries", path)
	}

	var segments []string
	if trimmed := strings.Trim(path, "/"); trimmed != "" {
		segments = strings.Split(trimmed, "/")
	}
	for _, seg := range segments {
		if seg == "" {
			return "", fmt.Errorf("build path %q: empty path segment", path)
		}
	}

	return buildAt(s, segments, entries, base)
}

// buildAt rebuilds one directory level. The deepest level receives the
// entries; every level above it copies its siblings from baseDir and
// replaces only the child on the path.
func buildAt(s *object.Store, segments []string, entries []object.TreeEntry, baseDir object.Hash) (object.Hash, error) {
	tb, err := s.TreeBuilderFrom(baseDir)
	if err != nil {
		return "", err
	}

	if len(segments) == 0 {
		for _, e := range entries {
			tb.Insert(e.Name, e.Hash, e.Kind)
		}
		return tb.Write()
	}

	name := segments[0]

	// Descend into the matching subtree of the base, if there is one.
	// A same-named blob is shadowed by the new directory.
	var childBase object.Hash
	if baseDir != "" {
		base, err := s.ReadTree(baseDir)
		if err != nil {
			return "", err
		}
		if e, ok := base.Lookup(name); ok && e.Kind == object.KindTree {
			childBase = e.Hash
		}
	}

	child, err := buildAt(s, segments[1:], entries, childBase)
	if err != nil {
		return "", err
	}
	tb.Insert(name, child, object.KindTree)
	return tb.Write()
}
