package tree

import (
	"testing"

	"github.com/odvcencio/treedb/pkg/object"
)

func TestDiff_AgainstEmptyTree(t *testing.T) {
	s := newTestStore(t)

	blob := mustBlob(t, s, "content")
	after, err := BuildPath(s, "dir", []object.TreeEntry{blobEntry("file.txt", blob)}, "")
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}

	changes, err := Diff(s, "", after)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("changes = %v, want 1", changes)
	}
	c := changes[0]
	if c.Type != Added || c.Path != "dir/file.txt" || c.NewHash != blob || c.OldHash != "" {
		t.Errorf("change = %+v, want Added dir/file.txt -> %s", c, blob)
	}
}

func TestDiff_IdenticalTrees(t *testing.T) {
	s := newTestStore(t)

	blob := mustBlob(t, s, "content")
	h, err := BuildPath(s, "dir", []object.TreeEntry{blobEntry("file.txt", blob)}, "")
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}

	changes, err := Diff(s, h, h)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("changes = %v, want none", changes)
	}
}

func TestDiff_AddedRemovedModified(t *testing.T) {
	s := newTestStore(t)

	keep := mustBlob(t, s, "keep")
	gone := mustBlob(t, s, "gone")
	v1 := mustBlob(t, s, "v1")

	before, err := BuildPath(s, "", []object.TreeEntry{
		blobEntry("keep.txt", keep),
		blobEntry("gone.txt", gone),
		blobEntry("changed.txt", v1),
	}, "")
	if err != nil {
		t.Fatalf("BuildPath before: %v", err)
	}

	v2 := mustBlob(t, s, "v2")
	fresh := mustBlob(t, s, "fresh")
	after, err := BuildPath(s, "", []object.TreeEntry{
		blobEntry("changed.txt", v2),
		blobEntry("new.txt", fresh),
	}, before)
	if err != nil {
		t.Fatalf("BuildPath after: %v", err)
	}
	// Drop gone.txt by rebuilding the root without it.
	afterTree, err := s.TreeBuilderFrom(after)
	if err != nil {
		t.Fatalf("TreeBuilderFrom: %v", err)
	}
	afterTree.Remove("gone.txt")
	after, err = afterTree.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	changes, err := Diff(s, before, after)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	// Sorted by path: changed.txt, gone.txt, new.txt.
	if len(changes) != 3 {
		t.Fatalf("changes = %v, want 3", changes)
	}
	if c := changes[0]; c.Path != "changed.txt" || c.Type != Modified || c.OldHash != v1 || c.NewHash != v2 {
		t.Errorf("changes[0] = %+v, want Modified changed.txt %s -> %s", c, v1, v2)
	}
	if c := changes[1]; c.Path != "gone.txt" || c.Type != Removed || c.OldHash != gone {
		t.Errorf("changes[1] = %+v, want Removed gone.txt", c)
	}
	if c := changes[2]; c.Path != "new.txt" || c.Type != Added || c.NewHash != fresh {
		t.Errorf("changes[2] = %+v, want Added new.txt", c)
	}
}

func TestDiff_NestedPaths(t *testing.T) {
	s := newTestStore(t)

	blob := mustBlob(t, s, "deep")
	before, err := BuildPath(s, "a/b/c", []object.TreeEntry{blobEntry("leaf.txt", blob)}, "")
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}
	updated := mustBlob(t, s, "deeper")
	after, err := BuildPath(s, "a/b/c", []object.TreeEntry{blobEntry("leaf.txt", updated)}, before)
	if err != nil {
		t.Fatalf("BuildPath update: %v", err)
	}

	changes, err := Diff(s, before, after)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(changes) != 1 || changes[0].Path != "a/b/c/leaf.txt" || changes[0].Type != Modified {
		t.Errorf("changes = %+v, want one Modified a/b/c/leaf.txt", changes)
	}
}
