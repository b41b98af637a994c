package tree

import (
	"testing"

	"github.com/odvcencio/treedb/pkg/object"
)

func TestDescribe_NestedTree(t *testing.T) {
	s := newTestStore(t)

	// Build "/foo/bar/test.txt" and "/foo/bar/baz/test2.txt" by hand
	// with the tree-builder primitive.
	test2 := mustBlob(t, s, "TEST 2")
	bazBuilder := s.TreeBuilder()
	bazBuilder.Insert("test2.txt", test2, object.KindBlob)
	baz, err := bazBuilder.Write()
	if err != nil {
		t.Fatalf("write baz: %v", err)
	}

	testBlob := mustBlob(t, s, "TEST")
	barBuilder := s.TreeBuilder()
	barBuilder.Insert("test.txt", testBlob, object.KindBlob)
	barBuilder.Insert("baz", baz, object.KindTree)
	bar, err := barBuilder.Write()
	if err != nil {
		t.Fatalf("write bar: %v", err)
	}

	fooBuilder := s.TreeBuilder()
	fooBuilder.Insert("bar", bar, object.KindTree)
	foo, err := fooBuilder.Write()
	if err != nil {
		t.Fatalf("write foo: %v", err)
	}

	rootBuilder := s.TreeBuilder()
	rootBuilder.Insert("foo", foo, object.KindTree)
	root, err := rootBuilder.Write()
	if err != nil {
		t.Fatalf("write root: %v", err)
	}

	desc, err := Describe(s, root)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	want := "foo/\n  bar/\n    baz/\n      test2.txt\n    test.txt"
	if desc != want {
		t.Errorf("Describe =\n%s\nwant\n%s", desc, want)
	}
}

func TestDescribe_EmptyTree(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.TreeBuilder().Write()
	if err != nil {
		t.Fatalf("write empty tree: %v", err)
	}
	desc, err := Describe(s, empty)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if desc != "" {
		t.Errorf("Describe(empty) = %q, want empty string", desc)
	}
}

func TestDescribe_Deterministic(t *testing.T) {
	s := newTestStore(t)

	blob := mustBlob(t, s, "x")
	h, err := BuildPath(s, "a/b", []object.TreeEntry{
		blobEntry("z.txt", blob),
		blobEntry("a.txt", blob),
		blobEntry("m.txt", blob),
	}, "")
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}

	first, err := Describe(s, h)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	second, err := Describe(s, h)
	if err != nil {
		t.Fatalf("Describe again: %v", err)
	}
	if first != second {
		t.Error("Describe output differs across calls")
	}
	want := "a/\n  b/\n    a.txt\n    m.txt\n    z.txt"
	if first != want {
		t.Errorf("Describe =\n%s\nwant\n%s", first, want)
	}
}
