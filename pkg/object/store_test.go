package object

import (
	"bytes"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(NewFSBackend(t.TempDir()))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_BlobRoundTrip(t *testing.T) {
	s := newTestStore(t)

	content := []byte("TEST CONTENT")
	h, err := s.CreateBlob(content)
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	if !s.Has(h) {
		t.Fatalf("Has(%s) = false after write", h)
	}

	b, err := s.ReadBlob(h)
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if !bytes.Equal(b.Data, content) {
		t.Errorf("blob data = %q, want %q", b.Data, content)
	}
}

func TestStore_WriteIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	h1, err := s.CreateBlob([]byte("same"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	h2, err := s.CreateBlob([]byte("same"))
	if err != nil {
		t.Fatalf("CreateBlob again: %v", err)
	}
	if h1 != h2 {
		t.Errorf("same content produced different hashes: %s vs %s", h1, h2)
	}
}

func TestStore_ReadMissingObject(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Read(Hash("ab" + "cd1234ef567890abcd1234ef567890abcd1234ef567890abcd1234ef567890"))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Read missing = %v, want ErrObjectNotFound", err)
	}
}

func TestStore_TypeMismatch(t *testing.T) {
	s := newTestStore(t)

	h, err := s.CreateBlob([]byte("not a tree"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	if _, err := s.ReadTree(h); err == nil {
		t.Fatal("ReadTree on a blob succeeded, want type mismatch error")
	}
}

func TestStore_TreeBuilderReplacesByName(t *testing.T) {
	s := newTestStore(t)

	first, err := s.CreateBlob([]byte("first"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	second, err := s.CreateBlob([]byte("second"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}

	tb := s.TreeBuilder()
	tb.Insert("a.txt", first, KindBlob)
	tb.Insert("a.txt", second, KindBlob)
	if tb.Len() != 1 {
		t.Fatalf("Len = %d after duplicate insert, want 1", tb.Len())
	}

	h, err := tb.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	tr, err := s.ReadTree(h)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	e, ok := tr.Lookup("a.txt")
	if !ok {
		t.Fatal("a.txt missing from tree")
	}
	if e.Hash != second {
		t.Errorf("a.txt = %s, want the second blob %s", e.Hash, second)
	}
}

func TestStore_TreeBuilderFromCopiesBase(t *testing.T) {
	s := newTestStore(t)

	blob, err := s.CreateBlob([]byte("x"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	tb := s.TreeBuilder()
	tb.Insert("keep.txt", blob, KindBlob)
	tb.Insert("drop.txt", blob, KindBlob)
	base, err := tb.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	tb2, err := s.TreeBuilderFrom(base)
	if err != nil {
		t.Fatalf("TreeBuilderFrom: %v", err)
	}
	tb2.Remove("drop.txt")
	h, err := tb2.Write()
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	tr, err := s.ReadTree(h)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if _, ok := tr.Lookup("keep.txt"); !ok {
		t.Error("keep.txt missing after removal of sibling")
	}
	if _, ok := tr.Lookup("drop.txt"); ok {
		t.Error("drop.txt still present after Remove")
	}

	// The base tree itself is untouched.
	baseTree, err := s.ReadTree(base)
	if err != nil {
		t.Fatalf("ReadTree base: %v", err)
	}
	if len(baseTree.Entries) != 2 {
		t.Errorf("base tree has %d entries, want 2", len(baseTree.Entries))
	}
}

func TestStore_CommitRoundTrip(t *testing.T) {
	s := newTestStore(t)

	treeHash, err := s.TreeBuilder().Write()
	if err != nil {
		t.Fatalf("empty tree: %v", err)
	}

	in := &CommitObj{
		TreeHash:  treeHash,
		Parents:   []Hash{},
		Author:    Signature{Name: "Tester Test", Email: "test@example.com", When: 1700000000, Offset: 90},
		Committer: Signature{Name: "Commit Bot", Email: "bot@example.com", When: 1700000100, Offset: -330},
		Message:   "initial commit\n\nwith a body",
	}
	h, err := s.WriteCommit(in)
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}

	out, err := s.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if out.TreeHash != in.TreeHash {
		t.Errorf("tree = %s, want %s", out.TreeHash, in.TreeHash)
	}
	if out.Author != in.Author {
		t.Errorf("author = %+v, want %+v", out.Author, in.Author)
	}
	if out.Committer != in.Committer {
		t.Errorf("committer = %+v, want %+v", out.Committer, in.Committer)
	}
	if out.Message != in.Message {
		t.Errorf("message = %q, want %q", out.Message, in.Message)
	}
	if len(out.Parents) != 0 {
		t.Errorf("parents = %v, want none", out.Parents)
	}
}

func TestStore_Refs(t *testing.T) {
	s := newTestStore(t)

	blob, err := s.CreateBlob([]byte("tip"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}

	if _, err := s.ResolveRef("refs/heads/main"); !errors.Is(err, ErrRefNotFound) {
		t.Fatalf("ResolveRef missing = %v, want ErrRefNotFound", err)
	}

	if err := s.CreateRef("refs/heads/main", blob); err != nil {
		t.Fatalf("CreateRef: %v", err)
	}
	got, err := s.ResolveRef("refs/heads/main")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != blob {
		t.Errorf("ResolveRef = %s, want %s", got, blob)
	}

	// Creating over an existing ref fails with a CAS mismatch.
	if err := s.CreateRef("refs/heads/main", blob); !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("CreateRef existing = %v, want ErrRefCASMismatch", err)
	}

	// CAS with the wrong expected value fails; the right one succeeds.
	other, err := s.CreateBlob([]byte("other"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}
	wrong := Hash("0000000000000000000000000000000000000000000000000000000000000000")
	if err := s.UpdateRefCAS("refs/heads/main", other, &wrong); !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("UpdateRefCAS wrong old = %v, want ErrRefCASMismatch", err)
	}
	if err := s.UpdateRefCAS("refs/heads/main", other, &blob); err != nil {
		t.Fatalf("UpdateRefCAS: %v", err)
	}

	refs, err := s.ListRefs("refs/heads")
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if len(refs) != 1 || refs["refs/heads/main"] != other {
		t.Errorf("ListRefs = %v, want refs/heads/main -> %s", refs, other)
	}

	if err := s.DeleteRef("refs/heads/main"); err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	if _, err := s.ResolveRef("refs/heads/main"); !errors.Is(err, ErrRefNotFound) {
		t.Fatalf("ResolveRef after delete = %v, want ErrRefNotFound", err)
	}
	if err := s.DeleteRef("refs/heads/main"); !errors.Is(err, ErrRefNotFound) {
		t.Fatalf("DeleteRef missing = %v, want ErrRefNotFound", err)
	}
}

func TestStore_RejectsTraversalRefNames(t *testing.T) {
	s := newTestStore(t)

	blob, err := s.CreateBlob([]byte("x"))
	if err != nil {
		t.Fatalf("CreateBlob: %v", err)
	}

	for _, name := range []string{
		"",
		"/refs/heads/main",
		"refs/../escape",
		"../../x",
		"refs/heads/.",
		"refs//main",
	} {
		if err := s.CreateRef(name, blob); !errors.Is(err, ErrInvalidRefName) {
			t.Errorf("CreateRef(%q) = %v, want ErrInvalidRefName", name, err)
		}
		if _, err := s.ResolveRef(name); !errors.Is(err, ErrInvalidRefName) {
			t.Errorf("ResolveRef(%q) = %v, want ErrInvalidRefName", name, err)
		}
		if err := s.DeleteRef(name); !errors.Is(err, ErrInvalidRefName) {
			t.Errorf("DeleteRef(%q) = %v, want ErrInvalidRefName", name, err)
		}
	}
}
