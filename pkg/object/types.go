package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// EntryKind tags a tree entry as pointing at a blob or a subtree.
type EntryKind string

const (
	KindBlob EntryKind = "blob"
	KindTree EntryKind = "tree"
)

// Blob holds raw content bytes.
type Blob struct {
	Data []byte
}

// TreeEntry is one named child of a tree: a blob (leaf) or a subtree.
// Within one tree, Name is unique.
type TreeEntry struct {
	Name string
	Kind EntryKind
	Hash Hash
}

// TreeObj holds a tree's entries sorted by Name. Trees are immutable;
// a tree's hash covers every descendant's hash.
type TreeObj struct {
	Entries []TreeEntry
}

// Lookup returns the entry with the given name, if present.
func (tr *TreeObj) Lookup(name string) (TreeEntry, bool) {
	for _, e := range tr.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// Signature records who authored or committed a change and when.
// Offset is the signer's UTC offset in minutes east of UTC.
type Signature struct {
	Name   string
	Email  string
	When   int64 // unix seconds
	Offset int
}

// CommitObj is an immutable snapshot: a tree, parent commits, and
// authorship metadata. Zero parents means a root commit.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Message   string
	Signature string // optional detached signature over the signing payload
}
