package tree

import (
	"fmt"
	"strings"

	"github.com/odvcencio/treedb/pkg/object"
)

// Describe renders a tree as a human-readable listing. Directories are
// printed as "name/" with their children indented two spaces deeper;
// files are printed as their bare name. Entries appear in name order, so
// the output is stable for a given tree content:
//
//	foo/
//	  bar/
//	    baz/
//	      qux.txt
//
// There is no trailing newline.
func Describe(s *object.Store, h object.Hash) (string, error) {
	var lines []string
	if err := describeDir(s, h, 0, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func describeDir(s *object.Store, h object.Hash, depth int, lines *[]string) error {
	tr, err := s.ReadTree(h)
	if err != nil {
		return fmt.Errorf("describe tree: %w", err)
	}

	indent := strings.Repeat("  ", depth)
	for _, e := range tr.Entries {
		if e.Kind == object.KindTree {
			*lines = append(*lines, indent+e.Name+"/")
			if err := describeDir(s, e.Hash, depth+1, lines); err != nil {
				return err
			}
		} else {
			*lines = append(*lines, indent+e.Name)
		}
	}
	return nil
}
