package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// RenameTable is a one-to-one mapping of source directory names to target
// directory names. The inverse view is derived from the forward one at
// construction and never maintained separately.
type RenameTable struct {
	forward map[string]string
	inverse map[string]string
}

// Rename is one entry of a RenameTable
type Rename struct {
	From string
	To   string
}

// NewRenameTable builds a table from source name -> target name pairs
func NewRenameTable(pairs map[string]string) (*RenameTable, error) {
	forward := make(map[string]string, len(pairs))
	for from, to := range pairs {
		if from == "" || to == "" {
			return nil, fmt.Errorf("rename %q -> %q: names must not be empty", from, to)
		}
		if strings.ContainsAny(from+to, `/\`) {
			return nil, fmt.Errorf("rename %q -> %q: names must not contain path separators", from, to)
		}
		forward[from] = to
	}

	inverse := lo.Invert(forward)
	if len(inverse) != len(forward) {
		return nil, fmt.Errorf("rename table is not one-to-one: %v", pairs)
	}

	return &RenameTable{forward: forward, inverse: inverse}, nil
}

// MustRenameTable is like NewRenameTable but panics on an invalid table.
// Intended for tables written as literals.
func MustRenameTable(pairs map[string]string) *RenameTable {
	t, err := NewRenameTable(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// Forward maps a source directory name to its target name. Names without an
// entry map to themselves.
func (t *RenameTable) Forward(name string) string {
	if t == nil {
		return name
	}
	return lo.ValueOr(t.forward, name, name)
}

// Inverse maps a target entry name back to its source-side identity
func (t *RenameTable) Inverse(name string) string {
	if t == nil {
		return name
	}
	return lo.ValueOr(t.inverse, name, name)
}

// Len returns the number of renames in the table
func (t *RenameTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.forward)
}

// Renames returns the table entries sorted by source name
func (t *RenameTable) Renames() []Rename {
	if t == nil {
		return nil
	}
	out := lo.MapToSlice(t.forward, func(from, to string) Rename {
		return Rename{From: from, To: to}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}
