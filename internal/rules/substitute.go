package rules

import (
	"fmt"
	"strings"
)

// Substitution replaces every literal occurrence of Old with New
type Substitution struct {
	Old string
	New string
}

// Substitutions is an ordered list of literal replacements. Each one runs
// over the output of the previous one.
type Substitutions []Substitution

// Apply runs every substitution over text, in order
func (s Substitutions) Apply(text string) string {
	for _, sub := range s {
		text = strings.ReplaceAll(text, sub.Old, sub.New)
	}
	return text
}

// Validate rejects substitutions that cannot be applied literally
func (s Substitutions) Validate() error {
	for i, sub := range s {
		if sub.Old == "" {
			return fmt.Errorf("substitution %d: empty search text", i)
		}
	}
	return nil
}
