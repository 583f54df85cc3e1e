package rules

import (
	"strings"

	"github.com/samber/lo"
)

// IgnoreRules decides which entry names take no part in a sync, on either side.
type IgnoreRules struct {
	// HiddenPrefix marks hidden entries (e.g. ".git"). Empty disables the check.
	HiddenPrefix string
	// Names are matched exactly.
	Names []string
	// Suffixes are matched against the end of the name.
	Suffixes []string
}

// Ignore returns true if the entry name should be skipped
func (r IgnoreRules) Ignore(name string) bool {
	if r.HiddenPrefix != "" && strings.HasPrefix(name, r.HiddenPrefix) {
		return true
	}
	if lo.Contains(r.Names, name) {
		return true
	}
	return lo.SomeBy(r.Suffixes, func(suffix string) bool {
		return strings.HasSuffix(name, suffix)
	})
}
