package rules

import (
	"strings"

	"github.com/samber/lo"
)

// TemplatePolicy classifies source files by name.
//
// Files ending in TextExt are text files and get substitutions applied. Among
// them, anything that is neither in AllowList nor prefixed with TestPrefix is a
// template: its exercise version is written by hand and the sync leaves it
// alone.
type TemplatePolicy struct {
	TextExt    string
	AllowList  []string
	TestPrefix string
}

// IsText returns true if the file content should go through substitution
func (p TemplatePolicy) IsText(name string) bool {
	return p.TextExt != "" && strings.HasSuffix(name, p.TextExt)
}

// IsTemplate returns true if the file must not be synced automatically
func (p TemplatePolicy) IsTemplate(name string) bool {
	if !p.IsText(name) {
		return false
	}
	if lo.Contains(p.AllowList, name) {
		return false
	}
	return p.TestPrefix == "" || !strings.HasPrefix(name, p.TestPrefix)
}
