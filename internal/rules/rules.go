// Package rules holds the fixed tables that drive a solutions → exercises sync:
// which entries are ignored, which directories are renamed, which literals are
// substituted in text files, and which text files are hand-authored templates.
package rules

import (
	"fmt"
)

// Set bundles every rule table consumed by the sync engine
type Set struct {
	Ignores       IgnoreRules
	Renames       *RenameTable
	Substitutions Substitutions
	Templates     TemplatePolicy
}

// Default returns the built-in rule set for the text-mining class repository
func Default() *Set {
	return &Set{
		Ignores: IgnoreRules{
			HiddenPrefix: ".",
			Names:        []string{"__pycache__"},
			Suffixes:     []string{".pyc", ".egg-info"},
		},
		Renames: MustRenameTable(map[string]string{
			"tmclass_solutions": "tmclass_exercises",
		}),
		Substitutions: Substitutions{
			{Old: "text-mining-class-solutions", New: "text-mining-class-exercises"},
			{Old: "tmclass_solutions", New: "tmclass_exercises"},
		},
		Templates: TemplatePolicy{
			TextExt:    ".py",
			AllowList:  []string{"__init__.py", "setup.py", "utils.py"},
			TestPrefix: "test_",
		},
	}
}

// Validate checks the rule set for errors
func (s *Set) Validate() error {
	if s.Renames == nil {
		return fmt.Errorf("rename table is required")
	}
	if err := s.Substitutions.Validate(); err != nil {
		return fmt.Errorf("substitutions: %w", err)
	}
	if s.Templates.TextExt == "" {
		return fmt.Errorf("templates: text extension is required")
	}
	return nil
}
