package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnore(t *testing.T) {
	r := Default().Ignores

	tests := []struct {
		name string
		want bool
	}{
		{".git", true},
		{".ipynb_checkpoints", true},
		{"__pycache__", true},
		{"module.pyc", true},
		{"tmclass.egg-info", true},
		{"__pycache__x", false},
		{"pyc", false},
		{"notebook.ipynb", false},
		{"tmclass_solutions", false},
		{"data.csv", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Ignore(tt.name))
		})
	}
}

func TestIgnore_EmptyHiddenPrefix(t *testing.T) {
	r := IgnoreRules{Suffixes: []string{".tmp"}}

	assert.False(t, r.Ignore(".git"))
	assert.True(t, r.Ignore("a.tmp"))
}

func TestRenameTable(t *testing.T) {
	table, err := NewRenameTable(map[string]string{"tmclass_solutions": "tmclass_exercises"})
	require.NoError(t, err)

	assert.Equal(t, "tmclass_exercises", table.Forward("tmclass_solutions"))
	assert.Equal(t, "tmclass_solutions", table.Inverse("tmclass_exercises"))
	assert.Equal(t, "other", table.Forward("other"))
	assert.Equal(t, "other", table.Inverse("other"))
	// The inverse view does not answer forward lookups.
	assert.Equal(t, "tmclass_solutions", table.Inverse("tmclass_solutions"))
	assert.Equal(t, 1, table.Len())
}

func TestRenameTable_RoundTrip(t *testing.T) {
	table, err := NewRenameTable(map[string]string{"a": "b", "c": "d", "e": "f"})
	require.NoError(t, err)

	for _, r := range table.Renames() {
		assert.Equal(t, r.From, table.Inverse(table.Forward(r.From)))
		assert.Equal(t, r.To, table.Forward(table.Inverse(r.To)))
	}
	assert.Equal(t, []Rename{{"a", "b"}, {"c", "d"}, {"e", "f"}}, table.Renames())
}

func TestRenameTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		pairs map[string]string
	}{
		{"not one-to-one", map[string]string{"a": "x", "b": "x"}},
		{"empty source", map[string]string{"": "x"}},
		{"empty target", map[string]string{"a": ""}},
		{"path separator", map[string]string{"a/b": "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRenameTable(tt.pairs)
			assert.Error(t, err)
		})
	}

	assert.Panics(t, func() { MustRenameTable(map[string]string{"a": "x", "b": "x"}) })
}

func TestRenameTable_Nil(t *testing.T) {
	var table *RenameTable

	assert.Equal(t, "x", table.Forward("x"))
	assert.Equal(t, "x", table.Inverse("x"))
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Renames())
}

func TestSubstitutions(t *testing.T) {
	subs := Default().Substitutions

	in := "from text-mining-class-solutions import x\n" +
		"import tmclass_solutions.utils\n" +
		"tmclass_solutions tmclass_solutions\n"
	want := "from text-mining-class-exercises import x\n" +
		"import tmclass_exercises.utils\n" +
		"tmclass_exercises tmclass_exercises\n"

	got := subs.Apply(in)
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "text-mining-class-solutions")
	assert.NotContains(t, got, "tmclass_solutions")
}

func TestSubstitutions_CaseSensitive(t *testing.T) {
	subs := Default().Substitutions

	assert.Equal(t, "TMCLASS_SOLUTIONS", subs.Apply("TMCLASS_SOLUTIONS"))
}

func TestSubstitutions_Ordered(t *testing.T) {
	subs := Substitutions{{Old: "a", New: "b"}, {Old: "b", New: "c"}}

	assert.Equal(t, "cc", subs.Apply("ab"))
}

func TestSubstitutions_Validate(t *testing.T) {
	assert.NoError(t, Default().Substitutions.Validate())
	assert.Error(t, Substitutions{{Old: "", New: "x"}}.Validate())
}

func TestTemplatePolicy(t *testing.T) {
	p := Default().Templates

	tests := []struct {
		name     string
		text     bool
		template bool
	}{
		{"exercise_1.py", true, true},
		{"solution.py", true, true},
		{"__init__.py", true, false},
		{"setup.py", true, false},
		{"utils.py", true, false},
		{"test_foo.py", true, false},
		{"test_.py", true, false},
		{"mytest_foo.py", true, true},
		{"data.csv", false, false},
		{"notebook.ipynb", false, false},
		{"test_data.json", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, p.IsText(tt.name), "IsText")
			assert.Equal(t, tt.template, p.IsTemplate(tt.name), "IsTemplate")
		})
	}
}

func TestTemplatePolicy_NoTestPrefix(t *testing.T) {
	p := TemplatePolicy{TextExt: ".py", AllowList: []string{"setup.py"}}

	assert.True(t, p.IsTemplate("test_foo.py"))
	assert.False(t, p.IsTemplate("setup.py"))
}

func TestSetValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	s := Default()
	s.Renames = nil
	assert.Error(t, s.Validate())

	s = Default()
	s.Templates.TextExt = ""
	assert.Error(t, s.Validate())

	s = Default()
	s.Substitutions = append(s.Substitutions, Substitution{})
	assert.Error(t, s.Validate())
}
