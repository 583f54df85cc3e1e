package testutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestWriteReadTree(t *testing.T) {
	fsys := afero.NewMemMapFs()

	files := map[string]string{
		"a.txt":       "a",
		"sub/b.txt":   "b",
		"sub/deep/c":  "c",
		"empty/":      "",
		"sub/.hidden": "h",
	}
	WriteTree(t, fsys, "/root", files)

	got := ReadTree(t, fsys, "/root")

	want := map[string]string{
		"a.txt":       "a",
		"sub/":        "",
		"sub/b.txt":   "b",
		"sub/deep/":   "",
		"sub/deep/c":  "c",
		"sub/.hidden": "h",
		"empty/":      "",
	}
	assert.Equal(t, want, got)
}

func TestWriteReadTree_OsFs(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()

	WriteTree(t, fsys, root, map[string]string{"x/y.txt": "y"})

	assert.Equal(t, map[string]string{"x/": "", "x/y.txt": "y"}, ReadTree(t, fsys, root))
}

func TestFiles(t *testing.T) {
	tree := map[string]string{"d/": "", "d/f": "x"}

	assert.Equal(t, map[string]string{"d/f": "x"}, Files(tree))
}
