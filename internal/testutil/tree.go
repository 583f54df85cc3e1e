// Package testutil builds and snapshots directory trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// WriteTree creates the given files under root. Keys are slash-separated
// paths relative to root; a key ending in "/" creates an empty directory.
func WriteTree(t testing.TB, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, fsys.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
	}
}

// ReadTree snapshots everything under root in the same form WriteTree
// accepts. Directories are always listed so empty ones show up too.
func ReadTree(t testing.TB, fsys afero.Fs, root string) map[string]string {
	t.Helper()

	tree := make(map[string]string)
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			tree[rel+"/"] = ""
			return nil
		}

		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		tree[rel] = string(data)
		return nil
	})
	require.NoError(t, err)

	return tree
}

// Files drops the directory entries of a ReadTree snapshot
func Files(tree map[string]string) map[string]string {
	out := make(map[string]string, len(tree))
	for k, v := range tree {
		if !strings.HasSuffix(k, "/") {
			out[k] = v
		}
	}
	return out
}
