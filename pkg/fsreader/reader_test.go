package fsreader_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gopreserve/pkg/fsreader"
	"github.com/yaklabco/gopreserve/pkg/parser"
	"github.com/yaklabco/gopreserve/pkg/registry"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func TestResolve(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	docs := t.TempDir()

	reader, err := fsreader.New(out, fsreader.WithSlot("docs", docs))
	require.NoError(t, err)

	got, err := reader.Resolve("src/A.java", fsreader.DefaultSlot)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "src", "A.java"), got)

	got, err = reader.Resolve("", "")
	require.NoError(t, err)
	assert.Equal(t, out, got)

	got, err = reader.Resolve("index.html", "docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(docs, "index.html"), got)

	_, err = reader.Resolve("x", "missing")
	require.ErrorIs(t, err, fsreader.ErrUnknownSlot)

	assert.Equal(t, []string{"default", "docs"}, reader.Slots())
}

func TestListFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b/B.java":            "",
		"a/A.java":            "",
		"a/notes.txt":         "",
		".git/config":         "",
		"a/.hidden.java":      "",
		"build/Gen.java":      "",
		"src/deep/x/Y.java":   "",
		"src/deep/x/Y.xtend":  "",
		"vendor/lib/Lib.java": "",
	})

	reader, err := fsreader.New(root, fsreader.WithExclude("build/**", "vendor"))
	require.NoError(t, err)

	files, err := reader.ListFiles(context.Background(), root, registry.ExtensionFilter{".java"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/A.java", "b/B.java", "src/deep/x/Y.java"}, rel(t, root, files))

	all, err := reader.ListFiles(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestListFilesSymlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := t.TempDir()
	writeTree(t, root, map[string]string{"A.java": ""})
	writeTree(t, target, map[string]string{"Linked.java": ""})

	if err := os.Symlink(target, filepath.Join(root, "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken.java")))
	require.NoError(t, os.Symlink(root, filepath.Join(target, "loop")))

	t.Run("not followed", func(t *testing.T) {
		t.Parallel()

		reader, err := fsreader.New(root)
		require.NoError(t, err)

		files, err := reader.ListFiles(context.Background(), root, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A.java"}, rel(t, root, files))
	})

	t.Run("followed", func(t *testing.T) {
		t.Parallel()

		reader, err := fsreader.New(root, fsreader.WithFollowSymlinks(true))
		require.NoError(t, err)

		files, err := reader.ListFiles(context.Background(), root, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A.java", "linked/Linked.java"}, rel(t, root, files))
	})
}

func TestCanonicalPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"sub/A.java": ""})

	reader, err := fsreader.New(root)
	require.NoError(t, err)

	direct, err := reader.CanonicalPath(filepath.Join(root, "sub"))
	require.NoError(t, err)
	dotted, err := reader.CanonicalPath(filepath.Join(root, "sub", "..", "sub"))
	require.NoError(t, err)
	assert.Equal(t, direct, dotted)

	_, err = reader.CanonicalPath(filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"A.java": "class A {}"})

	reader, err := fsreader.New(root)
	require.NoError(t, err)

	assert.True(t, reader.Exists(filepath.Join(root, "A.java")))
	assert.False(t, reader.IsDir(filepath.Join(root, "A.java")))
	assert.True(t, reader.IsDir(root))

	content, err := reader.ReadFile(filepath.Join(root, "A.java"))
	require.NoError(t, err)
	assert.Equal(t, "class A {}", content)

	_, err = reader.ReadFile(filepath.Join(root, "B.java"))
	require.Error(t, err)
}

func TestRegistryOnDisk(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	writeTree(t, out, map[string]string{
		"src/A.java": "class A {\n" +
			"  // PROTECTED REGION ID(a.body) ENABLED START\n" +
			"  int kept;\n" +
			"  // PROTECTED REGION END\n" +
			"}\n",
	})

	reader, err := fsreader.New(out)
	require.NoError(t, err)

	java, err := parser.New("java", parser.Options{})
	require.NoError(t, err)

	reg := registry.New(reader)
	require.NoError(t, reg.AddParserForExtensions(java, ".java"))
	require.NoError(t, reg.Read(context.Background(), "", fsreader.DefaultSlot))

	origin, ok := reg.Origin("a.body")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(out, "src", "A.java"), origin)

	generated := "class A {\n" +
		"  // PROTECTED REGION ID(a.body) ENABLED START\n" +
		"  // generated body\n" +
		"  // PROTECTED REGION END\n" +
		"}\n"

	res, err := reg.Merge(context.Background(), "src/A.java", fsreader.DefaultSlot, generated)
	require.NoError(t, err)
	assert.Contains(t, res.Content, "int kept;")
	assert.Equal(t, []string{"a.body"}, res.Preserved)
}

func TestListFilesSkipDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/A.java":     "",
		"gen/src/A.java": "",
		"gen.java":       "",
	})

	reader, err := fsreader.New(root, fsreader.WithSkipDirs(filepath.Join(root, "gen"), ""))
	require.NoError(t, err)

	files, err := reader.ListFiles(context.Background(), root, registry.ExtensionFilter{".java"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gen.java", "src/A.java"}, rel(t, root, files))
}
