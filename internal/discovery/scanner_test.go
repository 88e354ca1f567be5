package discovery_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/discovery"
	"github.com/ctrun/ctrun/internal/elf"
	"github.com/ctrun/ctrun/internal/elf/elftest"
	"github.com/ctrun/ctrun/internal/testutil"
)

func scan(t *testing.T, root string, jobs int) []catalog.Executable {
	t.Helper()
	classifier := newClassifier(t, func(c *discovery.Config) { c.Jobs = jobs })
	exes, err := discovery.NewScanner(classifier, testutil.NewTestLogger(t)).Scan(context.Background(), root)
	require.NoError(t, err)
	return exes
}

func paths(exes []catalog.Executable) []string {
	out := make([]string, 0, len(exes))
	for _, exe := range exes {
		out = append(out, exe.Path)
	}
	return out
}

func TestScan_FiltersCandidates(t *testing.T) {
	root := t.TempDir()

	gtest := elftest.Image{Symbols: []string{gtestSymbol}}.Write(t, root, "build/unit_tests", 0o755)
	catch2 := elftest.Image{Symbols: []string{catch2Symbol}}.Write(t, root, "build/sub/.hidden/catch_tests", 0o755)
	elftest.Image{Symbols: []string{"main"}}.Write(t, root, "build/tool", 0o755)
	elftest.Image{Symbols: []string{gtestSymbol}}.Write(t, root, "build/not_executable", 0o644)
	elftest.Image{Type: elf.TypeRelocatable, Symbols: []string{gtestSymbol}}.Write(t, root, "build/obj.o", 0o755)
	elftest.Image{Symbols: []string{gtestSymbol}, SymbolTableLink: elftest.Link(7)}.Write(t, root, "build/corrupt", 0o755)
	testutil.WriteScript(t, root, "scripts/run.sh", "exit 0\n")
	require.NoError(t, os.Symlink(gtest, filepath.Join(root, "link_to_tests")))

	exes := scan(t, root, 4)

	assert.ElementsMatch(t, []string{gtest, catch2}, paths(exes))
	for _, exe := range exes {
		switch exe.Path {
		case gtest:
			assert.Equal(t, catalog.GoogleTest, exe.Type)
		case catch2:
			assert.Equal(t, catalog.Catch2, exe.Type)
		}
	}
}

func TestScan_JobCountDoesNotChangeResult(t *testing.T) {
	root := t.TempDir()

	// More matches than the result channel holds.
	var want []string
	for i := range 150 {
		img := elftest.Image{Symbols: []string{"main", gtestSymbol}}
		if i%3 == 0 {
			img.Symbols = []string{catch2Symbol}
		}
		want = append(want, img.Write(t, root, fmt.Sprintf("dir%02d/test_%03d", i%10, i), 0o755))
	}
	for i := range 20 {
		elftest.Image{Symbols: []string{"main"}}.Write(t, root, fmt.Sprintf("tools/tool_%02d", i), 0o755)
	}

	single := scan(t, root, 1)
	parallel := scan(t, root, 8)

	assert.ElementsMatch(t, want, paths(single))
	assert.ElementsMatch(t, single, parallel)
}

func TestScan_EmptyDirectory(t *testing.T) {
	assert.Empty(t, scan(t, t.TempDir(), 2))
}

func TestScan_InvalidRoot(t *testing.T) {
	scanner := discovery.NewScanner(newClassifier(t, nil), testutil.NewTestLogger(t))

	_, err := scanner.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := testutil.WriteFile(t, t.TempDir(), "file", "")
	_, err = scanner.Scan(context.Background(), file)
	assert.Error(t, err)
}
