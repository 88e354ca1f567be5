package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/testutil"
)

const catch2Listing = `{
  "version": 1,
  "metadata": {"name": "catch_tests", "rng-seed": 1, "catch2-version": "3.5.2"},
  "listings": {
    "tests": [
      {
        "name": "vectors can be sized and resized",
        "class-name": "",
        "tags": ["vector"],
        "source-location": {"filename": "tests/vector_test.cpp", "line": 5}
      },
      {
        "name": "Foo handles empty input",
        "class-name": "",
        "tags": [],
        "source-location": {"filename": "tests/foo_test.cpp", "line": 42}
      }
    ]
  }
}`

func writeCatch2(t *testing.T, dir, name, identify, listing string) string {
	t.Helper()
	return testutil.WriteScript(t, dir, name, `
case "$1" in
--libidentify)
`+identify+`
  ;;
--list-tests)
  cat <<'JSON'
`+listing+`
JSON
  ;;
*)
  exit 0
  ;;
esac
`)
}

const catch2Identify = `  printf 'description:    A Catch2 based test executable\n'
  printf 'category:       testframework\n'
  printf 'framework:      Catch2\n'
  printf 'version:        3.5.2\n'`

func TestEnumerate_Catch2(t *testing.T) {
	root := t.TempDir()
	source := testutil.WriteFile(t, root, "tests/vector_test.cpp", "TEST_CASE(\"vectors\") {}\n")
	path := writeCatch2(t, root, "out/catch_tests", catch2Identify, catch2Listing)
	exe := catalog.Executable{Path: path, Type: catalog.Catch2}

	tests, err := newEnumerator(t, nil).Enumerate(context.Background(), exe)
	require.NoError(t, err)
	require.Len(t, tests, 2)

	assert.Equal(t, "vectors can be sized and resized", tests[0].Name)
	assert.Equal(t, []string{"vectors can be sized and resized"}, tests[0].Arguments)
	assert.Equal(t, canonical(t, source), tests[0].File)
	assert.Equal(t, 5, tests[0].Line)

	assert.False(t, tests[1].HasLocation())
}

func TestEnumerate_Catch2Filter(t *testing.T) {
	path := writeCatch2(t, t.TempDir(), "catch_tests", catch2Identify, catch2Listing)

	tests, err := newEnumerator(t, func(c *catalog.Config) {
		c.Filter = mustFilter("Foo")
	}).Enumerate(context.Background(), catalog.Executable{Path: path, Type: catalog.Catch2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Foo handles empty input"}, names(tests))
	assert.Equal(t, []string{"Foo handles empty input"}, tests[0].Arguments)
}

func TestEnumerate_Catch2ProbeRejects(t *testing.T) {
	tests := []struct {
		name     string
		identify string
	}{
		{name: "probe exits non-zero", identify: "  exit 1"},
		{name: "different framework", identify: "  printf 'framework: doctest\\n'"},
		{name: "no key value lines", identify: "  echo 'Catch2'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCatch2(t, t.TempDir(), "catch_tests", tt.identify, catch2Listing)

			tests, err := newEnumerator(t, nil).Enumerate(context.Background(),
				catalog.Executable{Path: path, Type: catalog.Catch2})
			require.NoError(t, err)
			assert.Empty(t, tests)
		})
	}
}

func TestEnumerate_Catch2ListingFailures(t *testing.T) {
	t.Run("listing exits non-zero", func(t *testing.T) {
		path := testutil.WriteScript(t, t.TempDir(), "catch_tests", `
if [ "$1" = "--libidentify" ]; then
  echo 'framework: Catch2'
  exit 0
fi
exit 2
`)
		_, err := newEnumerator(t, nil).Enumerate(context.Background(),
			catalog.Executable{Path: path, Type: catalog.Catch2})
		assert.ErrorIs(t, err, catalog.ErrProcessFailed)
	})

	t.Run("listing is not catch2 json", func(t *testing.T) {
		path := writeCatch2(t, t.TempDir(), "catch_tests", catch2Identify, `{"tests": []}`)
		_, err := newEnumerator(t, nil).Enumerate(context.Background(),
			catalog.Executable{Path: path, Type: catalog.Catch2})
		assert.ErrorIs(t, err, catalog.ErrParseFailed)
	})
}

func TestProbeCatch2(t *testing.T) {
	dir := t.TempDir()

	ok, err := catalog.ProbeCatch2(context.Background(),
		writeCatch2(t, dir, "yes", catch2Identify, catch2Listing))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = catalog.ProbeCatch2(context.Background(),
		writeCatch2(t, dir, "no", "  exit 1", catch2Listing))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = catalog.ProbeCatch2(context.Background(), dir+"/missing")
	assert.Error(t, err)
}
