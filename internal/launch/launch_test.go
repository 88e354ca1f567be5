package launch_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/launch"
	"github.com/ctrun/ctrun/internal/testutil"
)

type fixture struct {
	root string
	exe  string
	src  string
	test catalog.Test
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	exe := testutil.WriteScript(t, root, "build/bin/unit_tests", "exit 0\n")
	src := testutil.WriteFile(t, root, "src/math/add_test.cpp", "")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build", "data"), 0o755))

	return fixture{
		root: root,
		exe:  exe,
		src:  src,
		test: catalog.Test{
			Name:       "Math.Adds",
			File:       src,
			Line:       3,
			Executable: catalog.Executable{Path: exe, Type: catalog.GoogleTest},
			Arguments:  []string{"--gtest_filter=Math.Adds", "--gtest_also_run_disabled_tests"},
		},
	}
}

func TestConfigurations_Defaults(t *testing.T) {
	f := newFixture(t)

	configs, err := launch.Configurations([]catalog.Test{f.test}, launch.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, configs, 1)

	assert.Equal(t, launch.Configuration{
		Name:    "Math.Adds",
		Type:    "cppdbg",
		Request: "launch",
		Program: f.exe,
		Args:    []string{"--gtest_filter=Math.Adds", "--gtest_also_run_disabled_tests"},
		Cwd:     filepath.Join(f.root, "build", "bin"),
	}, configs[0])
}

func TestConfigurations_WorkingDirectory(t *testing.T) {
	f := newFixture(t)
	unlocated := f.test
	unlocated.File, unlocated.Line = "", 0

	tests := []struct {
		name string
		test catalog.Test
		cfg  func(*launch.Config)
		want string
	}{
		{
			name: "relative to executable",
			test: f.test,
			cfg:  func(c *launch.Config) { c.Cwd = "../data" },
			want: filepath.Join(f.root, "build", "data"),
		},
		{
			name: "relative to source file",
			test: f.test,
			cfg: func(c *launch.Config) {
				c.CwdRelativeTo = launch.CwdRelativeToCppFile
				c.Cwd = ".."
			},
			want: filepath.Join(f.root, "src"),
		},
		{
			name: "source file unknown falls back to executable",
			test: unlocated,
			cfg:  func(c *launch.Config) { c.CwdRelativeTo = launch.CwdRelativeToCppFile },
			want: filepath.Join(f.root, "build", "bin"),
		},
		{
			name: "absolute",
			test: f.test,
			cfg: func(c *launch.Config) {
				c.CwdRelativeTo = launch.CwdRelativeToNone
				c.Cwd = f.root
			},
			want: f.root,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := launch.DefaultConfig()
			tt.cfg(&cfg)

			configs, err := launch.Configurations([]catalog.Test{tt.test}, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, configs[0].Cwd)
		})
	}
}

func TestConfigurations_MissingWorkingDirectory(t *testing.T) {
	f := newFixture(t)
	cfg := launch.DefaultConfig()
	cfg.Cwd = "does-not-exist"

	_, err := launch.Configurations([]catalog.Test{f.test}, cfg)
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	f := newFixture(t)
	cfg := launch.DefaultConfig()
	cfg.AddExecPathToName = true
	cfg.StopAtEntry = true
	cfg.PrettyPrinting = true

	var buf bytes.Buffer
	require.NoError(t, launch.Write(&buf, []catalog.Test{f.test}, cfg))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "0.2.0", doc["version"])

	configs := doc["configurations"].([]any)
	require.Len(t, configs, 1)
	config := configs[0].(map[string]any)
	assert.Equal(t, "Math.Adds:"+f.exe, config["name"])
	assert.Equal(t, true, config["stopAtEntry"])
	assert.Equal(t, []any{map[string]any{
		"text":           "-enable-pretty-printing",
		"description":    "Enable pretty printing",
		"ignoreFailures": false,
	}}, config["setupCommands"])
}

func TestWrite_ConfigurationsOnly(t *testing.T) {
	f := newFixture(t)
	cfg := launch.DefaultConfig()
	cfg.ConfigurationsOnly = true

	var buf bytes.Buffer
	require.NoError(t, launch.Write(&buf, []catalog.Test{f.test}, cfg))

	var configs []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &configs))
	require.Len(t, configs, 1)
	assert.NotContains(t, configs[0], "stopAtEntry")
	assert.NotContains(t, configs[0], "setupCommands")
}

func TestParseCwdRelativeTo(t *testing.T) {
	got, err := launch.ParseCwdRelativeTo("cpp-file")
	require.NoError(t, err)
	assert.Equal(t, launch.CwdRelativeToCppFile, got)

	_, err = launch.ParseCwdRelativeTo("home")
	assert.Error(t, err)
}
