package runner_test

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/runner"
	"github.com/ctrun/ctrun/internal/testutil"
)

type junitReport struct {
	Tests    int `xml:"tests,attr"`
	Failures int `xml:"failures,attr"`
	Suites   []struct {
		Name     string `xml:"name,attr"`
		Tests    int    `xml:"tests,attr"`
		Failures int    `xml:"failures,attr"`
		Cases    []struct {
			Classname string `xml:"classname,attr"`
			Name      string `xml:"name,attr"`
			File      string `xml:"file,attr"`
			Line      int    `xml:"line,attr"`
			Failure   *struct {
				Message  string `xml:"message,attr"`
				Contents string `xml:",chardata"`
			} `xml:"failure"`
		} `xml:"testcase"`
	} `xml:"testsuite"`
}

func sampleSummary() runner.Summary {
	gtest := catalog.Executable{Path: "/build/unit_tests", Type: catalog.GoogleTest}
	catch2 := catalog.Executable{Path: "/build/catch_tests", Type: catalog.Catch2}

	return runner.Summary{
		Passed: 2,
		Failed: 1,
		Results: []runner.Result{
			{
				Test:     catalog.Test{Name: "Math.Adds", File: "/src/math_test.cpp", Line: 10, Executable: gtest},
				Passed:   true,
				Duration: 15 * time.Millisecond,
			},
			{
				Test:     catalog.Test{Name: "vectors resize", Executable: catch2},
				ExitCode: 42,
				Output:   []byte("REQUIRE( v.size() == 5 ) failed\n"),
				Duration: 5 * time.Millisecond,
			},
			{
				Test:     catalog.Test{Name: "Math.Divides", Executable: gtest},
				Passed:   true,
				Duration: time.Millisecond,
			},
		},
	}
}

func TestWriteJUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runner.WriteJUnit(&buf, sampleSummary()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(xml.Header)))

	var report junitReport
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, 3, report.Tests)
	assert.Equal(t, 1, report.Failures)
	require.Len(t, report.Suites, 2)

	gtest := report.Suites[0]
	assert.Equal(t, "/build/unit_tests", gtest.Name)
	assert.Equal(t, 2, gtest.Tests)
	assert.Zero(t, gtest.Failures)
	require.Len(t, gtest.Cases, 2)
	assert.Equal(t, "Math", gtest.Cases[0].Classname)
	assert.Equal(t, "Adds", gtest.Cases[0].Name)
	assert.Equal(t, "/src/math_test.cpp", gtest.Cases[0].File)
	assert.Equal(t, 10, gtest.Cases[0].Line)
	assert.Equal(t, "Divides", gtest.Cases[1].Name)

	catch2 := report.Suites[1]
	assert.Equal(t, 1, catch2.Failures)
	require.Len(t, catch2.Cases, 1)
	assert.Equal(t, "catch_tests", catch2.Cases[0].Classname)
	assert.Equal(t, "vectors resize", catch2.Cases[0].Name)
	require.NotNil(t, catch2.Cases[0].Failure)
	assert.Equal(t, "exit code 42", catch2.Cases[0].Failure.Message)
	assert.Contains(t, catch2.Cases[0].Failure.Contents, "REQUIRE( v.size() == 5 ) failed")
}

func TestWriteJUnitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "junit.xml")

	require.NoError(t, runner.WriteJUnitFile(path, sampleSummary(), testutil.NewTestLogger(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testsuites tests="3" failures="1"`)
}
