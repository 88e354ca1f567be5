package runner

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ctrun/ctrun/internal/catalog"
	ctrerrors "github.com/ctrun/ctrun/internal/errors"
)

// JUnit XML schema, as consumed by CI systems.

type jUnitXMLDocument struct {
	XMLName  xml.Name            `xml:"testsuites"`
	Tests    int                 `xml:"tests,attr"`
	Failures int                 `xml:"failures,attr"`
	Time     string              `xml:"time,attr"`
	Suites   []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Name       string             `xml:"name,attr"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Time       string             `xml:"time,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName   xml.Name         `xml:"testcase"`
	Classname string           `xml:"classname,attr"`
	Name      string           `xml:"name,attr"`
	Time      string           `xml:"time,attr"`
	File      string           `xml:"file,attr,omitempty"`
	Line      int              `xml:"line,attr,omitempty"`
	Failure   *jUnitXMLFailure `xml:"failure,omitempty"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// WriteJUnit writes summary as a JUnit XML report with one test suite per executable.
func WriteJUnit(w io.Writer, summary Summary) error {
	doc := jUnitXMLDocument{
		Tests:    summary.Total(),
		Failures: summary.Failed,
	}

	var total time.Duration
	var suiteTimes []time.Duration
	index := make(map[string]int)
	for _, result := range summary.Results {
		exe := result.Test.Executable
		i, ok := index[exe.Path]
		if !ok {
			i = len(doc.Suites)
			index[exe.Path] = i
			suiteTimes = append(suiteTimes, 0)
			doc.Suites = append(doc.Suites, jUnitXMLTestSuite{
				Name: exe.Path,
				Properties: []jUnitXMLProperty{
					{Name: "executable.type", Value: exe.Type.String()},
				},
			})
		}
		suite := &doc.Suites[i]

		classname, name := splitTestName(result.Test)
		testCase := jUnitXMLTestCase{
			Classname: classname,
			Name:      name,
			Time:      jUnitDurationString(result.Duration),
			File:      result.Test.File,
			Line:      result.Test.Line,
		}
		if !result.Passed {
			suite.Failures++
			testCase.Failure = &jUnitXMLFailure{
				Message:  fmt.Sprintf("exit code %d", result.ExitCode),
				Type:     "failure",
				Contents: string(result.Output),
			}
		}

		suite.Tests++
		suite.TestCases = append(suite.TestCases, testCase)
		suiteTimes[i] += result.Duration
		total += result.Duration
	}

	for i, d := range suiteTimes {
		doc.Suites[i].Time = jUnitDurationString(d)
	}
	doc.Time = jUnitDurationString(total)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode junit report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteJUnitFile writes the JUnit report to path. A partially written file is removed.
func WriteJUnitFile(path string, summary Summary, logger zerolog.Logger) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	// #nosec G304 -- path is supplied by the user.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create junit report: %w", err)
	}

	written := false
	defer ctrerrors.DeferRemove(logger, path, &written)

	if err := WriteJUnit(f, summary); err != nil {
		ctrerrors.DeferClose(logger, f, "failed to close junit report")
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close junit report: %w", err)
	}

	written = true
	logger.Debug().Str("path", path).Int("tests", summary.Total()).Msg("Wrote JUnit report")
	return nil
}

// splitTestName returns the JUnit classname and name of a test. GoogleTest names split at the
// suite separator; anything else is classed under its executable.
func splitTestName(t catalog.Test) (classname, name string) {
	if t.Executable.Type == catalog.GoogleTest {
		if suite, tc, ok := strings.Cut(t.Name, "."); ok {
			return suite, tc
		}
	}
	return filepath.Base(t.Executable.Path), t.Name
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
