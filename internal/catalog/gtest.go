package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GoogleTest command-line flags.
const (
	GTestListFlag        = "--gtest_list_tests"
	GTestOutputFlag      = "--gtest_output=json:/dev/stderr"
	GTestFilterPrefix    = "--gtest_filter="
	GTestAlsoRunDisabled = "--gtest_also_run_disabled_tests"
)

type gtestListing struct {
	Testsuites *[]gtestSuite `json:"testsuites"`
}

type gtestSuite struct {
	Name      string      `json:"name"`
	Testsuite []gtestCase `json:"testsuite"`
}

type gtestCase struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line"`
}

func (e *Enumerator) enumerateGTest(ctx context.Context, exe Executable) ([]Test, error) {
	listArgs := []string{GTestListFlag, GTestOutputFlag}
	var runExtra []string
	for _, arg := range e.config.GTestExtraArgs {
		if strings.HasPrefix(arg, GTestFilterPrefix) {
			listArgs = append(listArgs, arg)
		} else {
			runExtra = append(runExtra, arg)
		}
	}

	out, err := invoke(ctx, exe.Path, listArgs...)
	if err != nil {
		return nil, err
	}

	var listing gtestListing
	if err := json.Unmarshal(out.stderr, &listing); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, exe.Path, err)
	}
	if listing.Testsuites == nil {
		return nil, fmt.Errorf("%w: %s: missing testsuites", ErrParseFailed, exe.Path)
	}

	var tests []Test
	for _, suite := range *listing.Testsuites {
		for _, tc := range suite.Testsuite {
			name := suite.Name + "." + tc.Name
			if !e.keep(name) {
				continue
			}

			args := make([]string, 0, 2+len(runExtra))
			args = append(args, GTestFilterPrefix+name, GTestAlsoRunDisabled)
			args = append(args, runExtra...)

			tests = append(tests, located(newTest(exe, name, args), tc.File, tc.Line))
		}
	}

	e.logger.Debug().Str("path", exe.Path).Int("tests", len(tests)).Msg("Listed GoogleTest executable")
	return tests, nil
}
