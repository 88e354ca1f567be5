package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/discovery"
)

// collectTests finds the test executables selected by the options and enumerates their tests.
func (o *options) collectTests(ctx context.Context) ([]catalog.Test, error) {
	exes, err := o.findExecutables(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(exes, func(a, b catalog.Executable) int {
		return strings.Compare(a.Path, b.Path)
	})

	enumerator := catalog.NewEnumerator(catalog.Config{
		ExecutablesOnly: o.executablesOnly,
		GTestExtraArgs:  o.cfg.Discovery.GTestExtraArgs,
		Catch2ExtraArgs: o.cfg.Discovery.Catch2ExtraArgs,
		Filter:          o.filterRE,
		Jobs:            o.cfg.Discovery.Jobs,
		Logger:          o.logger,
	})

	tests := enumerator.EnumerateAll(ctx, exes)
	o.logger.Info().Int("executables", len(exes)).Int("tests", len(tests)).Msg("Collected tests")
	return tests, nil
}

func (o *options) findExecutables(ctx context.Context) ([]catalog.Executable, error) {
	frameworks, err := o.cfg.ExecutableTypes()
	if err != nil {
		return nil, err
	}

	classifier := discovery.NewClassifier(discovery.Config{
		Frameworks:  frameworks,
		ProbeCatch2: o.cfg.Discovery.ProbeCatch2,
		Jobs:        o.cfg.Discovery.Jobs,
		Logger:      o.logger,
	})

	if len(o.executables) > 0 {
		return classifier.Validate(ctx, o.executables)
	}

	dir, err := discovery.FindTestDir(o.cfg.Discovery.TestDir, o.cfg.Discovery.NoParent)
	if err != nil {
		return nil, err
	}
	o.logger.Debug().Str("dir", dir).Msg("Scanning test directory")

	return discovery.NewScanner(classifier, o.logger).Scan(ctx, dir)
}
