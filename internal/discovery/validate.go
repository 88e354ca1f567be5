package discovery

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ctrun/ctrun/internal/catalog"
)

// Validate classifies explicitly supplied executables. Unlike a scan, a path that is not a test
// executable is an error (ErrNotATestExecutable). Every path is checked and all failures are
// joined. The executables that did classify are returned in input order.
func (c *Classifier) Validate(ctx context.Context, paths []string) ([]catalog.Executable, error) {
	found := make([]*catalog.Executable, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(c.jobs)

	for i, path := range paths {
		g.Go(func() error {
			exe, err := c.Classify(ctx, path)
			switch {
			case err != nil:
				errs[i] = fmt.Errorf("%w: %s: %w", ErrNotATestExecutable, path, err)
			case exe == nil:
				errs[i] = fmt.Errorf("%w: %s", ErrNotATestExecutable, path)
			default:
				found[i] = exe
			}
			return nil
		})
	}
	_ = g.Wait()

	executables := make([]catalog.Executable, 0, len(paths))
	for _, exe := range found {
		if exe != nil {
			executables = append(executables, *exe)
		}
	}

	return executables, errors.Join(errs...)
}
