package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ctrun/ctrun/internal/catalog"
)

// resultBuffer is the capacity of the channel between classification workers and the collector.
const resultBuffer = 100

// Scanner walks a directory tree and collects the test executables in it.
type Scanner struct {
	classifier *Classifier
	logger     zerolog.Logger
}

// NewScanner creates a scanner that classifies candidates with classifier.
func NewScanner(classifier *Classifier, logger zerolog.Logger) *Scanner {
	return &Scanner{
		classifier: classifier,
		logger:     logger.With().Str("component", "scanner").Logger(),
	}
}

// Scan walks every file under root and returns the test executables found. Symbolic links are
// not followed and hidden or ignored files get no special treatment. Files that fail to
// classify are logged and skipped. The order of the result is unspecified.
func (s *Scanner) Scan(ctx context.Context, root string) ([]catalog.Executable, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	candidates := make(chan string)
	results := make(chan catalog.Executable, resultBuffer)

	var found []catalog.Executable
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for exe := range results {
			found = append(found, exe)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(candidates)
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry")
				return nil
			}
			if !d.Type().IsRegular() || !isExecutable(path) {
				return nil
			}

			select {
			case candidates <- path:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	for range s.classifier.jobs {
		g.Go(func() error {
			for path := range candidates {
				exe, err := s.classifier.Classify(gctx, path)
				if err != nil {
					s.logger.Debug().Err(err).Str("path", path).Msg("Failed to classify candidate")
					continue
				}
				if exe == nil {
					continue
				}

				select {
				case results <- *exe:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	err = g.Wait()
	close(results)
	<-collected

	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("root", root).Int("executables", len(found)).Msg("Scan complete")
	return found, nil
}
