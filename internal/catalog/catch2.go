package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

// Catch2 listing flags.
var catch2ListArgs = []string{"--list-tests", "--reporter=JSON"}

type catch2Listing struct {
	Listings *struct {
		Tests []catch2Test `json:"tests"`
	} `json:"listings"`
}

type catch2Test struct {
	Name           string `json:"name"`
	SourceLocation struct {
		Filename string `json:"filename"`
		Line     int    `json:"line"`
	} `json:"source-location"`
}

func (e *Enumerator) enumerateCatch2(ctx context.Context, exe Executable) ([]Test, error) {
	ok, err := ProbeCatch2(ctx, exe.Path)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.logger.Debug().Str("path", exe.Path).Msg("Executable does not identify as Catch2")
		return nil, nil
	}

	out, err := invoke(ctx, exe.Path, catch2ListArgs...)
	if err != nil {
		return nil, err
	}

	var listing catch2Listing
	if err := json.Unmarshal(out.stdout, &listing); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, exe.Path, err)
	}
	if listing.Listings == nil {
		return nil, fmt.Errorf("%w: %s: missing listings", ErrParseFailed, exe.Path)
	}

	var tests []Test
	for _, tc := range listing.Listings.Tests {
		if !e.keep(tc.Name) {
			continue
		}
		t := newTest(exe, tc.Name, []string{tc.Name})
		tests = append(tests, located(t, tc.SourceLocation.Filename, tc.SourceLocation.Line))
	}

	e.logger.Debug().Str("path", exe.Path).Int("tests", len(tests)).Msg("Listed Catch2 executable")
	return tests, nil
}
