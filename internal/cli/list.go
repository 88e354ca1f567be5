package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ctrun/ctrun/internal/catalog"
	"github.com/ctrun/ctrun/internal/cli/helpers"
	"github.com/ctrun/ctrun/internal/elf"
)

var listFormats = []helpers.OutputFormat{
	helpers.FormatJSON,
	helpers.FormatPrettyJSON,
	helpers.FormatPlain,
	helpers.FormatTable,
	helpers.FormatCSV,
}

// listedTest is a catalog entry as printed by list, optionally with its binary's metadata.
type listedTest struct {
	catalog.Test
	ELF *elf.Metadata `json:"elf,omitempty"`
}

// testRow is the tabular form of a test.
type testRow struct {
	Name       string `header:"NAME"`
	Framework  string `header:"FRAMEWORK"`
	Location   string `header:"LOCATION"`
	Executable string `header:"EXECUTABLE"`
}

func (r testRow) String() string { return r.Name }

func newListCmd(opts *options) *cobra.Command {
	var (
		format      string
		elfMetadata bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tests found in test executables",
		Long: `List every test of every discovered test executable.

JSON output carries each test's executable, resolved source location and the arguments
that run exactly that test. Plain output prints one test name per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, listFormats); err != nil {
				return err
			}

			tests, err := opts.collectTests(cmd.Context())
			if err != nil {
				return err
			}

			formatter, err := helpers.NewFormatter(helpers.OutputFormat(format))
			if err != nil {
				return err
			}

			if !helpers.OutputFormat(format).IsStructured() {
				return formatter.Format(toRows(tests), cmd.OutOrStdout())
			}

			listed, err := withMetadata(tests, elfMetadata)
			if err != nil {
				return err
			}
			return formatter.Format(listed, cmd.OutOrStdout())
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatJSON, listFormats)
	cmd.Flags().BoolVar(&elfMetadata, "elf-metadata", false, "Include ELF header metadata of each executable (JSON formats)")

	return cmd
}

func toRows(tests []catalog.Test) []testRow {
	rows := make([]testRow, 0, len(tests))
	for _, t := range tests {
		location := ""
		if t.HasLocation() {
			location = t.File + ":" + strconv.Itoa(t.Line)
		}
		rows = append(rows, testRow{
			Name:       t.Name,
			Framework:  t.Executable.Type.String(),
			Location:   location,
			Executable: t.Executable.Path,
		})
	}
	return rows
}

func withMetadata(tests []catalog.Test, include bool) ([]listedTest, error) {
	listed := make([]listedTest, 0, len(tests))
	cache := make(map[string]*elf.Metadata)

	for _, t := range tests {
		entry := listedTest{Test: t}
		if include {
			m, ok := cache[t.Executable.Path]
			if !ok {
				meta, err := elf.ReadMetadata(t.Executable.Path)
				if err != nil {
					return nil, fmt.Errorf("failed to read metadata of %s: %w", t.Executable.Path, err)
				}
				m = &meta
				cache[t.Executable.Path] = m
			}
			entry.ELF = m
		}
		listed = append(listed, entry)
	}
	return listed, nil
}
