package catalog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ctrun/ctrun/internal/retry"
)

var (
	// ErrProcessFailed is returned when an introspection run exits unsuccessfully.
	ErrProcessFailed = errors.New("introspection process failed")
	// ErrParseFailed is returned when introspection output does not match the expected schema.
	ErrParseFailed = errors.New("failed to parse introspection output")
)

// Catch2 self-identification.
const (
	LibIdentifyFlag = "--libidentify"
	catch2Framework = "Catch2"
)

type processOutput struct {
	stdout []byte
	stderr []byte
}

// invoke runs path with args until it exits and its output streams are drained. Starting is
// retried while the binary is still being written. A non-zero exit is reported as
// ErrProcessFailed, a failure to launch as a plain wrapped error.
func invoke(ctx context.Context, path string, args ...string) (processOutput, error) {
	var stdout, stderr bytes.Buffer

	err := retry.Do(ctx, retry.Launch, func() error {
		stdout.Reset()
		stderr.Reset()

		// #nosec G204 -- running discovered test binaries is the point.
		cmd := exec.CommandContext(ctx, path, args...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		return cmd.Run()
	}, retry.TextFileBusy)
	out := processOutput{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, fmt.Errorf("%w: %s %s: exit code %d",
				ErrProcessFailed, path, strings.Join(args, " "), exitErr.ExitCode())
		}
		return out, fmt.Errorf("run %s: %w", path, err)
	}

	return out, nil
}

// ProbeCatch2 runs path with --libidentify and reports whether it exits successfully and
// declares "framework: Catch2". Only a failure to launch the binary is returned as an error.
func ProbeCatch2(ctx context.Context, path string) (bool, error) {
	out, err := invoke(ctx, path, LibIdentifyFlag)
	if err != nil {
		if errors.Is(err, ErrProcessFailed) {
			return false, nil
		}
		return false, err
	}

	return declaresCatch2(out.stdout), nil
}

func declaresCatch2(stdout []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(key) == "framework" && strings.TrimSpace(value) == catch2Framework {
			return true
		}
	}
	return false
}
