package svdconv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes a shell script standing in for svdconv.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "svdconv")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestRunnerSummary(t *testing.T) {
	tool := fakeTool(t, `echo "SVDConv"; echo "Found 0 Error(s) and 3 Warning(s)"; exit 1`)
	r := &Runner{Path: tool, Logger: discardLogger()}

	s, err := r.Summary(context.Background(), "device.svd")
	require.NoError(t, err)
	assert.Equal(t, Summary{Warnings: 3}, s)
}

func TestRunnerNoSummary(t *testing.T) {
	tool := fakeTool(t, `echo "something else"`)
	r := &Runner{Path: tool, Logger: discardLogger()}

	_, err := r.Summary(context.Background(), "device.svd")
	assert.ErrorIs(t, err, ErrNoSummary)
}

func TestRunnerOutputArguments(t *testing.T) {
	tool := fakeTool(t, `echo "$@"`)
	r := &Runner{Path: tool, Logger: discardLogger()}

	out, err := r.Output(context.Background(), "a.svd", FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "a.svd --debug-output-json --quiet", strings.TrimSpace(string(out)))

	out, err = r.Output(context.Background(), "a.svd", FormatText)
	require.NoError(t, err)
	assert.Equal(t, "a.svd --debug-output --quiet", strings.TrimSpace(string(out)))
}

func TestRunnerFailsWithoutOutput(t *testing.T) {
	tool := fakeTool(t, `echo "crash" >&2; exit 2`)
	r := &Runner{Path: tool, Logger: discardLogger()}

	_, err := r.Output(context.Background(), "a.svd", FormatJSON)
	assert.Error(t, err)
}

func TestRunnerTimeout(t *testing.T) {
	tool := fakeTool(t, `echo "partial"; exec sleep 5`)
	r := &Runner{Path: tool, Timeout: 100 * time.Millisecond, Logger: discardLogger()}

	_, err := r.Output(context.Background(), "a.svd", FormatJSON)
	assert.Error(t, err)
}

func TestRunnerMissingExecutable(t *testing.T) {
	r := &Runner{Path: filepath.Join(t.TempDir(), "does-not-exist")}

	_, err := r.Summary(context.Background(), "a.svd")
	assert.Error(t, err)
}
