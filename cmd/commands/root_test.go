package commands

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiqi-070707/council-ai/internal/printer"
)

func quietPrinter(t *testing.T) *bytes.Buffer {
	t.Helper()
	var errOut bytes.Buffer
	oldOut, oldErr := printer.Out, printer.Err
	printer.Out, printer.Err = io.Discard, &errOut
	t.Cleanup(func() { printer.Out, printer.Err = oldOut, oldErr })
	return &errOut
}

func TestRootShowsHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "replay")
}

func TestRootRejectsUnknownFlags(t *testing.T) {
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--unknown-flag", "value"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-01-01")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2025-01-01)", rootCmd.Version)
}

func TestServeRequiresAPIKey(t *testing.T) {
	errOut := quietPrinter(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("COUNCIL_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	err = runServe(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "Gemini is not configured")
}
