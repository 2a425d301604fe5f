package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoMainCompilesToStdout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.src")
	require.NoError(t, os.WriteFile(src, []byte("int x; x = 1; exit();"), 0o644))

	var stdout, stderr bytes.Buffer
	oldArgs := os.Args
	os.Args = []string{"rv32cc", src}
	defer func() { os.Args = oldArgs }()

	code := doMain(&stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), ".global _start")
}

func TestDoMainWritesToOutputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.src")
	out := filepath.Join(dir, "prog.s")
	require.NoError(t, os.WriteFile(src, []byte("exit();"), 0o644))

	var stdout, stderr bytes.Buffer
	oldArgs := os.Args
	os.Args = []string{"rv32cc", "-o", out, src}
	defer func() { os.Args = oldArgs }()

	code := doMain(&stdout, &stderr)
	require.Equal(t, 0, code)
	require.Empty(t, stdout.String())

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(contents), ".text")
}

func TestDoMainReportsMissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	oldArgs := os.Args
	os.Args = []string{"rv32cc"}
	defer func() { os.Args = oldArgs }()

	code := doMain(&stdout, &stderr)
	require.NotEqual(t, 0, code)
}

func TestDoMainReportsUnreadableInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	oldArgs := os.Args
	os.Args = []string{"rv32cc", "/nonexistent/path/prog.src"}
	defer func() { os.Args = oldArgs }()

	code := doMain(&stdout, &stderr)
	require.NotEqual(t, 0, code)
	require.NotEmpty(t, stderr.String())
}

func TestDoMainReportsParseErrorsToInjectedStderr(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.src")
	require.NoError(t, os.WriteFile(src, []byte("int x"), 0o644)) // missing ';'

	var stdout, stderr bytes.Buffer
	oldArgs := os.Args
	os.Args = []string{"rv32cc", src}
	defer func() { os.Args = oldArgs }()

	code := doMain(&stdout, &stderr)
	require.NotEqual(t, 0, code)
	require.Contains(t, stderr.String(), "syntax")
}

func TestDoMainPrintsUsageOnHelpFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	oldArgs := os.Args
	os.Args = []string{"rv32cc", "-h"}
	defer func() { os.Args = oldArgs }()

	code := doMain(&stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stderr.String(), "usage:")
}
