package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_PATH", filepath.Join(dir, "shop.db"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "dev"))
}

func TestExportCommand(t *testing.T) {
	dir := isolate(t)
	target := filepath.Join(dir, "history.csv")

	out, err := run(t, "export", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Token Number,Customer Name,Item Description,Phone Number,Weight (gms),Date,Time,Percentage,Element\n", string(data))
}

func TestPrintCommand_UnknownID(t *testing.T) {
	isolate(t)
	_, err := run(t, "print", "no-such-id", "-o", "x.pdf")
	assert.Error(t, err)
	_, statErr := os.Stat("x.pdf")
	assert.True(t, os.IsNotExist(statErr))
}

func TestSeedAndList(t *testing.T) {
	isolate(t)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created 5 tokens, committed 3 reports")

	_, err = run(t, "seed")
	assert.Error(t, err, "second seed needs --force")

	out, err = run(t, "list", "--all", "-q", "lakshmi")
	require.NoError(t, err)
	assert.Contains(t, out, "PENDING TOKENS (all): 2")
	assert.Contains(t, out, "REPORTS: 1")
	assert.Contains(t, out, "87.25% GOLD")
}
