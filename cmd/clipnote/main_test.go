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

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range newRootCmd().Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["extract"], "extract command missing")
	assert.True(t, names["config"], "config command missing")
}

func TestExtractCmd_LineRange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "notes", "inbox.md")
	cfgPath := writeConfig(t, dir, "target:\n  path: "+target+"\nlog:\n  level: error\n")
	draft := filepath.Join(dir, "draft.md")
	require.NoError(t, os.WriteFile(draft, []byte("one\ntwo\nthree\nfour"), 0o644))

	out, err := execute(t, "--config", cfgPath, "extract", draft, "--lines", "2:3", "--write-source")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved selection to "+target)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "<sub>[[draft]] | "), "unexpected entry %q", got)
	assert.True(t, strings.HasSuffix(string(got), ":</sub>\ntwo\nthree"), "unexpected entry %q", got)

	source, err := os.ReadFile(draft)
	require.NoError(t, err)
	assert.Equal(t, "one\n\nfour", string(source))
}

func TestExtractCmd_ParagraphPrependsAfterMarker(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "inbox.md")
	require.NoError(t, os.WriteFile(target, []byte("# Inbox\n## New\nold entry"), 0o644))
	cfgPath := writeConfig(t, dir, "target:\n  path: "+target+"\ninsert:\n  mode: prepend\n  marker: \"## New\"\n")
	draft := filepath.Join(dir, "draft.md")
	require.NoError(t, os.WriteFile(draft, []byte("intro\n\nkeep me\nand me\n\noutro"), 0o644))

	_, err := execute(t, "--config", cfgPath, "extract", draft, "--line", "4")
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	lines := strings.Split(string(got), "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, []string{"# Inbox", "## New"}, lines[:2])
	assert.Equal(t, []string{"keep me", "and me", "", "old entry"}, lines[3:7])

	source, err := os.ReadFile(draft)
	require.NoError(t, err)
	assert.Equal(t, "intro\n\nkeep me\nand me\n\noutro", string(source), "source must stay untouched without --write-source")
}

func TestExtractCmd_FilterRejects(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "inbox.md")
	cfgPath := writeConfig(t, dir, "target:\n  path: "+target+"\nfilter:\n  pattern: \"^TODO\"\n")
	draft := filepath.Join(dir, "draft.md")
	require.NoError(t, os.WriteFile(draft, []byte("just prose"), 0o644))

	_, err := execute(t, "--config", cfgPath, "extract", draft, "--line", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match the filter")
	assert.NoFileExists(t, target)
}

func TestExtractCmd_Validation(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "target:\n  path: "+filepath.Join(dir, "inbox.md")+"\n")
	draft := filepath.Join(dir, "draft.md")
	require.NoError(t, os.WriteFile(draft, []byte("a\nb"), 0o644))

	_, err := execute(t, "--config", cfgPath, "extract", draft)
	assert.Error(t, err, "one of --lines or --line is required")

	_, err = execute(t, "--config", cfgPath, "extract", draft, "--lines", "1:5")
	assert.ErrorContains(t, err, "document has 2 lines")

	_, err = execute(t, "--config", cfgPath, "extract", draft, "--line", "0")
	assert.Error(t, err)
}

func TestParseLineRange(t *testing.T) {
	cases := []struct {
		in         string
		start, end int
		wantErr    bool
	}{
		{in: "3:7", start: 3, end: 7},
		{in: "4", start: 4, end: 4},
		{in: " 2 : 2 ", start: 2, end: 2},
		{in: "5:3", wantErr: true},
		{in: "0:1", wantErr: true},
		{in: "a:b", wantErr: true},
	}
	for _, tc := range cases {
		start, end, err := parseLineRange(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.start, start, tc.in)
		assert.Equal(t, tc.end, end, tc.in)
	}
}

func TestConfigCmd_InitAndShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "clipnote", "config.yaml")

	out, err := execute(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default config")
	assert.FileExists(t, cfgPath)

	out, err = execute(t, "--config", cfgPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	out, err = execute(t, "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "path: inbox.md")
	assert.Contains(t, out, "mode: append")
}
