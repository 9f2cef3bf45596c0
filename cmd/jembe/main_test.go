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

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-level", "error"))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	assert.True(t, strings.HasPrefix(out, "jembe version "))
}

func TestReplay(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	resp := filepath.Join(dir, "resp.json")
	require.NoError(t, os.WriteFile(page, []byte(`<html jmb-name="/page"><body>`+
		`<div jmb-name="/page/list" jmb-data='{"state":{"page":1}}'><p>one</p></div>`+
		`</body></html>`), 0o644))
	require.NoError(t, os.WriteFile(resp, []byte(
		`[{"execName": "/page/list", "state": {"page": 2}, "dom": "<div><p>two</p></div>"}]`), 0o644))

	out := run(t, "replay", page, resp)

	assert.Contains(t, out, "rendered /page/list")
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "two")
	assert.Contains(t, out, "`/page/list`")
}
