package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PHOTOSHOP_MCP_CONFIG", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "photoshop-mcp dev")
	assert.Contains(t, out, "Git commit: unknown")
}

func TestToolsCommand(t *testing.T) {
	out, err := run(t, "--backend", "offline", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "photoshop_create_document")
	assert.NotContains(t, out, "photoshop_run_script")

	out, err = run(t, "--backend", "offline", "--allow-scripts", "--tool-prefix", "ps_", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "ps_run_script")
	assert.NotContains(t, out, "photoshop_")
}

func TestInvalidBackend(t *testing.T) {
	_, err := run(t, "--backend", "gimp", "tools")
	assert.Error(t, err)
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps([]string{"open_document", `{"file_path":"/a.png"}`, "photoshop_auto_trim", "flip_image"}, "photoshop_")
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "photoshop_open_document", steps[0].name)
	assert.JSONEq(t, `{"file_path":"/a.png"}`, string(steps[0].args))
	assert.Equal(t, "photoshop_auto_trim", steps[1].name)
	assert.Nil(t, steps[1].args)
	assert.Equal(t, "photoshop_flip_image", steps[2].name)

	_, err = parseSteps([]string{`{"a":1}`}, "photoshop_")
	assert.Error(t, err)
	_, err = parseSteps([]string{"deselect", `{"a":`}, "photoshop_")
	assert.Error(t, err)
}

func TestCallCommandConvertsOffline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 300, 100))))
	require.NoError(t, f.Close())
	outPath := filepath.Join(dir, "out.jpg")

	out, err := run(t, "--backend", "offline", "call",
		"open_document", `{"file_path":"`+in+`"}`,
		"convert_for_web", `{"output_path":"`+outPath+`","max_dimension":150}`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, map[string]any{"width": 150.0, "height": 50.0}, res["final_dimensions"])
	assert.FileExists(t, outPath)

	_, err = run(t, "--backend", "offline", "call", "flatten_document")
	assert.ErrorContains(t, err, "No active document")
}
