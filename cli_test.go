package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/chazu/facade/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCommandConfig(t *testing.T) {
	out, err := execute(t, "generate", "--config", "examples/tower.toml", "--cells", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "tower/walls")
	assert.Contains(t, out, "5 parts")
}

func TestGenerateCommandScriptJSON(t *testing.T) {
	out, err := execute(t, "generate", "examples/tower.facade", "--cells", "16", "--json")
	require.NoError(t, err)

	var result EvalResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Meshes, 10)
	assert.Equal(t, "block/separators", result.Meshes[0].PartName)
}

func TestGenerateCommandErrors(t *testing.T) {
	_, err := execute(t, "generate", "examples/tower.facade", "--config", "examples/tower.toml")
	assert.ErrorContains(t, err, "not both")

	_, err = execute(t, "generate", "examples/missing.facade")
	assert.Error(t, err)

	_, err = execute(t, "generate", "--kernel", "cgal")
	assert.ErrorContains(t, err, "unknown kernel")

	out, err := execute(t, "generate", "--config", "examples/tower.toml", "--seed", "5", "--cells", "0")
	// A zero resolution falls back to the default.
	require.NoError(t, err, out)
}

func TestLayoutCommand(t *testing.T) {
	out, err := execute(t, "layout", "--json")
	require.NoError(t, err)

	var plan struct {
		Footprint []layoutPoint     `json:"footprint"`
		Windows   []json.RawMessage `json:"windows"`
		Pillars   []json.RawMessage `json:"pillars"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Len(t, plan.Footprint, 4)
	assert.Len(t, plan.Windows, 32)
	assert.Len(t, plan.Pillars, 64)

	out, err = execute(t, "layout", "--config", "examples/tower.toml")
	require.NoError(t, err)
	assert.Contains(t, out, "tower: 4 footprint corners")
}

func TestSectionCommand(t *testing.T) {
	out, err := execute(t, "section", "--preset", "normalized", "--seed", "7", "--json")
	require.NoError(t, err)

	var sec struct {
		Segments []struct {
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		} `json:"segments"`
		Profile []profilePoint `json:"profile"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sec))
	require.NotEmpty(t, sec.Segments)
	require.NotEmpty(t, sec.Profile)

	var w, h float64
	for _, s := range sec.Segments {
		w += s.Width
		h += s.Height
	}
	assert.InDelta(t, 1, w, 1e-9)
	assert.InDelta(t, 1, h, 1e-9)
	last := sec.Profile[len(sec.Profile)-1]
	assert.InDelta(t, 1, last.Height, 1e-9)

	again, err := execute(t, "section", "--preset", "normalized", "--seed", "7", "--json")
	require.NoError(t, err)
	assert.Equal(t, out, again, "same seed drew a different section")

	_, err = execute(t, "section", "--preset", "gothic")
	assert.ErrorContains(t, err, "gothic")
	_, err = execute(t, "section", "--width", "0")
	assert.ErrorContains(t, err, "positive")
}

func TestConfigCommandRoundTrip(t *testing.T) {
	out, err := execute(t, "config", "--config", "examples/tower.toml", "--seed", "99")
	require.NoError(t, err)

	d, err := config.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "tower", d.Name)
	assert.Equal(t, uint64(99), d.Seed)
	assert.Equal(t, 7, d.Params.General.FloorCount)
}
