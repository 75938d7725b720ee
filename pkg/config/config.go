// Package config reads and writes building designs as TOML.
//
// A file holds one design. Keys left out keep their default values, and
// unknown keys are rejected so that typos do not silently fall back to
// defaults:
//
//	name = "tower"
//	seed = 42
//
//	[general]
//	width = 10
//	depth = 10
//	floor_count = 5
//
//	[walls.face]
//	kind = "rows"
//	rows = 4
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chazu/facade/pkg/building"
)

// MaxFileSize bounds the size of a design file.
const MaxFileSize = 1 << 20

// file is the on-disk layout: the design's name and seed at the top
// level, each parameter group as its own table.
type file struct {
	Name string `toml:"name"`
	Seed uint64 `toml:"seed"`
	building.Params
}

// UnknownKeysError reports keys in a design file that match no parameter.
type UnknownKeysError struct {
	Keys []string
}

func (e *UnknownKeysError) Error() string {
	return fmt.Sprintf("config: unknown keys: %s", strings.Join(e.Keys, ", "))
}

// Decode reads a design from r, starting from building.DefaultDesign.
func Decode(r io.Reader) (building.Design, error) {
	d := building.DefaultDesign()
	f := file{Name: d.Name, Seed: d.Seed, Params: d.Params}

	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return building.Design{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return building.Design{}, &UnknownKeysError{Keys: keys}
	}
	return building.Design{Name: f.Name, Seed: f.Seed, Params: f.Params}, nil
}

// Load reads a design from a .toml file. A design without a name is named
// after the file.
func Load(path string) (building.Design, error) {
	path = filepath.Clean(path)
	if ext := filepath.Ext(path); ext != ".toml" {
		return building.Design{}, fmt.Errorf("config: %s: expected a .toml file", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return building.Design{}, fmt.Errorf("config: %w", err)
	}
	if info.Size() > MaxFileSize {
		return building.Design{}, fmt.Errorf("config: %s is %d bytes, limit is %d", path, info.Size(), MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return building.Design{}, fmt.Errorf("config: %w", err)
	}

	d, err := Decode(bytes.NewReader(data))
	if err != nil {
		return building.Design{}, fmt.Errorf("%w (in %s)", err, path)
	}
	if d.Name == "" || d.Name == building.DefaultDesign().Name {
		d.Name = strings.TrimSuffix(filepath.Base(path), ".toml")
	}
	return d, nil
}

// Encode writes d to w in the layout Decode reads.
func Encode(w io.Writer, d building.Design) error {
	f := file{Name: d.Name, Seed: d.Seed, Params: d.Params}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
