// Package state persists the small bits of editor context that are
// worth keeping between runs: the folders last worked on and the last
// search and replace terms.
package state

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type State struct {
	InputDir    string `toml:"input_dir"`
	OutputDir   string `toml:"output_dir"`
	SearchTerm  string `toml:"search_term"`
	ReplaceTerm string `toml:"replace_term"`
}

// Load reads the state file. A missing file is a fresh start, not an
// error; a corrupt one is.
func Load(path string) (*State, error) {
	st := &State{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return st, nil
	}
	if _, err := toml.DecodeFile(path, st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return st, nil
}

// Save writes the state file, replacing any previous contents.
func (s *State) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
