// Package filewalker discovers string-table candidates in an input
// folder.
package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ListTables returns the sorted *.json files directly under root,
// skipping the *.json.meta companions the game's tooling writes next to
// each table. The walk is non-recursive: tables for one title live flat
// in a single folder.
func ListTables(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.meta") {
			continue
		}
		paths = append(paths, filepath.Join(root, e.Name()))
	}
	sort.Strings(paths)

	log.Debug().Int("count", len(paths)).Str("root", root).Msg("Discovered table files")
	return paths, nil
}
