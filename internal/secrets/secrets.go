// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads access tokens from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// HuggingFaceToken names the file holding the bearer token sent to the
// datasets-server API.
const HuggingFaceToken = "huggingface-token"

// Set maps secret names to values.
type Set map[string]string

// Resolve returns explicit when it is set, otherwise the secret stored under
// key, or "" when there is none. Values from flags or config therefore win
// over files in .secrets/.
func (s Set) Resolve(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}

// Keys returns the loaded secret names, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load reads all files in dir. A missing directory is not an error and
// yields an empty Set. Dotfiles, subdirectories and blank files are
// skipped; unreadable files are logged at warn level and skipped.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("Could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}
