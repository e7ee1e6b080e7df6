package config

import (
	"maps"
	"slices"

	"idproof/internal/proofing"
)

// Settings is an immutable set of resolved values handed to vendor factories.
type Settings struct {
	values map[string]string
}

// NewSettings copies values into a Settings.
func NewSettings(values map[string]string) Settings {
	return Settings{values: maps.Clone(values)}
}

// Get returns the value or the empty string.
func (s Settings) Get(name string) string {
	return s.values[name]
}

// Lookup reports whether name is present and non-empty.
func (s Settings) Lookup(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok && v != ""
}

// Require fails with a *proofing.MisconfiguredError for the first missing name.
func (s Settings) Require(names ...string) error {
	for _, name := range names {
		if _, ok := s.Lookup(name); !ok {
			return &proofing.MisconfiguredError{Setting: name}
		}
	}
	return nil
}

// Names returns the sorted setting names, safe to log.
func (s Settings) Names() []string {
	return slices.Sorted(maps.Keys(s.values))
}
