package resolve

import (
	"strings"

	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// FeatureSet is the set of WIT feature gates enabled during resolution.
type FeatureSet struct {
	names []string
	// All enables every feature gate regardless of names.
	All bool
}

// ParseFeatures builds a FeatureSet from raw strings. Each string is split
// on commas and then on whitespace; empty tokens are discarded. Names keep
// their case and first-seen order.
func ParseFeatures(raw []string, all bool) FeatureSet {
	fs := FeatureSet{All: all}
	seen := make(map[string]bool)
	for _, s := range raw {
		for _, part := range strings.Split(s, ",") {
			for _, name := range strings.Fields(part) {
				if seen[name] {
					continue
				}
				seen[name] = true
				fs.names = append(fs.names, name)
			}
		}
	}
	return fs
}

// Names returns the enabled feature names in first-seen order.
func (fs FeatureSet) Names() []string {
	return append([]string(nil), fs.names...)
}

// Args renders the set as wasm-tools command line flags.
func (fs FeatureSet) Args() []string {
	return wasmtools.FeatureArgs(fs.names, fs.All)
}
