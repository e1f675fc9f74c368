// Package config loads componentize-go settings.
//
// Settings come from command line flags, COMPONENTIZE_GO_* environment
// variables, and an optional componentize-go.toml file in the working
// directory, in that order of precedence.
package config
