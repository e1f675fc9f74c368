// Package embed writes component-type metadata into a core wasm module.
//
// The metadata is the binary encoding of the selected world, produced by
// `wasm-tools component embed --dummy` against the resolved workspace and
// spliced into the module as custom sections. Existing component-type
// sections are replaced, so embedding twice yields the same module.
package embed
