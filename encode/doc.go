// Package encode turns a core module carrying component-type metadata into
// a component.
//
// Encoder mirrors a builder-style encoder: attach the module and any
// adapters, then Encode. The work is done by `wasm-tools component new`,
// which validates that the module, the adapters and the embedded world
// agree; the result is checked again with the component decoder before it
// is returned.
package encode
