// Package wasm reads and splices WebAssembly core module binaries.
//
// It covers what a componentization pipeline needs from a core module:
// section framing and ordering checks, the interface surface (types,
// imports, exports), and custom section manipulation. Function bodies are
// carried as opaque bytes.
//
// # Scanning
//
// ScanSections validates the preamble and section framing without decoding
// section contents:
//
//	sections, err := wasm.ScanSections(data)
//
// # Custom sections
//
// Component metadata travels in custom sections named "component-type...".
// Replace them in place:
//
//	stripped, err := wasm.StripCustomSections(data, func(name string) bool {
//		return strings.HasPrefix(name, wasm.ComponentTypeSection)
//	})
//	out := wasm.AppendCustomSection(stripped, "component-type:world", payload)
//
// # Parsing and encoding
//
//	module, err := wasm.ParseModule(data)
//	imports := module.FuncImports()
//	names := module.ExportNames(wasm.KindFunc)
package wasm
