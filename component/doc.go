// Package component reads the top level of WebAssembly Component Model binaries.
//
// Decode checks the component preamble and section framing, collects the
// embedded core modules, and decodes import and export names. Type, alias,
// canon and instance sections are framed but not interpreted. Inspect
// summarizes either a core module or a component.
package component
