// Package bindings generates Go source for the selected world of a resolved
// package graph.
//
// Code generation is delegated to go.bytecodealliance.org/wit/bindgen. On
// top of its output the package can add stub implementations for every
// exported function, run the generated files through goimports formatting,
// and lay the result out as a standalone module for use as a library.
package bindings
