// Package adapter bundles the wasi_snapshot_preview1 reactor adapter that
// bridges a wasip1 core module to the component ABI.
//
// The adapter is the wasi_snapshot_preview1.reactor.wasm asset of the
// wasmtime release named in blob/VERSION. Run `go generate ./adapter` to
// fetch it before building; it is embedded into the binary at compile time.
package adapter
