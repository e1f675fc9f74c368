// Package componentize turns Go programs into WebAssembly components.
//
// The work is split across several packages, each usable on its own:
//
//	componentize/        Pipeline tying the stages together
//	├── resolve/         WIT workspace staging, package graph and world selection
//	├── gobuild/         go toolchain checks and wasip1 builds
//	├── embed/           component-type metadata embedding
//	├── encode/          component encoding with the preview1 adapter
//	├── bindings/        Go bindings generated from the resolved world
//	├── wasmtools/       typed wrapper over the wasm-tools CLI
//	├── toolchain/       process runners (host and in-process wazero)
//	├── adapter/         the bundled wasi_snapshot_preview1 reactor adapter
//	├── wasm/            core module section scanning and splicing
//	├── component/       component binary decoding and inspection
//	├── config/          file, environment and flag configuration
//	└── errors/          phase and kind tagged errors
//
// # Componentizing
//
//	tools := wasmtools.New(toolchain.ExecRunner{}, wasmtools.DefaultPath)
//	p := componentize.New(toolchain.ExecRunner{}, tools)
//	out, err := p.Componentize(ctx, componentize.Options{
//		Build:   gobuild.BuildOptions{ModuleDir: "."},
//		Resolve: resolve.Options{Paths: []string{"wit"}},
//	})
//
// The module is built with GOOS=wasip1 GOARCH=wasm, the selected world's
// metadata is embedded into it, and the result is encoded in place as a
// component. Each stage resolves the WIT inputs again; nothing is cached
// between them.
//
// # Bindings
//
//	res, err := p.Bindings(ctx, componentize.BindingsOptions{
//		Resolve: resolve.Options{World: "example:hello/hello"},
//		Output:  "internal",
//	})
//
// Files are written below Output. When a module name is given the bindings
// form a standalone library and res.Message explains how to depend on it.
package componentize
