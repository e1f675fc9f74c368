// Package gobuild compiles Go programs into wasip1 core modules.
//
// Every build first checks that the go executable is a 1.25 or newer
// release, removes any stale artifact at the output path, and then runs
// `go build` or `go test -c` with GOOS=wasip1 and GOARCH=wasm. The
// -checklinkname=0 linker flag is always passed; the component ABI glue
// depends on it.
package gobuild
