package adapter

import (
	"embed"
	"io/fs"
	"strings"
	"sync"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/wasm"
)

//go:generate sh -c "curl -fsSL -o blob/wasi_snapshot_preview1.reactor.wasm https://github.com/bytecodealliance/wasmtime/releases/download/$(cat blob/VERSION)/wasi_snapshot_preview1.reactor.wasm"

// Name is the import module name the adapter is grafted onto.
const Name = "wasi_snapshot_preview1"

const file = "blob/wasi_snapshot_preview1.reactor.wasm"

//go:embed blob
var blob embed.FS

var preview1 = sync.OnceValues(func() ([]byte, error) {
	data, err := fs.ReadFile(blob, file)
	if err != nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindPrecondition).
			Path(file).
			Detail("the %s adapter is not bundled; run `go generate ./adapter` and rebuild", Name).
			Cause(err).
			Build()
	}
	if !wasm.IsModule(data) {
		return nil, errors.BinaryFormat(errors.PhaseEncode, "bundled adapter is not a core wasm module", nil)
	}
	return data, nil
})

// Preview1 returns the bundled reactor adapter. The bytes are shared and
// must not be modified.
func Preview1() ([]byte, error) {
	return preview1()
}

// Version returns the wasmtime release the adapter was taken from.
func Version() string {
	data, err := fs.ReadFile(blob, "blob/VERSION")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}
