package adapter

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/wasm"
)

func TestVersion(t *testing.T) {
	if v := Version(); !strings.HasPrefix(v, "v") {
		t.Errorf("Version() = %q, want a release tag", v)
	}
}

func TestPreview1(t *testing.T) {
	data, err := Preview1()
	if stderrors.Is(err, &errors.Error{Kind: errors.KindPrecondition}) {
		t.Fatalf("adapter not bundled; run `go generate ./adapter`: %v", err)
	}
	if err != nil {
		t.Fatalf("Preview1: %v", err)
	}

	mod, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(mod.Imports) == 0 {
		t.Error("adapter imports nothing")
	}
	exports := mod.ExportNames(wasm.KindFunc)
	found := false
	for _, name := range exports {
		if name == "fd_write" {
			found = true
		}
	}
	if !found {
		t.Errorf("adapter does not export fd_write; exports: %v", exports)
	}

	again, _ := Preview1()
	if &again[0] != &data[0] {
		t.Error("Preview1 should load the adapter once")
	}
}
