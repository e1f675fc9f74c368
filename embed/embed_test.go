package embed

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/internal/wasmtest"
	"github.com/bytecodealliance/componentize-go/resolve"
	"github.com/bytecodealliance/componentize-go/wasm"
	"github.com/bytecodealliance/componentize-go/wasmtools/wasmtoolstest"
)

const helloJSON = `{
  "worlds": [{"name": "hello", "exports": {"greet": {"function": {}}}, "package": 0}],
  "packages": [{"name": "example:hello", "worlds": {"hello": 0}}]
}`

func setup(t *testing.T, module []byte) (string, resolve.Options) {
	t.Helper()
	dir := t.TempDir()
	wit := filepath.Join(dir, "wit")
	if err := os.MkdirAll(wit, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(wit, "world.wit"), []byte("package example:hello;\nworld hello {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "main.wasm")
	if err := os.WriteFile(path, module, 0o644); err != nil {
		t.Fatal(err)
	}
	return path, resolve.Options{Paths: []string{wit}}
}

func testModule(custom ...wasm.CustomSection) []byte {
	m := &wasm.Module{
		Types:          []wasm.FuncType{{}},
		Funcs:          []uint32{0},
		Exports:        []wasm.Export{{Name: "greet", Kind: wasm.KindFunc}},
		Code:           []wasm.FuncBody{{Body: []byte{0x00, 0x0b}}},
		CustomSections: custom,
	}
	return wasmtest.Encode(m)
}

func TestEmbedFile(t *testing.T) {
	path, opts := setup(t, testModule(wasm.CustomSection{Name: "component-type:stale", Data: []byte{1}}))
	fake := &wasmtoolstest.Fake{WitJSON: helloJSON}

	if err := New(fake.Tools()).EmbedFile(context.Background(), path, opts); err != nil {
		t.Fatalf("EmbedFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	mod, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("embedded module does not parse: %v", err)
	}
	var names []string
	for _, cs := range mod.CustomSections {
		names = append(names, cs.Name)
	}
	if !reflect.DeepEqual(names, []string{"component-type:example:hello/hello"}) {
		t.Errorf("custom sections = %v, want only the new metadata", names)
	}
	if exports := mod.ExportNames(wasm.KindFunc); len(exports) != 1 || exports[0] != "greet" {
		t.Errorf("exports = %v", exports)
	}

	// A second run replaces the section instead of adding another.
	if err := New(fake.Tools()).EmbedFile(context.Background(), path, opts); err != nil {
		t.Fatalf("EmbedFile (again): %v", err)
	}
	again, _ := os.ReadFile(path)
	if !bytes.Equal(again, data) {
		t.Error("embedding twice changed the module")
	}
}

func TestEmbedFileTextModule(t *testing.T) {
	path, opts := setup(t, []byte("(module)"))
	fake := &wasmtoolstest.Fake{WitJSON: helloJSON}

	if err := New(fake.Tools()).EmbedFile(context.Background(), path, opts); err != nil {
		t.Fatalf("EmbedFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !wasm.IsModule(data) {
		t.Fatalf("text module was not converted: %q", data)
	}
	parsed := false
	for _, c := range fake.Calls() {
		if c[0] == "parse" {
			parsed = true
		}
	}
	if !parsed {
		t.Error("wasm-tools parse was not used for the text module")
	}
}

func TestEmbedFileErrors(t *testing.T) {
	tests := []struct {
		name   string
		module []byte
		fake   *wasmtoolstest.Fake
		remove bool
		kind   errors.Kind
	}{
		{
			name:   "missing module",
			module: testModule(),
			fake:   &wasmtoolstest.Fake{WitJSON: helloJSON},
			remove: true,
			kind:   errors.KindIO,
		},
		{
			name:   "corrupt module",
			module: append(testModule(), 0x0a, 0xff),
			fake:   &wasmtoolstest.Fake{WitJSON: helloJSON},
			kind:   errors.KindBinaryFormat,
		},
		{
			name:   "metadata without component-type",
			module: testModule(),
			fake:   &wasmtoolstest.Fake{WitJSON: helloJSON, Metadata: testModule()},
			kind:   errors.KindBinaryFormat,
		},
		{
			name:   "embed tool failure",
			module: testModule(),
			fake:   &wasmtoolstest.Fake{WitJSON: helloJSON, Fail: map[string]string{"component embed": "error: world not found"}},
			kind:   errors.KindProcess,
		},
		{
			name:   "resolution failure",
			module: testModule(),
			fake:   &wasmtoolstest.Fake{WitJSON: `{"packages": [{"name": "other:pkg"}]}`},
			kind:   errors.KindResolution,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, opts := setup(t, tt.module)
			if tt.remove {
				os.Remove(path)
			}
			err := New(tt.fake.Tools()).EmbedFile(context.Background(), path, opts)
			if !stderrors.Is(err, &errors.Error{Kind: tt.kind}) {
				t.Fatalf("error = %v, want %s", err, tt.kind)
			}
			if tt.kind == errors.KindIO {
				var e *errors.Error
				if !stderrors.As(err, &e) || e.Path != path {
					t.Errorf("I/O error should name %s: %v", path, err)
				}
				return
			}
			data, _ := os.ReadFile(path)
			if !bytes.Equal(data, tt.module) {
				t.Error("module file changed after a failed embed")
			}
		})
	}
}
