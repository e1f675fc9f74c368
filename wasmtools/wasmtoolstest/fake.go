// Package wasmtoolstest provides a scriptable stand-in for the wasm-tools
// command line, for tests that must not depend on an installed binary.
package wasmtoolstest

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/bytecodealliance/componentize-go/internal/wasmtest"
	"github.com/bytecodealliance/componentize-go/toolchain"
	"github.com/bytecodealliance/componentize-go/wasm"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// Fake answers wasm-tools subcommands from its fields. Output files named
// by -o are written the way the real tool writes them.
type Fake struct {
	// WitJSON is printed by `component wit --json`.
	WitJSON string
	// WitText is printed by `component wit <path>`.
	WitText string
	// Metadata is written by `component embed`. When nil a module carrying
	// one component-type section named after the world is written.
	Metadata []byte
	// Component is written by `component new`. When nil Component() is used.
	Component []byte
	// Parsed is written by `parse`. When nil an empty core module is used.
	Parsed []byte
	// Fail maps a subcommand ("component new", "parse", ...) to the stderr
	// it fails with.
	Fail map[string]string

	mu    sync.Mutex
	calls [][]string
}

// Tools returns wasm-tools bound to f.
func (f *Fake) Tools() *wasmtools.Tools {
	return wasmtools.New(f, "")
}

// Calls returns the argument lists seen so far.
func (f *Fake) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

// Run implements toolchain.Runner.
func (f *Fake) Run(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd.Args)
	f.mu.Unlock()

	sub := subcommand(cmd.Args)
	if stderr, ok := f.Fail[sub]; ok {
		return toolchain.Result{ExitCode: 1, Stderr: []byte(stderr)}, nil
	}

	switch sub {
	case "component wit":
		if has(cmd.Args, "--json") {
			return toolchain.Result{Stdout: []byte(f.WitJSON)}, nil
		}
		return toolchain.Result{Stdout: []byte(f.WitText)}, nil
	case "component embed":
		out := f.Metadata
		if out == nil {
			out = MetadataModule(flag(cmd.Args, "--world"))
		}
		return write(cmd.Args, out)
	case "component new":
		out := f.Component
		if out == nil {
			out = Component()
		}
		return write(cmd.Args, out)
	case "parse":
		out := f.Parsed
		if out == nil {
			out = wasmtest.Encode(&wasm.Module{})
		}
		return write(cmd.Args, out)
	}
	return toolchain.Result{ExitCode: 2, Stderr: []byte("unexpected command: " + strings.Join(cmd.Args, " "))}, nil
}

// MetadataModule returns an empty core module carrying one component-type
// section for world.
func MetadataModule(world string) []byte {
	m := &wasm.Module{CustomSections: []wasm.CustomSection{{
		Name: wasm.ComponentTypeSection + ":" + world,
		Data: []byte{0x00, 0x61, 0x73, 0x6d, 0x0d, 0x00, 0x01, 0x00},
	}}}
	return wasmtest.Encode(m)
}

// Component returns a minimal well-formed component wrapping one empty
// core module.
func Component() []byte {
	core := wasmtest.Encode(&wasm.Module{})
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x0d, 0x00, 0x01, 0x00, 0x01}
	out = wasm.AppendLEB128u(out, uint32(len(core)))
	return append(out, core...)
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return ""
	}
	if args[0] == "component" && len(args) > 1 {
		return args[0] + " " + args[1]
	}
	return args[0]
}

func write(args []string, data []byte) (toolchain.Result, error) {
	out := flag(args, "-o")
	if out == "" {
		return toolchain.Result{Stdout: data}, nil
	}
	return toolchain.Result{}, os.WriteFile(out, data, 0o644)
}

func flag(args []string, name string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func has(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}
