package wasmtools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/toolchain"
)

// DefaultPath is the executable looked up on PATH when no path is configured.
const DefaultPath = "wasm-tools"

// Tools wraps the wasm-tools command line.
type Tools struct {
	Runner toolchain.Runner
	Path   string
}

// New returns Tools running the executable at path through runner.
// An empty path selects DefaultPath.
func New(runner toolchain.Runner, path string) *Tools {
	if path == "" {
		path = DefaultPath
	}
	return &Tools{Runner: runner, Path: path}
}

// Adapter is a named adapter module passed to component new.
type Adapter struct {
	Name   string
	Module []byte
}

// FeatureArgs renders WIT feature gates as command line flags.
func FeatureArgs(features []string, all bool) []string {
	var args []string
	if len(features) > 0 {
		args = append(args, "--features", strings.Join(features, ","))
	}
	if all {
		args = append(args, "--all-features")
	}
	return args
}

func (t *Tools) run(ctx context.Context, args ...string) (toolchain.Result, error) {
	cmd := toolchain.Command{Path: t.Path, Args: args}
	res, err := t.Runner.Run(ctx, cmd)
	if err != nil {
		return res, errors.New(errors.PhaseTool, errors.KindProcess).
			Detail("failed to run %s", t.Path).
			Cause(err).
			Build()
	}
	if !res.Success() {
		name := "wasm-tools"
		if len(args) > 0 {
			name += " " + args[0]
			if args[0] == "component" && len(args) > 1 {
				name += " " + args[1]
			}
		}
		return res, errors.Process(errors.PhaseTool, name, res.ExitCode, res.Stderr)
	}
	return res, nil
}

// WitJSON resolves the WIT package at path and returns its JSON form.
func (t *Tools) WitJSON(ctx context.Context, path string, features []string, all bool) ([]byte, error) {
	args := []string{"component", "wit", "--json"}
	args = append(args, FeatureArgs(features, all)...)
	args = append(args, path)
	res, err := t.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

// WitText prints the WIT text form of a package, including binary-encoded packages.
func (t *Tools) WitText(ctx context.Context, path string) (string, error) {
	res, err := t.run(ctx, "component", "wit", path)
	if err != nil {
		return "", err
	}
	return string(res.Stdout), nil
}

// EmbedMetadata produces a placeholder core module carrying the
// component-type metadata of world.
func (t *Tools) EmbedMetadata(ctx context.Context, path, world string, features []string, all bool) ([]byte, error) {
	return t.withTemp(func(dir string) ([]byte, error) {
		out := filepath.Join(dir, "metadata.wasm")
		args := []string{"component", "embed", path, "--world", world, "--encoding", "utf8", "--dummy", "-o", out}
		args = append(args, FeatureArgs(features, all)...)
		if _, err := t.run(ctx, args...); err != nil {
			return nil, err
		}
		return readOutput(out)
	})
}

// Parse converts WebAssembly text to binary.
func (t *Tools) Parse(ctx context.Context, text []byte) ([]byte, error) {
	return t.withTemp(func(dir string) ([]byte, error) {
		in := filepath.Join(dir, "input.wat")
		out := filepath.Join(dir, "output.wasm")
		if err := os.WriteFile(in, text, 0o644); err != nil {
			return nil, errors.IO(errors.PhaseTool, "write temporary input", in, err)
		}
		if _, err := t.run(ctx, "parse", in, "-o", out); err != nil {
			return nil, err
		}
		return readOutput(out)
	})
}

// NewComponent encodes a core module carrying component-type metadata into a
// component, grafting each adapter onto its import module name.
func (t *Tools) NewComponent(ctx context.Context, module []byte, adapters []Adapter, validate bool) ([]byte, error) {
	return t.withTemp(func(dir string) ([]byte, error) {
		in := filepath.Join(dir, "module.wasm")
		out := filepath.Join(dir, "component.wasm")
		if err := os.WriteFile(in, module, 0o644); err != nil {
			return nil, errors.IO(errors.PhaseTool, "write temporary input", in, err)
		}

		args := []string{"component", "new", in}
		for i, a := range adapters {
			p := filepath.Join(dir, fmt.Sprintf("adapter-%d.wasm", i))
			if err := os.WriteFile(p, a.Module, 0o644); err != nil {
				return nil, errors.IO(errors.PhaseTool, "write temporary adapter", p, err)
			}
			args = append(args, "--adapt", a.Name+"="+p)
		}
		if !validate {
			args = append(args, "--skip-validation")
		}
		args = append(args, "-o", out)

		if _, err := t.run(ctx, args...); err != nil {
			return nil, err
		}
		return readOutput(out)
	})
}

func (t *Tools) withTemp(fn func(dir string) ([]byte, error)) ([]byte, error) {
	dir, err := os.MkdirTemp("", "componentize-go-*")
	if err != nil {
		return nil, errors.IO(errors.PhaseTool, "create temporary directory", os.TempDir(), err)
	}
	defer os.RemoveAll(dir)
	return fn(dir)
}

func readOutput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO(errors.PhaseTool, "read tool output", path, err)
	}
	return data, nil
}
