package componentize

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bytecodealliance/componentize-go/bindings"
	"github.com/bytecodealliance/componentize-go/embed"
	"github.com/bytecodealliance/componentize-go/encode"
	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/gobuild"
	"github.com/bytecodealliance/componentize-go/resolve"
	"github.com/bytecodealliance/componentize-go/toolchain"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// Options configures Componentize.
type Options struct {
	Build   gobuild.BuildOptions
	Resolve resolve.Options
	// Adapters replaces the bundled wasi_snapshot_preview1 adapter when set.
	Adapters []wasmtools.Adapter
}

// BindingsOptions configures Bindings.
type BindingsOptions struct {
	Resolve  resolve.Options
	Bindings bindings.Options
	// Output is the directory files are written to; empty means the
	// working directory.
	Output string
}

// TestOptions configures Test.
type TestOptions struct {
	Packages   []string
	OutputDir  string
	GoPath     string
	OnlyWASIP1 bool
}

// Pipeline runs the componentize-go stages with one set of tools.
type Pipeline struct {
	Tools    *wasmtools.Tools
	Builder  *gobuild.Builder
	Resolver *resolve.Resolver
	Embedder *embed.Embedder
}

// New creates a pipeline that runs the go toolchain with runner and
// wasm-tools through tools.
func New(runner toolchain.Runner, tools *wasmtools.Tools) *Pipeline {
	return &Pipeline{
		Tools:    tools,
		Builder:  gobuild.NewBuilder(runner),
		Resolver: resolve.NewResolver(tools),
		Embedder: embed.New(tools),
	}
}

// Componentize builds the Go module, embeds the selected world and encodes
// the result as a component. It returns the path of the component.
func (p *Pipeline) Componentize(ctx context.Context, opts Options) (string, error) {
	out, err := p.Builder.BuildModule(ctx, opts.Build)
	if err != nil {
		return "", err
	}
	Logger().Debug("built module", zap.String("path", out))

	if err := p.Embedder.EmbedFile(ctx, out, opts.Resolve); err != nil {
		return "", err
	}

	if opts.Adapters == nil {
		err = encode.EncodeFile(ctx, p.Tools, out)
	} else {
		err = encode.EncodeFileWith(ctx, p.Tools, out, opts.Adapters...)
	}
	if err != nil {
		return "", err
	}

	Logger().Info("componentized", zap.String("path", out))
	return out, nil
}

// Bindings resolves the WIT inputs and writes Go bindings for the selected
// world to opts.Output.
func (p *Pipeline) Bindings(ctx context.Context, opts BindingsOptions) (*bindings.Result, error) {
	res, err := p.Resolver.Resolve(ctx, opts.Resolve)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	dir := opts.Output
	if dir == "" {
		dir = "."
	}
	bopts := opts.Bindings
	if bopts.Output == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.IO(errors.PhaseBindings, "resolve output directory", dir, err)
		}
		bopts.Output = abs
	}

	result, err := bindings.Generate(res, bopts)
	if err != nil {
		return nil, err
	}
	if err := result.Write(dir); err != nil {
		return nil, err
	}
	return result, nil
}

// Test compiles a wasip1 test binary for every package and returns their
// paths in package order.
func (p *Pipeline) Test(ctx context.Context, opts TestOptions) ([]string, error) {
	if len(opts.Packages) == 0 {
		return nil, errors.InvalidInput(errors.PhaseBuild, "at least one package is required")
	}
	outputs := make([]string, 0, len(opts.Packages))
	for _, pkg := range opts.Packages {
		out, err := p.Builder.BuildTestModule(ctx, gobuild.TestOptions{
			Package:    pkg,
			OutputDir:  opts.OutputDir,
			GoPath:     opts.GoPath,
			OnlyWASIP1: opts.OnlyWASIP1,
		})
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
