package resolve

import (
	"context"
	"fmt"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// DefaultPath is the interface-document directory used when none is given.
const DefaultPath = "wit"

// Options selects what to resolve.
type Options struct {
	World    string
	Paths    []string
	Features FeatureSet
}

// Resolution is a resolved package graph and the selected world.
type Resolution struct {
	Resolve   *wit.Resolve
	World     *wit.World
	Workspace *Workspace
	Features  FeatureSet
	// MainPackages holds the package declared by each source path, in the
	// order the paths were given. Two sources declaring the same package
	// yield the same entry twice.
	MainPackages []*wit.Package
}

// WorldName returns the fully-qualified name of the selected world.
func (r *Resolution) WorldName() string {
	return WorldName(r.World)
}

// Close releases the staged workspace.
func (r *Resolution) Close() error {
	return r.Workspace.Close()
}

// Resolver loads interface documents through wasm-tools.
type Resolver struct {
	Tools *wasmtools.Tools
}

// NewResolver returns a Resolver using tools.
func NewResolver(tools *wasmtools.Tools) *Resolver {
	return &Resolver{Tools: tools}
}

// Resolve loads every path into one graph and selects a world. With no paths
// the DefaultPath directory is used. The caller must Close the result.
func (r *Resolver) Resolve(ctx context.Context, opts Options) (*Resolution, error) {
	return r.resolve(ctx, opts, true)
}

func (r *Resolver) resolve(ctx context.Context, opts Options, substitute bool) (*Resolution, error) {
	if len(opts.Paths) == 0 {
		if !substitute {
			return nil, errors.InvalidInput(errors.PhaseResolve, "no interface document paths to resolve")
		}
		opts.Paths = []string{DefaultPath}
		return r.resolve(ctx, opts, false)
	}

	ws, err := Stage(ctx, r.Tools, opts.Paths)
	if err != nil {
		return nil, err
	}

	res, err := r.load(ctx, ws, opts)
	if err != nil {
		ws.Close()
		return nil, err
	}
	return res, nil
}

func (r *Resolver) load(ctx context.Context, ws *Workspace, opts Options) (*Resolution, error) {
	doc, err := r.Tools.WitJSON(ctx, ws.Dir, opts.Features.Names(), opts.Features.All)
	if err != nil {
		return nil, errors.Resolution("failed to resolve interface documents", err)
	}

	graph, err := DecodeResolve(doc)
	if err != nil {
		return nil, err
	}

	main := make([]*wit.Package, 0, len(ws.Sources))
	for _, src := range ws.Sources {
		p, ok := FindPackage(graph, src.Package)
		if !ok {
			return nil, errors.New(errors.PhaseResolve, errors.KindResolution).
				Path(src.Path).
				Detail("package %s is missing from the resolved graph", src.Package.String()).
				Build()
		}
		main = append(main, p)
	}

	world, err := SelectWorld(graph, main, opts.World)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Resolve:      graph,
		World:        world,
		MainPackages: main,
		Workspace:    ws,
		Features:     opts.Features,
	}
	Logger().Debug("resolved interface documents",
		zap.Strings("paths", opts.Paths),
		zap.String("world", res.WorldName()),
		zap.Int("packages", len(graph.Packages)),
		zap.Strings("imports", itemNames(&world.Imports)),
		zap.Strings("exports", itemNames(&world.Exports)),
		zap.Strings("features", opts.Features.Names()))
	return res, nil
}

// String summarizes the resolution for diagnostics.
func (r *Resolution) String() string {
	return fmt.Sprintf("%s (%d packages)", r.WorldName(), len(r.Resolve.Packages))
}
