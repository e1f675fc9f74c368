package main

import (
	"os"

	"github.com/spf13/cobra"

	componentize "github.com/bytecodealliance/componentize-go"
	"github.com/bytecodealliance/componentize-go/adapter"
	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/gobuild"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

func newComponentizeCmd(a *app) *cobra.Command {
	var (
		output     string
		modPath    string
		onlyWASIP1 bool
	)
	cmd := &cobra.Command{
		Use:   "componentize",
		Short: "Build a Go module into a WebAssembly component",
		Long: `Build the Go module with GOOS=wasip1 GOARCH=wasm, embed the selected world
and encode the result as a component, adapting WASI preview1 calls with the
bundled wasi_snapshot_preview1 adapter. --adapter replaces the bundled
adapter with a module read from disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adapters, err := a.adapters()
			if err != nil {
				return err
			}
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			out, err := p.Componentize(cmd.Context(), componentize.Options{
				Build: gobuild.BuildOptions{
					ModuleDir:  modPath,
					Output:     output,
					GoPath:     a.cfg.Go,
					OnlyWASIP1: onlyWASIP1,
				},
				Resolve:  a.resolveOptions(),
				Adapters: adapters,
			})
			if err != nil {
				return err
			}
			a.out.success("componentized", out)
			return nil
		},
	}

	f := cmd.Flags()
	f.String("go", "", "go executable (default from PATH)")
	f.StringVarP(&output, "output", "o", "", "output file (default ./"+gobuild.DefaultOutput+")")
	f.StringVar(&modPath, "mod", "", "directory of the Go module to build (default .)")
	f.BoolVar(&onlyWASIP1, "wasip1", false, "stop after building the wasip1 module")
	f.String("adapter", "", "wasi_snapshot_preview1 adapter module (default bundled)")
	return cmd
}

// adapters returns the configured adapter, or nil to use the bundled one.
func (a *app) adapters() ([]wasmtools.Adapter, error) {
	if a.cfg.Adapter == "" {
		return nil, nil
	}
	data, err := os.ReadFile(a.cfg.Adapter)
	if err != nil {
		return nil, errors.IO(errors.PhaseEncode, "failed to read adapter", a.cfg.Adapter, err)
	}
	return []wasmtools.Adapter{{Name: adapter.Name, Module: data}}, nil
}
