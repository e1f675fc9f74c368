package main

import (
	"github.com/spf13/cobra"

	componentize "github.com/bytecodealliance/componentize-go"
)

func newTestCmd(a *app) *cobra.Command {
	var opts componentize.TestOptions

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Build wasip1 test binaries for Go packages",
		Long: `Compile the tests of each package with go test -c into a wasip1 module
named test_<parent>_<package>.wasm.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			opts.GoPath = a.cfg.Go
			outs, err := p.Test(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, out := range outs {
				a.out.success("built test module", out)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("go", "", "go executable (default from PATH)")
	f.StringArrayVar(&opts.Packages, "pkg", nil, "package to compile tests for (repeatable)")
	f.StringVar(&opts.OutputDir, "output-dir", "", "directory for test modules (default .)")
	f.BoolVar(&opts.OnlyWASIP1, "wasip1", false, "build plain wasip1 modules")
	return cmd
}
