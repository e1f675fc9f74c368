package main

import (
	"github.com/spf13/cobra"

	componentize "github.com/bytecodealliance/componentize-go"
	"github.com/bytecodealliance/componentize-go/bindings"
)

func newBindingsCmd(a *app) *cobra.Command {
	var opts bindings.Options
	var output string

	cmd := &cobra.Command{
		Use:   "bindings",
		Short: "Generate Go bindings for a WIT world",
		Long: `Generate Go bindings for the selected world. With --mod-name the bindings
form a standalone module and the command prints how to depend on it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			res, err := p.Bindings(cmd.Context(), componentize.BindingsOptions{
				Resolve:  a.resolveOptions(),
				Bindings: opts,
				Output:   output,
			})
			if err != nil {
				return err
			}
			dir := output
			if dir == "" {
				dir = "."
			}
			a.out.success("generated bindings in", dir)
			if res.Message != "" {
				a.out.text(res.Message)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "directory to write bindings to (default .)")
	f.BoolVar(&opts.GenerateStubs, "generate-stubs", false, "add stub implementations of exported functions")
	f.BoolVar(&opts.Format, "format", false, "format generated files")
	f.StringVar(&opts.ModName, "mod-name", "", "generate a standalone module with this path")
	return cmd
}
