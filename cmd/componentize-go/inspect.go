package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bytecodealliance/componentize-go/component"
	"github.com/bytecodealliance/componentize-go/errors"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the imports, exports and custom sections of a module or component",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.IO(errors.PhaseInspect, "read binary", path, err)
			}
			s, err := component.Inspect(data)
			if err != nil {
				var e *errors.Error
				if stderrors.As(err, &e) && e.Path == "" {
					e.Path = path
					return e
				}
				return errors.BinaryFormat(errors.PhaseInspect, "failed to decode "+path, err)
			}

			a.out.title(fmt.Sprintf("%s %s", s.Kind, path))
			if s.Kind == "component" {
				a.out.item("core modules", fmt.Sprint(s.CoreModules))
			}
			list(a.out, "import", s.Imports)
			list(a.out, "export", s.Exports)
			list(a.out, "custom", s.CustomSections)
			return nil
		},
	}
}

func list(p *printer, label string, items []string) {
	for _, it := range items {
		p.item(label, it)
	}
}
