package bindings

import (
	"strings"

	"golang.org/x/tools/imports"

	"github.com/bytecodealliance/componentize-go/errors"
)

var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// formatFiles runs every Go file through goimports formatting.
func formatFiles(set BindingSet) error {
	for _, name := range set.Names() {
		if !strings.HasSuffix(name, ".go") {
			continue
		}
		out, err := imports.Process(name, set[name], formatOptions)
		if err != nil {
			return errors.New(errors.PhaseBindings, errors.KindParse).
				Path(name).
				Detail("failed to format generated code").
				Cause(err).
				Build()
		}
		set[name] = out
	}
	return nil
}
