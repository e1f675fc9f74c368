package bindings

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/bytecodealliance/componentize-go/errors"
)

// libraryGoVersion is the go directive of generated library modules.
const libraryGoVersion = "1.25"

// libraryModFile returns the go.mod of a bindings library named mod.
func libraryModFile(mod string) ([]byte, error) {
	if err := module.CheckImportPath(mod); err != nil {
		return nil, errors.Wrap(errors.PhaseBindings, errors.KindInvalidInput, err, "invalid module name "+mod)
	}
	f := new(modfile.File)
	if err := f.AddModuleStmt(mod); err != nil {
		return nil, errors.Wrap(errors.PhaseBindings, errors.KindInvalidInput, err, "invalid module name "+mod)
	}
	if err := f.AddGoStmt(libraryGoVersion); err != nil {
		return nil, errors.Wrap(errors.PhaseBindings, errors.KindInvalidInput, err, "invalid go version")
	}
	if err := f.AddRequire(CMModule, CMVersion); err != nil {
		return nil, errors.Wrap(errors.PhaseBindings, errors.KindInvalidInput, err, "invalid requirement")
	}
	data, err := f.Format()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBindings, errors.KindParse, err, "failed to format go.mod")
	}
	return data, nil
}

// libraryMessage tells the caller how to depend on the generated library.
func libraryMessage(mod, dir string) string {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Success! Bindings for module %s were generated.\n", mod)
	b.WriteString("Before using them, add the following to the go.mod of your application:\n\n")
	fmt.Fprintf(&b, "\trequire %s v0.0.0\n", mod)
	fmt.Fprintf(&b, "\treplace %s => %s\n", mod, dir)
	return b.String()
}
