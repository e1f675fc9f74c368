package bindings

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"path"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/bytecodealliance/componentize-go/errors"
)

// StubFile is the name of the file holding stub implementations.
const StubFile = "stub.go"

// addStubs adds a stub.go next to every generated file that declares the
// Exports variable, assigning a panicking implementation to each exported
// function.
func addStubs(set BindingSet) error {
	for _, name := range set.Names() {
		if !strings.HasSuffix(name, ".go") {
			continue
		}
		stub, ok, err := stubFor(name, set[name])
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		target := path.Join(path.Dir(name), StubFile)
		if _, exists := set[target]; exists {
			return errors.InvalidInput(errors.PhaseBindings, fmt.Sprintf("cannot add %s: file already generated", target))
		}
		set[target] = stub
	}
	return nil
}

// stubFor returns the stub source for one generated file, or false if the
// file declares no Exports struct.
func stubFor(name string, src []byte) ([]byte, bool, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, false, errors.Wrap(errors.PhaseBindings, errors.KindParse, err, "failed to parse generated file "+name)
	}

	exports := findExports(file)
	if exports == nil {
		return nil, false, nil
	}

	text := func(n ast.Node) string {
		return string(src[fset.Position(n.Pos()).Offset:fset.Position(n.End()).Offset])
	}

	var body strings.Builder
	collectStubs(&body, "Exports", exports, text)
	if body.Len() == 0 {
		return nil, false, nil
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "package %s\n\n", file.Name.Name)
	if len(file.Imports) > 0 {
		out.WriteString("import (\n")
		for _, imp := range file.Imports {
			out.WriteString("\t" + text(imp) + "\n")
		}
		out.WriteString(")\n\n")
	}
	out.WriteString("func init() {\n")
	out.WriteString(body.String())
	out.WriteString("}\n")

	return pruneImports(path.Join(path.Dir(name), StubFile), out.Bytes())
}

func findExports(file *ast.File) *ast.StructType {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, s := range gen.Specs {
			vs, ok := s.(*ast.ValueSpec)
			if !ok || len(vs.Names) != 1 || vs.Names[0].Name != "Exports" {
				continue
			}
			if st, ok := vs.Type.(*ast.StructType); ok {
				return st
			}
		}
	}
	return nil
}

// collectStubs writes one assignment per function-typed field, recursing
// into nested structs such as resource method sets.
func collectStubs(b *strings.Builder, prefix string, st *ast.StructType, text func(ast.Node) string) {
	for _, field := range st.Fields.List {
		for _, n := range field.Names {
			target := prefix + "." + n.Name
			switch t := field.Type.(type) {
			case *ast.FuncType:
				fmt.Fprintf(b, "\t%s = %s {\n\t\tpanic(%s)\n\t}\n", target, text(t), strconv.Quote("unimplemented"))
			case *ast.StructType:
				collectStubs(b, target, t, text)
			}
		}
	}
}

// pruneImports drops imports the stub does not use and formats it.
func pruneImports(name string, src []byte) ([]byte, bool, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	if err != nil {
		return nil, false, errors.Wrap(errors.PhaseBindings, errors.KindParse, err, "failed to parse generated stub "+name)
	}
	type unused struct{ name, path string }
	var drop []unused
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || astutil.UsesImport(file, p) {
			continue
		}
		u := unused{path: p}
		if imp.Name != nil {
			u.name = imp.Name.Name
		}
		drop = append(drop, u)
	}
	for _, u := range drop {
		astutil.DeleteNamedImport(fset, file, u.name, u.path)
	}

	var out bytes.Buffer
	if err := format.Node(&out, fset, file); err != nil {
		return nil, false, errors.Wrap(errors.PhaseBindings, errors.KindParse, err, "failed to format generated stub "+name)
	}
	return out.Bytes(), true, nil
}
