package bindings

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.bytecodealliance.org/wit/bindgen"
	"go.uber.org/zap"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/resolve"
)

// DefaultRoot is the Go package path generated bindings live under when no
// module name is given.
const DefaultRoot = "wit_component"

// CMModule is the runtime support module generated bindings import.
const (
	CMModule  = "go.bytecodealliance.org/cm"
	CMVersion = "v0.3.0"
)

// Options controls binding generation.
type Options struct {
	// ModName is the module path of a library package; empty generates
	// bindings for use inside a program.
	ModName string
	// Output is the directory the bindings will be written to. It is only
	// used to word the library instructions.
	Output string
	// Generator overrides the code generator.
	Generator     Generator
	GenerateStubs bool
	Format        bool
}

// File is one generated Go source file.
type File struct {
	Package string // Go import path
	Name    string
	Content []byte
}

// Generator produces Go files for world rooted at the package path root.
type Generator func(res *wit.Resolve, world, root string) ([]File, error)

// BindingSet maps slash-separated relative file names to contents.
type BindingSet map[string][]byte

// Names returns the file names in lexical order.
func (s BindingSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of Generate.
type Result struct {
	Files BindingSet
	// Message holds instructions for the caller; empty unless generating a
	// library.
	Message string
}

// Generate produces bindings for the world selected in res.
func Generate(res *resolve.Resolution, opts Options) (*Result, error) {
	root := opts.ModName
	if root == "" {
		root = DefaultRoot
	}
	gen := opts.Generator
	if gen == nil {
		gen = Bindgen
	}

	files, err := gen(res.Resolve, res.WorldName(), root)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseBindings, errors.KindUnsupported, err, "failed to generate bindings for "+res.WorldName())
	}

	set := make(BindingSet, len(files))
	for _, f := range files {
		name := fileName(root, f)
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return nil, errors.InvalidInput(errors.PhaseBindings, fmt.Sprintf("generated file %q escapes the output directory", name))
		}
		set[name] = f.Content
	}

	if opts.GenerateStubs {
		if err := addStubs(set); err != nil {
			return nil, err
		}
	}
	if opts.Format {
		if err := formatFiles(set); err != nil {
			return nil, err
		}
	}

	result := &Result{Files: set}
	if opts.ModName != "" {
		gomod, err := libraryModFile(opts.ModName)
		if err != nil {
			return nil, err
		}
		set["go.mod"] = gomod
		result.Message = libraryMessage(opts.ModName, opts.Output)
	}

	Logger().Debug("generated bindings",
		zap.String("world", res.WorldName()),
		zap.String("root", root),
		zap.Int("files", len(set)),
		zap.Bool("stubs", opts.GenerateStubs))
	return result, nil
}

// Bindgen generates bindings with go.bytecodealliance.org/wit/bindgen.
func Bindgen(res *wit.Resolve, world, root string) ([]File, error) {
	pkgs, err := bindgen.Go(res,
		bindgen.GeneratedBy("componentize-go"),
		bindgen.World(world),
		bindgen.PackageRoot(root),
	)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, pkg := range pkgs {
		if !pkg.HasContent() {
			continue
		}
		for name, f := range pkg.Files {
			if !f.HasContent() {
				continue
			}
			content, err := f.Bytes()
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", pkg.Path, name, err)
			}
			files = append(files, File{Package: pkg.Path, Name: name, Content: content})
		}
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].Package != files[j].Package {
			return files[i].Package < files[j].Package
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// fileName places f relative to root: wit_component/example/hello becomes
// example/hello/<name>.
func fileName(root string, f File) string {
	rel := strings.TrimPrefix(f.Package, root)
	rel = strings.TrimPrefix(rel, "/")
	return path.Join(rel, f.Name)
}

// Write stores every file under dir, creating directories as needed. Files
// written before a failure are left in place.
func (r *Result) Write(dir string) error {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.IO(errors.PhaseBindings, "resolve output directory", dir, err)
	}
	for _, name := range r.Files.Names() {
		rel := filepath.FromSlash(name)
		if !filepath.IsLocal(rel) {
			return errors.InvalidInput(errors.PhaseBindings, fmt.Sprintf("file %q escapes the output directory", name))
		}
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return errors.IO(errors.PhaseBindings, "create directory", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, r.Files[name], 0o644); err != nil {
			return errors.IO(errors.PhaseBindings, "write bindings", p, err)
		}
	}
	Logger().Info("wrote bindings", zap.String("dir", abs), zap.Int("files", len(r.Files)))
	return nil
}
