package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// WorkspacePackage is the synthetic root package every workspace declares.
const WorkspacePackage = "componentize-go:workspace"

const workspaceSource = "package " + WorkspacePackage + ";\n\nworld workspace {}\n"

// SourceKind classifies an interface-document source path.
type SourceKind int

const (
	SourceDir SourceKind = iota
	SourceWIT
	SourceBinary
)

func (k SourceKind) String() string {
	switch k {
	case SourceDir:
		return "directory"
	case SourceWIT:
		return "wit"
	case SourceBinary:
		return "binary"
	}
	return "unknown"
}

// Source is one staged input path.
type Source struct {
	Path    string // absolute path as supplied
	Entry   string // staged location inside the workspace
	Package wit.Ident
	Kind    SourceKind
}

// Workspace is a temporary directory holding every source as a dependency of
// one synthetic root package, so a single wasm-tools run resolves them all
// into one graph.
type Workspace struct {
	Dir     string
	Sources []Source
}

// Close removes the workspace directory.
func (w *Workspace) Close() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	return os.RemoveAll(w.Dir)
}

// Stage copies paths into a new workspace. Binary packages are sniffed
// through tools.
func Stage(ctx context.Context, tools *wasmtools.Tools, paths []string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "componentize-go-wit-*")
	if err != nil {
		return nil, errors.IO(errors.PhaseResolve, "create workspace", os.TempDir(), err)
	}
	ws := &Workspace{Dir: dir}
	if err := ws.stage(ctx, tools, paths); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}

func (w *Workspace) stage(ctx context.Context, tools *wasmtools.Tools, paths []string) error {
	root := filepath.Join(w.Dir, "workspace.wit")
	if err := os.WriteFile(root, []byte(workspaceSource), 0o644); err != nil {
		return errors.IO(errors.PhaseResolve, "write", root, err)
	}
	deps := filepath.Join(w.Dir, "deps")
	if err := os.MkdirAll(deps, 0o755); err != nil {
		return errors.IO(errors.PhaseResolve, "create", deps, err)
	}

	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.IO(errors.PhaseResolve, "resolve path", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return errors.New(errors.PhaseResolve, errors.KindResolution).
				Path(p).
				Detail("failed to read interface documents").
				Cause(err).
				Build()
		}

		base := fmt.Sprintf("%02d-%s", i, strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)))
		src := Source{Path: abs}

		switch ext := filepath.Ext(abs); {
		case info.IsDir():
			src.Kind = SourceDir
			src.Entry = filepath.Join(deps, base)
			if src.Package, err = sniffDir(abs); err != nil {
				return err
			}
			if err := copyWITDir(abs, src.Entry); err != nil {
				return err
			}
			if err := w.flattenDeps(filepath.Join(abs, "deps"), deps); err != nil {
				return err
			}
		case ext == ".wit":
			src.Kind = SourceWIT
			src.Entry = filepath.Join(deps, base+".wit")
			if src.Package, err = sniffFile(abs); err != nil {
				return err
			}
			if err := copyFile(abs, src.Entry); err != nil {
				return err
			}
		case ext == ".wasm" || ext == ".wat":
			src.Kind = SourceBinary
			src.Entry = filepath.Join(deps, base+ext)
			text, err := tools.WitText(ctx, abs)
			if err != nil {
				return err
			}
			id, ok := SniffPackage(text)
			if !ok {
				return errors.New(errors.PhaseResolve, errors.KindResolution).
					Path(p).
					Detail("binary package does not declare a package").
					Build()
			}
			src.Package = id
			if err := copyFile(abs, src.Entry); err != nil {
				return err
			}
		default:
			return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Path(p).
				Detail("unsupported interface document %q: expected a directory, .wit, .wasm or .wat", filepath.Base(abs)).
				Build()
		}

		Logger().Debug("staged interface source",
			zap.String("path", abs),
			zap.Stringer("kind", src.Kind),
			zap.String("package", src.Package.String()))
		w.Sources = append(w.Sources, src)
	}
	return nil
}

// flattenDeps moves the entries of a source's own deps/ directory up into the
// workspace deps/. The first source to provide an entry wins.
func (w *Workspace) flattenDeps(from, to string) error {
	entries, err := os.ReadDir(from)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.IO(errors.PhaseResolve, "read directory", from, err)
	}
	for _, e := range entries {
		src := filepath.Join(from, e.Name())
		dst := filepath.Join(to, e.Name())
		if _, err := os.Stat(dst); err == nil {
			Logger().Debug("dependency already staged", zap.String("name", e.Name()), zap.String("skipped", src))
			continue
		}
		switch {
		case e.IsDir():
			if err := copyWITDir(src, dst); err != nil {
				return err
			}
		case e.Type().IsRegular():
			if err := copyFile(src, dst); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyWITDir(from, to string) error {
	files, err := witFiles(from)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(to, 0o755); err != nil {
		return errors.IO(errors.PhaseResolve, "create", to, err)
	}
	for _, f := range files {
		if err := copyFile(f, filepath.Join(to, filepath.Base(f))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(from, to string) error {
	data, err := os.ReadFile(from)
	if err != nil {
		return errors.IO(errors.PhaseResolve, "read", from, err)
	}
	if err := os.WriteFile(to, data, 0o644); err != nil {
		return errors.IO(errors.PhaseResolve, "write", to, err)
	}
	return nil
}
