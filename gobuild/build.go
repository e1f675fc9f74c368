package gobuild

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/toolchain"
)

// DefaultGo is the executable looked up on PATH when no go path is given.
const DefaultGo = "go"

// DefaultOutput is the module file name used when no output path is given.
const DefaultOutput = "main.wasm"

const checkLinkname = "-ldflags=-checklinkname=0"

// targetEnv selects the wasip1/wasm target for every build.
var targetEnv = []string{"GOOS=wasip1", "GOARCH=wasm"}

// BuildOptions configures BuildModule.
type BuildOptions struct {
	ModuleDir string // defaults to the working directory
	Output    string // defaults to main.wasm in the working directory
	GoPath    string // defaults to go on PATH
	// OnlyWASIP1 requests a plain wasip1 module that will not be componentized.
	OnlyWASIP1 bool
}

// TestOptions configures BuildTestModule.
type TestOptions struct {
	Package   string
	OutputDir string // defaults to the working directory
	GoPath    string
	// OnlyWASIP1 must be set; component-model test binaries are not built yet.
	OnlyWASIP1 bool
}

// Builder runs the go toolchain.
type Builder struct {
	Runner toolchain.Runner
}

// NewBuilder returns a Builder that runs go through runner.
func NewBuilder(runner toolchain.Runner) *Builder {
	return &Builder{Runner: runner}
}

// BuildModule compiles a Go main package into a wasip1 core module and
// returns the absolute output path.
func (b *Builder) BuildModule(ctx context.Context, opts BuildOptions) (string, error) {
	goPath, err := goExecutable(opts.GoPath)
	if err != nil {
		return "", err
	}
	if _, err := GoVersion(ctx, b.Runner, goPath); err != nil {
		return "", err
	}

	out := opts.Output
	if out == "" {
		out = DefaultOutput
	}
	if out, err = absolute(out); err != nil {
		return "", err
	}
	if err := removeStale(out); err != nil {
		return "", err
	}

	moduleDir := "."
	if opts.ModuleDir != "" {
		info, err := os.Stat(opts.ModuleDir)
		if err != nil || !info.IsDir() {
			return "", errors.New(errors.PhaseBuild, errors.KindInvalidInput).
				Path(opts.ModuleDir).
				Detail("module path '%s' is not a directory", opts.ModuleDir).
				Build()
		}
		moduleDir = opts.ModuleDir
	}
	logModule(moduleDir)

	if opts.OnlyWASIP1 {
		return "", errors.Unsupported(errors.PhaseBuild,
			"building wasip1 modules without componentizing them is not yet supported")
	}

	cmd := toolchain.Command{
		Path: goPath,
		Args: []string{"build", "-C", moduleDir, "-buildmode=c-shared", checkLinkname, "-o", out},
		Env:  targetEnv,
	}
	if err := b.run(ctx, cmd, "go build"); err != nil {
		return "", err
	}
	if _, err := os.Stat(out); err != nil {
		return "", errors.New(errors.PhaseBuild, errors.KindIO).
			Path(out).
			Detail("'go build' succeeded but produced no output").
			Cause(err).
			Build()
	}

	Logger().Info("built wasm module", zap.String("output", out), zap.String("module", moduleDir))
	return out, nil
}

// BuildTestModule compiles the tests of pkg into a wasip1 test binary and
// returns its absolute path.
func (b *Builder) BuildTestModule(ctx context.Context, opts TestOptions) (string, error) {
	if opts.Package == "" {
		return "", errors.InvalidInput(errors.PhaseBuild, "no test package given")
	}
	goPath, err := goExecutable(opts.GoPath)
	if err != nil {
		return "", err
	}
	if _, err := GoVersion(ctx, b.Runner, goPath); err != nil {
		return "", err
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if dir, err = absolute(dir); err != nil {
		return "", err
	}
	out := filepath.Join(dir, TestFilename(opts.Package))
	if err := removeStale(out); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.IO(errors.PhaseBuild, "create output directory", dir, err)
	}

	if !opts.OnlyWASIP1 {
		return "", errors.Unsupported(errors.PhaseBuild, "please use the --wasip1 flag when building unit tests")
	}

	cmd := toolchain.Command{
		Path: goPath,
		Args: []string{"test", "-c", checkLinkname, "-o", out, opts.Package},
		Env:  targetEnv,
	}
	if err := b.run(ctx, cmd, "go test -c"); err != nil {
		return "", err
	}

	Logger().Info("built wasm test module", zap.String("output", out), zap.String("package", opts.Package))
	return out, nil
}

func (b *Builder) run(ctx context.Context, cmd toolchain.Command, name string) error {
	res, err := b.Runner.Run(ctx, cmd)
	if err != nil {
		return errors.New(errors.PhaseBuild, errors.KindProcess).
			Detail("failed to run '%s'", name).
			Cause(err).
			Build()
	}
	if !res.Success() {
		return errors.Process(errors.PhaseBuild, name, res.ExitCode, res.Stderr)
	}
	return nil
}

// TestFilename derives the test binary name from the last two normal
// segments of pkg: ./foo/bar/baz becomes test_bar_baz.wasm.
func TestFilename(pkg string) string {
	var segs []string
	for _, s := range strings.Split(filepath.ToSlash(pkg), "/") {
		if s == "" || s == "." || s == ".." {
			continue
		}
		segs = append(segs, s)
	}
	if len(segs) > 2 {
		segs = segs[len(segs)-2:]
	}
	return "test_" + strings.Join(segs, "_") + ".wasm"
}

func goExecutable(path string) (string, error) {
	if path == "" {
		return DefaultGo, nil
	}
	return absolute(path)
}

func absolute(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.IO(errors.PhaseBuild, "resolve path", path, err)
	}
	return abs, nil
}

// removeStale deletes a previous artifact so a failed build cannot leave
// an old one in place.
func removeStale(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.IO(errors.PhaseBuild, "remove previous output", path, err)
	}
	return nil
}

func logModule(dir string) {
	path := filepath.Join(dir, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil || f.Module == nil {
		Logger().Debug("go.mod not parsed", zap.String("path", path), zap.Error(err))
		return
	}
	fields := []zap.Field{zap.String("module", f.Module.Mod.Path)}
	if f.Go != nil {
		fields = append(fields, zap.String("go", f.Go.Version))
	}
	Logger().Debug("building go module", fields...)
}
