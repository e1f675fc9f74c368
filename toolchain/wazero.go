package toolchain

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"
)

// WazeroRunner runs a wasip1 command module (such as a wasm32-wasip1 build
// of wasm-tools) in-process. The host filesystem is mounted at "/", so
// arguments must be absolute paths. Command.Path is ignored.
type WazeroRunner struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	name     string
}

// NewWazeroRunner compiles the command module at path.
func NewWazeroRunner(ctx context.Context, path string) (*WazeroRunner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if dir, err := os.UserCacheDir(); err == nil {
		cache, err := wazero.NewCompilationCacheWithDir(filepath.Join(dir, "componentize-go", "wazero"))
		if err == nil {
			cfg = cfg.WithCompilationCache(cache)
		}
	}

	r := wazero.NewRuntimeWithConfig(ctx, cfg)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}

	compiled, err := r.CompileModule(ctx, data)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}

	Logger().Debug("compiled command module", zap.String("path", path))

	return &WazeroRunner{
		runtime:  r,
		compiled: compiled,
		name:     strings.TrimSuffix(filepath.Base(path), ".wasm"),
	}, nil
}

// Run instantiates a fresh copy of the command module with cmd's arguments.
func (w *WazeroRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	var stdout, stderr bytes.Buffer

	modCfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs(append([]string{w.name}, cmd.Args...)...).
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithFSConfig(wazero.NewFSConfig().WithDirMount("/", "/")).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	for _, kv := range append(os.Environ(), cmd.Env...) {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			modCfg = modCfg.WithEnv(k, v)
		}
	}

	Logger().Debug("running wasm command", zap.String("module", w.name), zap.Strings("args", cmd.Args))

	mod, err := w.runtime.InstantiateModule(ctx, w.compiled, modCfg)
	if mod != nil {
		_ = mod.Close(ctx)
	}

	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = int(exitErr.ExitCode())
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("run %s: %w", w.name, err)
	}
	return res, nil
}

// Close releases the runtime and compiled module.
func (w *WazeroRunner) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}
