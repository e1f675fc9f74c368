package main

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	componentize "github.com/bytecodealliance/componentize-go"
	"github.com/bytecodealliance/componentize-go/config"
	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/resolve"
	"github.com/bytecodealliance/componentize-go/toolchain"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// goRunner and toolsRunner replace the host toolchain when set.
	goRunner    toolchain.Runner
	toolsRunner toolchain.Runner

	configFile string
	cfg        *config.Config
	out        *printer
	closers    []func(context.Context) error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "componentize-go",
		Short: "Build WebAssembly components from Go programs",
		Long: `componentize-go compiles a Go module to a wasip1 core module, embeds the
component-type metadata of a WIT world into it and encodes the result as a
WebAssembly component. It also generates Go bindings for the same world.

WIT inputs are taken from ./wit unless -d is given. Settings may also come
from componentize-go.toml or COMPONENTIZE_GO_* environment variables.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringArrayP("wit-path", "d", nil, `WIT directory, document or binary package (repeatable; default "wit")`)
	pf.StringP("world", "w", "", "world to target; required when the packages define several")
	pf.StringArray("features", nil, "WIT features to enable (repeatable, comma or space separated)")
	pf.Bool("all-features", false, "enable all WIT features")
	pf.StringVar(&a.configFile, "config", "", "config file (default ./"+config.FileName+"."+config.FileType+")")
	pf.BoolP("verbose", "v", false, "log every step at debug level")
	pf.String("wasm-tools", "", "wasm-tools executable, or a wasip1 build of it ending in .wasm")

	root.AddCommand(
		newComponentizeCmd(a),
		newBindingsCmd(a),
		newTestCmd(a),
		newInspectCmd(a),
	)
	return root
}

func (a *app) run(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	for _, c := range a.closers {
		if cerr := c(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		if a.out == nil {
			a.out = newPrinter(a.stdout)
		}
		a.out.fail(a.stderr, err)
		return 1
	}
	return 0
}

// setup loads the configuration and logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.out = newPrinter(a.stdout)

	pf := cmd.Flags()
	cfg, used, err := config.Load(config.LoadOptions{
		File: a.configFile,
		Flags: map[string]*pflag.Flag{
			config.KeyWitPath:     pf.Lookup("wit-path"),
			config.KeyWorld:       pf.Lookup("world"),
			config.KeyFeatures:    pf.Lookup("features"),
			config.KeyAllFeatures: pf.Lookup("all-features"),
			config.KeyVerbose:     pf.Lookup("verbose"),
			config.KeyWasmTools:   pf.Lookup("wasm-tools"),
			config.KeyGo:          pf.Lookup("go"),
			config.KeyAdapter:     pf.Lookup("adapter"),
		},
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	log := newLogger(a.stderr, cfg.Verbose)
	componentize.SetLogger(log)
	if used != "" {
		log.Debug("loaded config", zap.String("path", used))
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if verbose {
		enc := zap.NewDevelopmentEncoderConfig()
		return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zap.DebugLevel), zap.Development())
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zap.InfoLevel))
}

// pipeline builds the stages over the configured go and wasm-tools.
func (a *app) pipeline(ctx context.Context) (*componentize.Pipeline, error) {
	goRunner := a.goRunner
	if goRunner == nil {
		goRunner = toolchain.ExecRunner{}
	}

	toolsRunner := a.toolsRunner
	if toolsRunner == nil {
		toolsRunner = toolchain.ExecRunner{}
		if strings.HasSuffix(a.cfg.WasmTools, ".wasm") {
			w, err := toolchain.NewWazeroRunner(ctx, a.cfg.WasmTools)
			if err != nil {
				return nil, errors.New(errors.PhaseTool, errors.KindPrecondition).
					Path(a.cfg.WasmTools).
					Detail("failed to load wasm-tools module").
					Cause(err).
					Build()
			}
			a.closers = append(a.closers, w.Close)
			toolsRunner = w
		}
	}

	return componentize.New(goRunner, wasmtools.New(toolsRunner, a.cfg.WasmTools)), nil
}

func (a *app) resolveOptions() resolve.Options {
	return resolve.Options{
		World:    a.cfg.World,
		Paths:    a.cfg.WitPath,
		Features: resolve.ParseFeatures(a.cfg.Features, a.cfg.AllFeatures),
	}
}
