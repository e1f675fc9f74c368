package encode

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/bytecodealliance/componentize-go/adapter"
	"github.com/bytecodealliance/componentize-go/component"
	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/wasm"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// Encoder builds a component from a core module and adapters. The first
// error recorded by a builder method is returned by Encode.
type Encoder struct {
	tools    *wasmtools.Tools
	err      error
	module   []byte
	adapters []wasmtools.Adapter
	validate bool
}

// NewEncoder returns an Encoder with validation enabled.
func NewEncoder(tools *wasmtools.Tools) *Encoder {
	return &Encoder{tools: tools, validate: true}
}

// Validate toggles validation of the produced component.
func (e *Encoder) Validate(v bool) *Encoder {
	e.validate = v
	return e
}

// Module sets the core module. Text modules are converted at encode time.
func (e *Encoder) Module(module []byte) *Encoder {
	if e.err != nil {
		return e
	}
	if len(module) == 0 {
		e.err = errors.BinaryFormat(errors.PhaseEncode, "empty module", nil)
		return e
	}
	e.module = module
	return e
}

// Adapter grafts an adapter module onto imports from name.
func (e *Encoder) Adapter(name string, module []byte) *Encoder {
	if e.err != nil {
		return e
	}
	if name == "" {
		e.err = errors.InvalidInput(errors.PhaseEncode, "adapter name is empty")
		return e
	}
	for _, a := range e.adapters {
		if a.Name == name {
			e.err = errors.InvalidInput(errors.PhaseEncode, "adapter "+name+" given twice")
			return e
		}
	}
	if !wasm.IsModule(module) {
		e.err = errors.BinaryFormat(errors.PhaseEncode, "adapter "+name+" is not a core module", nil)
		return e
	}
	e.adapters = append(e.adapters, wasmtools.Adapter{Name: name, Module: module})
	return e
}

// Encode produces the component bytes.
func (e *Encoder) Encode(ctx context.Context) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.module == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "no module to encode")
	}

	module := e.module
	if !wasm.HasMagic(module) {
		parsed, err := e.tools.Parse(ctx, module)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseEncode, errors.KindBinaryFormat, err, "failed to parse text module")
		}
		module = parsed
	}

	out, err := e.tools.NewComponent(ctx, module, e.adapters, e.validate)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindBinaryFormat, err, "failed to encode component from module")
	}

	comp, err := component.Decode(out)
	if err != nil {
		return nil, errors.BinaryFormat(errors.PhaseEncode, "encoder produced an invalid component", err)
	}

	names := make([]string, len(e.adapters))
	for i, a := range e.adapters {
		names[i] = a.Name
	}
	Logger().Debug("encoded component",
		zap.Int("core_modules", len(comp.CoreModules)),
		zap.Int("imports", len(comp.Imports)),
		zap.Int("exports", len(comp.Exports)),
		zap.String("adapters", strings.Join(names, ",")))
	return out, nil
}

// EncodeFile replaces the module at path with a component built using the
// bundled wasi_snapshot_preview1 adapter. On failure the file is unchanged.
func EncodeFile(ctx context.Context, tools *wasmtools.Tools, path string) error {
	preview1, err := adapter.Preview1()
	if err != nil {
		return err
	}
	Logger().Debug("using bundled adapter", zap.String("adapter", adapter.Name), zap.String("version", adapter.Version()))
	return EncodeFileWith(ctx, tools, path, wasmtools.Adapter{Name: adapter.Name, Module: preview1})
}

// EncodeFileWith is EncodeFile with explicit adapters.
func EncodeFileWith(ctx context.Context, tools *wasmtools.Tools, path string, adapters ...wasmtools.Adapter) error {
	module, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(errors.PhaseEncode, "read module", path, err)
	}

	enc := NewEncoder(tools).Validate(true).Module(module)
	for _, a := range adapters {
		enc = enc.Adapter(a.Name, a.Module)
	}
	out, err := enc.Encode(ctx)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.IO(errors.PhaseEncode, "failed to write `"+path+"`", path, err)
	}
	Logger().Info("wrote component", zap.String("path", path), zap.Int("bytes", len(out)))
	return nil
}
