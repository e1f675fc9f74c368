package embed

import (
	"bytes"
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/resolve"
	"github.com/bytecodealliance/componentize-go/wasm"
	"github.com/bytecodealliance/componentize-go/wasmtools"
)

// Embedder adds interface metadata to core modules.
type Embedder struct {
	Resolver *resolve.Resolver
	Tools    *wasmtools.Tools
}

// New returns an Embedder resolving interface documents through tools.
func New(tools *wasmtools.Tools) *Embedder {
	return &Embedder{Resolver: resolve.NewResolver(tools), Tools: tools}
}

// EmbedFile resolves opts, embeds the selected world into the module at
// path and writes the result back to path.
func (e *Embedder) EmbedFile(ctx context.Context, path string, opts resolve.Options) error {
	module, err := os.ReadFile(path)
	if err != nil {
		return errors.IO(errors.PhaseEmbed, "read module", path, err)
	}

	res, err := e.Resolver.Resolve(ctx, opts)
	if err != nil {
		return err
	}
	defer res.Close()

	out, err := e.Embed(ctx, module, res)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.IO(errors.PhaseEmbed, "failed to write module", path, err)
	}
	Logger().Info("embedded component metadata",
		zap.String("module", path),
		zap.String("world", res.WorldName()))
	return nil
}

// Embed returns module with the metadata of res's world appended. Text
// modules are converted to binary first.
func (e *Embedder) Embed(ctx context.Context, module []byte, res *resolve.Resolution) ([]byte, error) {
	module, err := e.binary(ctx, module)
	if err != nil {
		return nil, err
	}

	metadata, err := e.Metadata(ctx, res)
	if err != nil {
		return nil, err
	}

	out, err := wasm.StripCustomSections(module, func(name string) bool {
		return strings.HasPrefix(name, wasm.ComponentTypeSection)
	})
	if err != nil {
		return nil, errors.BinaryFormat(errors.PhaseEmbed, "invalid core module", err)
	}
	for _, s := range metadata {
		out = wasm.AppendCustomSection(out, s.Name, s.Payload)
	}
	return out, nil
}

// Metadata returns the component-type custom sections describing res's world.
func (e *Embedder) Metadata(ctx context.Context, res *resolve.Resolution) ([]wasm.Section, error) {
	dummy, err := e.Tools.EmbedMetadata(ctx, res.Workspace.Dir, res.WorldName(),
		res.Features.Names(), res.Features.All)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEmbed, errors.KindBinaryFormat, err, "failed to encode world metadata")
	}
	sections, err := wasm.CustomSections(dummy, wasm.ComponentTypeSection)
	if err != nil {
		return nil, errors.BinaryFormat(errors.PhaseEmbed, "invalid metadata module", err)
	}
	if len(sections) == 0 {
		return nil, errors.BinaryFormat(errors.PhaseEmbed, "metadata module carries no component-type section", nil)
	}
	return sections, nil
}

// binary converts WebAssembly text to binary and checks the section layout.
func (e *Embedder) binary(ctx context.Context, module []byte) ([]byte, error) {
	if !wasm.HasMagic(module) {
		text := bytes.TrimSpace(module)
		if len(text) == 0 {
			return nil, errors.BinaryFormat(errors.PhaseEmbed, "empty module", nil)
		}
		parsed, err := e.Tools.Parse(ctx, module)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseEmbed, errors.KindBinaryFormat, err, "failed to parse text module")
		}
		module = parsed
	}
	if _, err := wasm.ScanSections(module); err != nil {
		return nil, errors.BinaryFormat(errors.PhaseEmbed, "invalid core module", err)
	}
	return module, nil
}
