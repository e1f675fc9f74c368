// Package wasmtest encodes core modules built from wasm.Module values, for
// tests that need small, well-formed binaries.
package wasmtest

import (
	wbin "github.com/bytecodealliance/componentize-go/internal/binary"
	"github.com/bytecodealliance/componentize-go/wasm"
)

// Encode encodes m to WebAssembly binary format. Custom sections are
// written after all known sections.
func Encode(m *wasm.Module) []byte {
	w := wbin.NewWriter()

	w.WriteU32LE(wasm.Magic)
	w.WriteU32LE(wasm.Version)

	if len(m.Types) > 0 {
		sec := wbin.NewWriter()
		sec.WriteU32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.Byte(wasm.FuncTypeByte)
			writeValTypes(sec, ft.Params)
			writeValTypes(sec, ft.Results)
		}
		w.Section(wasm.SectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		sec := wbin.NewWriter()
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(imp.Kind)
			switch imp.Kind {
			case wasm.KindFunc:
				sec.WriteU32(imp.TypeIdx)
			case wasm.KindMemory:
				var l wasm.Limits
				if imp.Memory != nil {
					l = *imp.Memory
				}
				writeLimits(sec, l)
			}
		}
		w.Section(wasm.SectionImport, sec.Bytes())
	}

	if len(m.Funcs) > 0 {
		sec := wbin.NewWriter()
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, typeIdx := range m.Funcs {
			sec.WriteU32(typeIdx)
		}
		w.Section(wasm.SectionFunction, sec.Bytes())
	}

	if len(m.Memories) > 0 {
		sec := wbin.NewWriter()
		sec.WriteU32(uint32(len(m.Memories)))
		for _, l := range m.Memories {
			writeLimits(sec, l)
		}
		w.Section(wasm.SectionMemory, sec.Bytes())
	}

	if len(m.Exports) > 0 {
		sec := wbin.NewWriter()
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}
		w.Section(wasm.SectionExport, sec.Bytes())
	}

	if len(m.Code) > 0 {
		sec := wbin.NewWriter()
		sec.WriteU32(uint32(len(m.Code)))
		for _, fb := range m.Code {
			sec.WriteU32(uint32(len(fb.Body)))
			sec.WriteBytes(fb.Body)
		}
		w.Section(wasm.SectionCode, sec.Bytes())
	}

	for _, cs := range m.CustomSections {
		sec := wbin.NewWriter()
		sec.WriteName(cs.Name)
		sec.WriteBytes(cs.Data)
		w.Section(wasm.SectionCustom, sec.Bytes())
	}

	return w.Bytes()
}

func writeValTypes(w *wbin.Writer, types []wasm.ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func writeLimits(w *wbin.Writer, l wasm.Limits) {
	var flags byte
	if l.Max != nil {
		flags |= wasm.LimitsHasMax
	}
	w.Byte(flags)
	w.WriteU32(uint32(l.Min))
	if l.Max != nil {
		w.WriteU32(uint32(*l.Max))
	}
}
