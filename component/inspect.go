package component

import (
	"fmt"
	"sort"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/wasm"
)

// Summary is a flat description of a wasm binary, either a core module or a component.
type Summary struct {
	Kind           string // "module" or "component"
	Imports        []string
	Exports        []string
	CustomSections []string
	CoreModules    int
}

// Inspect summarizes a core module or component binary.
func Inspect(data []byte) (*Summary, error) {
	switch {
	case IsComponent(data):
		comp, err := Decode(data)
		if err != nil {
			return nil, err
		}
		s := &Summary{Kind: "component", CoreModules: len(comp.CoreModules)}
		for _, imp := range comp.Imports {
			s.Imports = append(s.Imports, fmt.Sprintf("%s (%s)", imp.Name, externName(imp.ExternKind)))
		}
		for _, exp := range comp.Exports {
			s.Exports = append(s.Exports, fmt.Sprintf("%s (%s)", exp.Name, sortName(exp.Sort)))
		}
		for _, cs := range comp.CustomSections {
			s.CustomSections = append(s.CustomSections, cs.Name)
		}
		return s, nil

	case wasm.IsModule(data):
		m, err := wasm.ParseModule(data)
		if err != nil {
			return nil, err
		}
		s := &Summary{Kind: "module"}
		funcImports := m.FuncImports()
		modules := make([]string, 0, len(funcImports))
		for mod := range funcImports {
			modules = append(modules, mod)
		}
		sort.Strings(modules)
		for _, mod := range modules {
			for _, name := range funcImports[mod] {
				s.Imports = append(s.Imports, mod+"#"+name)
			}
		}
		for _, kind := range []byte{wasm.KindFunc, wasm.KindTable, wasm.KindMemory, wasm.KindGlobal} {
			for _, name := range m.ExportNames(kind) {
				s.Exports = append(s.Exports, fmt.Sprintf("%s (%s)", name, coreKindName(kind)))
			}
		}
		for _, cs := range m.CustomSections {
			s.CustomSections = append(s.CustomSections, cs.Name)
		}
		return s, nil
	}

	return nil, errors.BinaryFormat(errors.PhaseInspect, "not a wasm module or component", nil)
}

func externName(kind byte) string {
	switch kind {
	case ExternCoreModule:
		return "core module"
	case ExternFunc:
		return "func"
	case ExternValue:
		return "value"
	case ExternType:
		return "type"
	case ExternComponent:
		return "component"
	case ExternInstance:
		return "instance"
	}
	return fmt.Sprintf("0x%02x", kind)
}

func coreKindName(kind byte) string {
	switch kind {
	case wasm.KindFunc:
		return "func"
	case wasm.KindTable:
		return "table"
	case wasm.KindMemory:
		return "memory"
	case wasm.KindGlobal:
		return "global"
	}
	return fmt.Sprintf("0x%02x", kind)
}

func sortName(s byte) string {
	if s == SortCore {
		return "core"
	}
	return externName(s)
}
