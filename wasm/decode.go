package wasm

import (
	"fmt"

	wbin "github.com/bytecodealliance/componentize-go/internal/binary"
)

// ParseModule decodes the interface surface of a core module: types,
// imports, functions, memories, exports, code bodies and custom sections.
// Other sections are checked for framing only.
func ParseModule(data []byte) (*Module, error) {
	sections, err := ScanSections(data)
	if err != nil {
		return nil, err
	}
	m := &Module{Sections: sections}

	for _, s := range sections {
		if s.ID == SectionCustom {
			m.CustomSections = append(m.CustomSections, CustomSection{Name: s.Name, Data: s.Payload})
			continue
		}
		parse, ok := sectionParsers[s.ID]
		if !ok {
			continue
		}
		if err := parse(wbin.NewReader(s.Payload), m); err != nil {
			return nil, fmt.Errorf("%s section: %w", sectionName(s.ID), err)
		}
	}
	return m, nil
}

var sectionParsers = map[byte]func(*wbin.Reader, *Module) error{
	SectionType: func(r *wbin.Reader, m *Module) error {
		return vec(r, func() error {
			form, err := r.ReadByte()
			if err != nil {
				return err
			}
			if form != FuncTypeByte {
				return r.WrapError("type", fmt.Errorf("unsupported type form 0x%02x", form))
			}
			var ft FuncType
			if ft.Params, err = readValTypes(r); err != nil {
				return err
			}
			if ft.Results, err = readValTypes(r); err != nil {
				return err
			}
			m.Types = append(m.Types, ft)
			return nil
		})
	},
	SectionImport: func(r *wbin.Reader, m *Module) error {
		return vec(r, func() error {
			imp, err := readImport(r)
			if err != nil {
				return err
			}
			m.Imports = append(m.Imports, imp)
			return nil
		})
	},
	SectionFunction: func(r *wbin.Reader, m *Module) error {
		return vec(r, func() error {
			idx, err := r.ReadU32()
			m.Funcs = append(m.Funcs, idx)
			return err
		})
	},
	SectionMemory: func(r *wbin.Reader, m *Module) error {
		return vec(r, func() error {
			l, err := readLimits(r)
			m.Memories = append(m.Memories, l)
			return err
		})
	},
	SectionExport: func(r *wbin.Reader, m *Module) error {
		return vec(r, func() error {
			var e Export
			var err error
			if e.Name, err = r.ReadName(); err != nil {
				return err
			}
			if e.Kind, err = r.ReadByte(); err != nil {
				return err
			}
			if e.Kind > KindTag {
				return fmt.Errorf("export %q has invalid kind 0x%02x", e.Name, e.Kind)
			}
			if e.Idx, err = r.ReadU32(); err != nil {
				return err
			}
			m.Exports = append(m.Exports, e)
			return nil
		})
	},
	SectionCode: func(r *wbin.Reader, m *Module) error {
		err := vec(r, func() error {
			size, err := r.ReadU32()
			if err != nil {
				return err
			}
			body, err := r.ReadBytes(int(size))
			m.Code = append(m.Code, FuncBody{Body: body})
			return err
		})
		if err == nil && len(m.Code) != len(m.Funcs) {
			err = fmt.Errorf("%d bodies for %d functions", len(m.Code), len(m.Funcs))
		}
		return err
	},
}

func sectionName(id byte) string {
	switch id {
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionMemory:
		return "memory"
	case SectionExport:
		return "export"
	case SectionCode:
		return "code"
	}
	return fmt.Sprintf("section %d", id)
}

// vec reads a count followed by that many entries.
func vec(r *wbin.Reader, entry func() error) error {
	n, err := r.ReadU32()
	if err != nil {
		return err
	}
	if int(n) > r.Len() {
		return r.WrapError("vector", fmt.Errorf("%d entries in %d bytes", n, r.Len()))
	}
	for range n {
		if err := entry(); err != nil {
			return err
		}
	}
	return nil
}

func readImport(r *wbin.Reader) (Import, error) {
	var imp Import
	var err error
	if imp.Module, err = r.ReadName(); err != nil {
		return imp, err
	}
	if imp.Name, err = r.ReadName(); err != nil {
		return imp, err
	}
	if imp.Kind, err = r.ReadByte(); err != nil {
		return imp, err
	}

	switch imp.Kind {
	case KindFunc:
		imp.TypeIdx, err = r.ReadU32()
	case KindTable:
		if _, err = readValType(r); err == nil {
			_, err = readLimits(r)
		}
	case KindMemory:
		var l Limits
		if l, err = readLimits(r); err == nil {
			imp.Memory = &l
		}
	case KindGlobal:
		if _, err = readValType(r); err == nil {
			_, err = r.ReadByte() // mutability
		}
	case KindTag:
		if _, err = r.ReadByte(); err == nil {
			_, err = r.ReadU32()
		}
	default:
		err = fmt.Errorf("import %s.%s has unknown kind %d", imp.Module, imp.Name, imp.Kind)
	}
	return imp, err
}

func readValTypes(r *wbin.Reader) ([]ValType, error) {
	var types []ValType
	err := vec(r, func() error {
		t, err := readValType(r)
		types = append(types, t)
		return err
	})
	return types, err
}

// readValType reads a value type, consuming the heap type of reference
// types.
func readValType(r *wbin.Reader) (ValType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b == byte(ValRefNull) || b == byte(ValRef) {
		if _, err := r.ReadS64(); err != nil {
			return 0, err
		}
	}
	return ValType(b), nil
}

func readLimits(r *wbin.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	read := func() (uint64, error) {
		if flags&LimitsMemory64 != 0 {
			return r.ReadU64()
		}
		v, err := r.ReadU32()
		return uint64(v), err
	}

	var l Limits
	if l.Min, err = read(); err != nil {
		return Limits{}, err
	}
	if flags&LimitsHasMax != 0 {
		hi, err := read()
		if err != nil {
			return Limits{}, err
		}
		if l.Min > hi {
			return Limits{}, fmt.Errorf("limits min (%d) exceeds max (%d)", l.Min, hi)
		}
		l.Max = &hi
	}
	return l, nil
}
