package component

import (
	"encoding/binary"
	"errors"
	"fmt"

	wbin "github.com/bytecodealliance/componentize-go/internal/binary"
	"github.com/bytecodealliance/componentize-go/wasm"
)

// Component holds the top-level structure of a WebAssembly Component.
// Nested definitions other than core modules are kept as raw section payloads.
type Component struct {
	CoreModules    [][]byte
	Imports        []Import
	Exports        []Export
	CustomSections []CustomSection
	// Sections counts sections by id
	Sections map[byte]int
	Version  uint16
	Layer    uint16
}

type Import struct {
	Name       string
	ExternKind byte
	TypeIndex  uint32
}

type Export struct {
	Name      string
	Sort      byte
	SortIndex uint32
}

type CustomSection struct {
	Name string
	Data []byte
}

// Section ids of the component binary format
const (
	SectionCustom       byte = 0
	SectionCoreModule   byte = 1
	SectionCoreInstance byte = 2
	SectionCoreType     byte = 3
	SectionComponent    byte = 4
	SectionInstance     byte = 5
	SectionAlias        byte = 6
	SectionType         byte = 7
	SectionCanon        byte = 8
	SectionStart        byte = 9
	SectionImport       byte = 10
	SectionExport       byte = 11
)

// externDesc kinds
const (
	ExternCoreModule byte = 0x00
	ExternFunc       byte = 0x01
	ExternValue      byte = 0x02
	ExternType       byte = 0x03
	ExternComponent  byte = 0x04
	ExternInstance   byte = 0x05
)

// Sort kinds
const (
	SortCore      byte = 0x00
	SortFunc      byte = 0x01
	SortValue     byte = 0x02
	SortType      byte = 0x03
	SortComponent byte = 0x04
	SortInstance  byte = 0x05
)

const (
	// LayerComponent is the preamble layer value of components.
	LayerComponent uint16 = 0x01

	// maxNameLength bounds allocations to prevent OOM from malformed binaries
	maxNameLength = 100000
	maxSections   = 100000
)

var ErrNotComponent = errors.New("not a component")

// IsComponent reports whether data starts with a component preamble.
func IsComponent(data []byte) bool {
	return len(data) >= 8 && wasm.HasMagic(data) &&
		binary.LittleEndian.Uint16(data[6:8]) == LayerComponent
}

// Decode reads the top-level sections of a component binary. Core modules
// are kept whole, imports, exports and custom sections are decoded, and
// every other section is only counted. A component without a core module
// is rejected.
func Decode(data []byte) (*Component, error) {
	if !IsComponent(data) {
		return nil, ErrNotComponent
	}
	comp := &Component{
		Version:  binary.LittleEndian.Uint16(data[4:6]),
		Layer:    binary.LittleEndian.Uint16(data[6:8]),
		Sections: make(map[byte]int),
	}

	r := wbin.NewReader(data[8:])
	for n := 1; r.Len() > 0; n++ {
		if n > maxSections {
			return nil, fmt.Errorf("more than %d sections", maxSections)
		}
		id, _ := r.ReadByte()
		if id > SectionExport {
			return nil, r.WrapError("section header", fmt.Errorf("unknown section id 0x%02x", id))
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("section data", fmt.Errorf("section %d declares %d bytes: %w", n, size, err))
		}
		comp.Sections[id]++

		if err := comp.decodeSection(id, payload); err != nil {
			return nil, fmt.Errorf("section %d: %w", n, err)
		}
	}

	if len(comp.CoreModules) == 0 {
		return nil, errors.New("no core modules found in component")
	}
	return comp, nil
}

func (c *Component) decodeSection(id byte, payload []byte) error {
	switch id {
	case SectionCustom:
		r := wbin.NewReader(payload)
		name, err := readBoundedName(r)
		if err != nil {
			return fmt.Errorf("custom section name: %w", err)
		}
		data, _ := r.ReadBytes(r.Len())
		c.CustomSections = append(c.CustomSections, CustomSection{Name: name, Data: data})
	case SectionCoreModule:
		if !wasm.IsModule(payload) {
			return errors.New("core module has no module preamble")
		}
		c.CoreModules = append(c.CoreModules, payload)
	case SectionImport:
		imports, err := decodeImports(payload)
		if err != nil {
			return fmt.Errorf("imports: %w", err)
		}
		c.Imports = append(c.Imports, imports...)
	case SectionExport:
		exports, err := decodeExports(payload)
		if err != nil {
			return fmt.Errorf("exports: %w", err)
		}
		c.Exports = append(c.Exports, exports...)
	}
	return nil
}

func readBoundedName(r *wbin.Reader) (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	if n > maxNameLength {
		return "", fmt.Errorf("name length %d exceeds maximum %d", n, maxNameLength)
	}
	b, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readExternName reads an import or export name. The leading byte is 0x00
// for a plain name and 0x01 for one carrying a version suffix.
func readExternName(r *wbin.Reader) (string, error) {
	if _, err := r.ReadByte(); err != nil {
		return "", fmt.Errorf("name kind: %w", err)
	}
	return readBoundedName(r)
}

func readCount(r *wbin.Reader, what string) (uint32, error) {
	n, err := r.ReadU32()
	if err != nil {
		return 0, fmt.Errorf("%s count: %w", what, err)
	}
	if n > maxSections {
		return 0, fmt.Errorf("%s count %d exceeds maximum", what, n)
	}
	return n, nil
}

func decodeImports(data []byte) ([]Import, error) {
	r := wbin.NewReader(data)
	n, err := readCount(r, "import")
	if err != nil {
		return nil, err
	}
	imports := make([]Import, 0, n)
	for i := range n {
		name, err := readExternName(r)
		if err != nil {
			return nil, fmt.Errorf("import %d: %w", i, err)
		}
		kind, idx, err := readExternDesc(r)
		if err != nil {
			return nil, fmt.Errorf("import %q: %w", name, err)
		}
		imports = append(imports, Import{Name: name, ExternKind: kind, TypeIndex: idx})
	}
	return imports, nil
}

func decodeExports(data []byte) ([]Export, error) {
	r := wbin.NewReader(data)
	n, err := readCount(r, "export")
	if err != nil {
		return nil, err
	}
	exports := make([]Export, 0, n)
	for i := range n {
		name, err := readExternName(r)
		if err != nil {
			return nil, fmt.Errorf("export %d: %w", i, err)
		}
		sort, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("export %q sort: %w", name, err)
		}
		if sort == SortCore {
			// core sort byte
			if _, err := r.ReadByte(); err != nil {
				return nil, fmt.Errorf("export %q core sort: %w", name, err)
			}
		}
		idx, err := r.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("export %q index: %w", name, err)
		}
		ascribed, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("export %q type flag: %w", name, err)
		}
		if ascribed == 0x01 {
			if _, _, err := readExternDesc(r); err != nil {
				return nil, fmt.Errorf("export %q: %w", name, err)
			}
		}
		exports = append(exports, Export{Name: name, Sort: sort, SortIndex: idx})
	}
	return exports, nil
}

// readExternDesc returns the extern kind and its type index. A resource
// type bound (sub resource) has no index and reports 0.
func readExternDesc(r *wbin.Reader) (byte, uint32, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return 0, 0, fmt.Errorf("extern kind: %w", err)
	}
	switch kind {
	case ExternCoreModule:
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		if b != 0x11 {
			return 0, 0, fmt.Errorf("core module type prefix 0x%02x, want 0x11", b)
		}
	case ExternType:
		bound, err := r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		switch bound {
		case 0x00:
		case 0x01:
			return kind, 0, nil
		default:
			return 0, 0, fmt.Errorf("unknown type bound 0x%02x", bound)
		}
	case ExternValue:
		bound, err := r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		if bound > 0x01 {
			return 0, 0, fmt.Errorf("unknown value bound 0x%02x", bound)
		}
	case ExternFunc, ExternComponent, ExternInstance:
	default:
		return 0, 0, fmt.Errorf("unknown extern kind 0x%02x", kind)
	}
	idx, err := r.ReadU32()
	if err != nil {
		return 0, 0, fmt.Errorf("type index: %w", err)
	}
	return kind, idx, nil
}
