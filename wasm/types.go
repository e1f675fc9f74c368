package wasm

// ValType is a WebAssembly value type encoding
type ValType byte

// Module is the subset of a core module that componentize-go reads and writes:
// the interface surface (types, imports, exports) plus custom sections.
// Sections that are not modelled are preserved by Sections but not decoded.
type Module struct {
	Types          []FuncType
	Imports        []Import
	Funcs          []uint32 // type indices of declared functions
	Memories       []Limits
	Exports        []Export
	Code           []FuncBody
	CustomSections []CustomSection

	// Sections lists every section in file order, as scanned.
	Sections []Section
}

// FuncType is a function signature
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Import is a single entry of the import section
type Import struct {
	Module  string
	Name    string
	Kind    byte
	TypeIdx uint32 // function imports only
	Memory  *Limits
}

// Export is a single entry of the export section
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Limits describes memory or table bounds
type Limits struct {
	Max *uint64
	Min uint64
}

// FuncBody is a function body; Body holds the instruction bytes including the final end opcode.
type FuncBody struct {
	Body []byte
}

// CustomSection is a named custom section
type CustomSection struct {
	Name string
	Data []byte
}

// Section locates one section inside a module binary.
type Section struct {
	// Raw holds the complete encoded section, id and size included.
	Raw []byte
	// Payload holds the section contents; for custom sections the name is excluded.
	Payload []byte
	Name    string // custom sections only
	Offset  int
	ID      byte
}

// IsCustom reports whether the section is a custom section
func (s Section) IsCustom() bool {
	return s.ID == SectionCustom
}

// FuncImports returns the function imports grouped by import module name
func (m *Module) FuncImports() map[string][]string {
	out := make(map[string][]string)
	for _, imp := range m.Imports {
		if imp.Kind == KindFunc {
			out[imp.Module] = append(out[imp.Module], imp.Name)
		}
	}
	return out
}

// ExportNames returns the names of all exports of the given kind
func (m *Module) ExportNames(kind byte) []string {
	var names []string
	for _, exp := range m.Exports {
		if exp.Kind == kind {
			names = append(names, exp.Name)
		}
	}
	return names
}
