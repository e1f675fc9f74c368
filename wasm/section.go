package wasm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	wbin "github.com/bytecodealliance/componentize-go/internal/binary"
)

// Parsing errors returned by ScanSections and ParseModule.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

var header = []byte{0x00, 0x61, 0x73, 0x6D}

// HasMagic reports whether data starts with the wasm magic number.
// Both core modules and components carry it.
func HasMagic(data []byte) bool {
	return bytes.HasPrefix(data, header)
}

// IsModule reports whether data carries a core module preamble.
func IsModule(data []byte) bool {
	return len(data) >= 8 && HasMagic(data) && binary.LittleEndian.Uint32(data[4:8]) == Version
}

// ScanSections walks the section list of a core module without decoding
// section contents. Non-custom sections must appear in canonical order and
// at most once; custom sections may appear anywhere.
func ScanSections(data []byte) ([]Section, error) {
	r := wbin.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: 0x%x", ErrInvalidVersion, version)
	}

	var sections []Section
	var lastSectionOrder int

	for {
		offset := r.Position()
		sectionID, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, r.WrapError("section header", err)
		}

		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, r.WrapError("section header", fmt.Errorf("unknown section ID: 0x%02x", sectionID))
			}
			if order <= lastSectionOrder {
				return nil, r.WrapError("section header", fmt.Errorf("section %d appears out of order", sectionID))
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		payload, err := r.ReadBytes(int(sectionSize))
		if err != nil {
			return nil, r.WrapError("section data", fmt.Errorf("section %d declares %d bytes: %w", sectionID, sectionSize, err))
		}

		s := Section{
			ID:      sectionID,
			Offset:  offset,
			Raw:     data[offset:r.Position()],
			Payload: payload,
		}
		if sectionID == SectionCustom {
			sr := wbin.NewReader(payload)
			name, err := sr.ReadName()
			if err != nil {
				return nil, r.WrapError("custom section name", err)
			}
			s.Name = name
			s.Payload = payload[sr.Position():]
		}
		sections = append(sections, s)
	}

	return sections, nil
}

// sectionOrder returns the canonical ordering for a section ID, or 0 for unknown IDs.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

// CustomSections returns the custom sections whose name starts with prefix.
func CustomSections(data []byte, prefix string) ([]Section, error) {
	sections, err := ScanSections(data)
	if err != nil {
		return nil, err
	}
	var out []Section
	for _, s := range sections {
		if s.IsCustom() && strings.HasPrefix(s.Name, prefix) {
			out = append(out, s)
		}
	}
	return out, nil
}

// StripCustomSections returns a copy of the module without the custom
// sections for which drop returns true. Every other byte is preserved.
func StripCustomSections(data []byte, drop func(name string) bool) ([]byte, error) {
	sections, err := ScanSections(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data))
	out = append(out, data[:8]...)
	for _, s := range sections {
		if s.IsCustom() && drop(s.Name) {
			continue
		}
		out = append(out, s.Raw...)
	}
	return out, nil
}

// AppendCustomSection appends a custom section to the end of a module binary.
func AppendCustomSection(module []byte, name string, payload []byte) []byte {
	w := wbin.NewWriter()
	w.WriteName(name)
	w.WriteBytes(payload)
	body := w.Bytes()

	out := make([]byte, 0, len(module)+len(body)+6)
	out = append(out, module...)
	out = append(out, SectionCustom)
	out = AppendLEB128u(out, uint32(len(body)))
	return append(out, body...)
}
