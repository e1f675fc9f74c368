// Package binary reads and writes the primitive encodings of the
// WebAssembly binary format.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrOverflow is returned when a LEB128 value exceeds its bit width.
var ErrOverflow = errors.New("leb128: overflow")

// Reader is a cursor over a byte slice.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position is the offset of the next unread byte.
func (r *Reader) Position() int { return r.off }

// Len is the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.off }

func (r *Reader) ReadByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	out := append([]byte(nil), r.data[r.off:r.off+n]...)
	r.off += n
	return out, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.uleb(32)
	return uint32(v), err
}

func (r *Reader) ReadU64() (uint64, error) {
	return r.uleb(64)
}

// uleb decodes an unsigned LEB128 value of at most bits bits.
func (r *Reader) uleb(bits uint) (uint64, error) {
	var v uint64
	for i := uint(0); i < (bits+6)/7; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, r.wrap(ErrOverflow)
}

// ReadS64 decodes a signed LEB128 value.
func (r *Reader) ReadS64() (int64, error) {
	var v int64
	var shift uint
	for {
		if shift >= 70 {
			return 0, r.wrap(ErrOverflow)
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 != 0 {
			continue
		}
		if shift < 64 && b&0x40 != 0 {
			v |= -1 << shift
		}
		return v, nil
	}
}

// ReadName reads a length-prefixed UTF-8 string.
func (r *Reader) ReadName() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	if int(n) > r.Len() {
		return "", io.ErrUnexpectedEOF
	}
	s := r.data[r.off : r.off+int(n)]
	if !utf8.Valid(s) {
		return "", r.wrap(errors.New("invalid UTF-8 in name"))
	}
	r.off += int(n)
	return string(s), nil
}

// ReadU32LE reads a fixed-width little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	if r.Len() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) wrap(err error) error {
	return fmt.Errorf("at position %d: %w", r.off, err)
}

// ParseError locates a decoding failure within a binary.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("at position %d", e.Position)
	if e.Section != "" {
		where = e.Section + " " + where
	}
	return "wasm: " + where + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// WrapError attaches the current position and section to err.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{Err: err, Section: section, Position: r.off}
}
