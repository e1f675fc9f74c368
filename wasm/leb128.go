package wasm

import (
	"io"

	wbin "github.com/bytecodealliance/componentize-go/internal/binary"
)

// ErrOverflow is returned when a LEB128 value does not fit in 32 bits.
var ErrOverflow = wbin.ErrOverflow

// ReadLEB128u decodes an unsigned 32-bit LEB128 value from r.
func ReadLEB128u(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrOverflow
}

// AppendLEB128u appends the unsigned LEB128 encoding of v to dst.
func AppendLEB128u(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}
