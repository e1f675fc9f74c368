package binary

import "encoding/binary"

// Writer accumulates an encoded binary.
type Writer struct {
	b []byte
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.b }

func (w *Writer) Len() int { return len(w.b) }

func (w *Writer) Byte(b byte) { w.b = append(w.b, b) }

func (w *Writer) WriteBytes(p []byte) { w.b = append(w.b, p...) }

// WriteU32 appends v as unsigned LEB128.
func (w *Writer) WriteU32(v uint32) {
	for v >= 0x80 {
		w.b = append(w.b, byte(v)|0x80)
		v >>= 7
	}
	w.b = append(w.b, byte(v))
}

// WriteName appends a length-prefixed string.
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.b = append(w.b, s...)
}

func (w *Writer) WriteU32LE(v uint32) {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
}

// Section appends a section: id, payload size, payload.
func (w *Writer) Section(id byte, payload []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(payload)))
	w.WriteBytes(payload)
}
