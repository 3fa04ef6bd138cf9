package packet

import "encoding/binary"

// Reader walks one inbound message. Byte 0 is the opcode; field reads start
// past it. Reads past the end return zero values rather than panicking,
// since a malformed packet must never take down the dispatch loop.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1} // skip opcode byte
}

// NewPayloadReader reads a bare payload with no opcode byte, such as a
// serialized character blob loaded from the database.
func NewPayloadReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off >= len(r.data) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if r.off+2 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadS reads a uint16-length-prefixed UTF-8 string.
func (r *Reader) ReadS() string {
	n := int(r.ReadH())
	if n == 0 {
		return ""
	}
	if r.off+n > len(r.data) {
		n = len(r.data) - r.off
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// ReadBytes reads n raw bytes, clamped to the remaining payload.
func (r *Reader) ReadBytes(n int) []byte {
	if r.off+n > len(r.data) {
		rest := r.data[r.off:]
		r.off = len(r.data)
		return rest
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
