package moc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// maxVarLenBytes bounds a base-128 length. Five 7-bit groups cover 32 bits.
const maxVarLenBytes = 5

// reader is a bounds-checked cursor over an in-memory moc stream.
type reader struct {
	data   []byte
	off    int
	limits Limits
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) need(n int64) error {
	if n < 0 || int64(r.remaining()) < n {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrUnexpectedEOF, n, r.off, r.remaining())
	}
	return nil
}

func (r *reader) readByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *reader) skip(n int) error {
	if err := r.need(int64(n)); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *reader) readUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) readInt32() (int32, error) {
	v, err := r.readUint32()
	return int32(v), err
}

func (r *reader) readFloat32() (float32, error) {
	v, err := r.readUint32()
	return math.Float32frombits(v), err
}

// readVarLen decodes a base-128 length, most significant group first.
// A set high bit means another byte follows.
func (r *reader) readVarLen() (int, error) {
	start := r.off
	var result uint64
	for i := 0; i < maxVarLenBytes; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		result = result<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			if result > math.MaxInt32 {
				return 0, fmt.Errorf("%w: value %d at offset %d", ErrMalformedLength, result, start)
			}
			return int(result), nil
		}
	}
	return 0, fmt.Errorf("%w: more than %d bytes at offset %d", ErrMalformedLength, maxVarLenBytes, start)
}

// readCount reads a length and checks it against max and against the bytes
// left in the stream, assuming each element occupies at least elemSize bytes.
func (r *reader) readCount(elemSize int, max int, what string) (int, error) {
	start := r.off
	n, err := r.readVarLen()
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, fmt.Errorf("%w: %s length %d at offset %d", ErrLimitExceeded, what, n, start)
	}
	if err := r.need(int64(n) * int64(elemSize)); err != nil {
		return 0, err
	}
	return n, nil
}

// readString reads a length-prefixed string. Bytes are kept verbatim.
func (r *reader) readString() (string, error) {
	n, err := r.readCount(1, r.limits.MaxStringLen, "string")
	if err != nil {
		return "", err
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s, nil
}

func (r *reader) readInt32Array() ([]int32, error) {
	n, err := r.readCount(4, r.limits.MaxArrayLen, "int32 array")
	if err != nil {
		return nil, err
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.BigEndian.Uint32(r.data[r.off:]))
		r.off += 4
	}
	return out, nil
}

func (r *reader) readFloat32Array() ([]float32, error) {
	n, err := r.readCount(4, r.limits.MaxArrayLen, "float32 array")
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(r.data[r.off:]))
		r.off += 4
	}
	return out, nil
}

func appendInt32(b []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(b, uint32(v))
}

func appendFloat32(b []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(v))
}

// appendVarLen encodes n as base-128, most significant group first.
func appendVarLen(b []byte, n uint32) []byte {
	var tmp [maxVarLenBytes]byte
	i := len(tmp) - 1
	tmp[i] = byte(n & 0x7f)
	for n >>= 7; n > 0; n >>= 7 {
		i--
		tmp[i] = byte(n&0x7f) | 0x80
	}
	return append(b, tmp[i:]...)
}

func appendString(b []byte, s string) []byte {
	b = appendVarLen(b, uint32(len(s)))
	return append(b, s...)
}

func appendInt32Array(b []byte, v []int32) []byte {
	b = appendVarLen(b, uint32(len(v)))
	for _, x := range v {
		b = appendInt32(b, x)
	}
	return b
}

func appendFloat32Array(b []byte, v []float32) []byte {
	b = appendVarLen(b, uint32(len(v)))
	for _, x := range v {
		b = appendFloat32(b, x)
	}
	return b
}
