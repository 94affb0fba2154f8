package moc

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"testing"
)

func newTestReader(b []byte) *reader {
	return &reader{data: b, limits: defaultLimits()}
}

func TestVarLen_RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 1 << 21, 1<<28 - 1, 1 << 28, math.MaxInt32}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		values = append(values, uint32(rng.Int31()))
	}
	for _, v := range values {
		b := appendVarLen(nil, v)
		if len(b) > maxVarLenBytes {
			t.Fatalf("%d encoded to %d bytes", v, len(b))
		}
		r := newTestReader(b)
		got, err := r.readVarLen()
		if err != nil {
			t.Fatalf("%d: %v", v, err)
		}
		if uint32(got) != v {
			t.Fatalf("got %d, want %d", got, v)
		}
		if r.remaining() != 0 {
			t.Fatalf("%d: %d bytes left over", v, r.remaining())
		}
	}
}

func TestVarLen_KnownEncodings(t *testing.T) {
	cases := []struct {
		in   []byte
		want int
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x81, 0x00}, 128},
		{[]byte{0x81, 0x80, 0x00}, 16384},
		{[]byte{0x87, 0xff, 0xff, 0xff, 0x7f}, math.MaxInt32},
	}
	for _, tc := range cases {
		got, err := newTestReader(tc.in).readVarLen()
		if err != nil {
			t.Fatalf("% x: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("% x: got %d, want %d", tc.in, got, tc.want)
		}
		if enc := appendVarLen(nil, uint32(tc.want)); !bytes.Equal(enc, tc.in) {
			t.Fatalf("%d encoded to % x, want % x", tc.want, enc, tc.in)
		}
	}
}

func TestVarLen_Malformed(t *testing.T) {
	// Six bytes with continuation bits.
	_, err := newTestReader([]byte{0x81, 0x80, 0x80, 0x80, 0x80, 0x00}).readVarLen()
	if !errors.Is(err, ErrMalformedLength) {
		t.Fatalf("expected ErrMalformedLength, got %v", err)
	}
	// 2^32-1 fits five bytes but not an int32.
	_, err = newTestReader([]byte{0x8f, 0xff, 0xff, 0xff, 0x7f}).readVarLen()
	if !errors.Is(err, ErrMalformedLength) {
		t.Fatalf("expected ErrMalformedLength, got %v", err)
	}
	_, err = newTestReader([]byte{0x81, 0x80}).readVarLen()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReader_BigEndianScalars(t *testing.T) {
	r := newTestReader([]byte{
		0x00, 0x00, 0x00, 0x64,
		0xff, 0xff, 0xff, 0xfe,
		0x3f, 0x80, 0x00, 0x00,
		0xc0, 0x00, 0x00, 0x00,
	})
	if v, err := r.readInt32(); err != nil || v != 100 {
		t.Fatalf("got %d, %v", v, err)
	}
	if v, err := r.readInt32(); err != nil || v != -2 {
		t.Fatalf("got %d, %v", v, err)
	}
	if v, err := r.readFloat32(); err != nil || v != 1 {
		t.Fatalf("got %g, %v", v, err)
	}
	if v, err := r.readFloat32(); err != nil || v != -2 {
		t.Fatalf("got %g, %v", v, err)
	}
	if _, err := r.readInt32(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReader_FloatBitsPreserved(t *testing.T) {
	nan := math.Float32frombits(0x7fc00001)
	b := appendFloat32(nil, nan)
	b = appendFloat32(b, float32(math.Inf(-1)))
	r := newTestReader(b)
	got, _ := r.readFloat32()
	if math.Float32bits(got) != 0x7fc00001 {
		t.Fatalf("NaN payload lost: %08x", math.Float32bits(got))
	}
	got, _ = r.readFloat32()
	if !math.IsInf(float64(got), -1) {
		t.Fatalf("got %g", got)
	}
}

func TestReader_StringBytesVerbatim(t *testing.T) {
	b := appendString(nil, "a\xff\x00b")
	s, err := newTestReader(b).readString()
	if err != nil {
		t.Fatal(err)
	}
	if s != "a\xff\x00b" {
		t.Fatalf("got %q", s)
	}

	s, err = newTestReader([]byte{0x00}).readString()
	if err != nil || s != "" {
		t.Fatalf("got %q, %v", s, err)
	}

	_, err = newTestReader([]byte{0x05, 'a', 'b'}).readString()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReader_Arrays(t *testing.T) {
	ints := []int32{0, -1, math.MaxInt32, math.MinInt32}
	got, err := newTestReader(appendInt32Array(nil, ints)).readInt32Array()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(ints) {
		t.Fatalf("got %v", got)
	}
	for i := range ints {
		if got[i] != ints[i] {
			t.Fatalf("got %v, want %v", got, ints)
		}
	}

	floats := []float32{0.5, -1.25, 1e10}
	gotF, err := newTestReader(appendFloat32Array(nil, floats)).readFloat32Array()
	if err != nil {
		t.Fatal(err)
	}
	for i := range floats {
		if gotF[i] != floats[i] {
			t.Fatalf("got %v, want %v", gotF, floats)
		}
	}

	empty, err := newTestReader([]byte{0x00}).readFloat32Array()
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	// Count promises two elements but only one follows.
	_, err = newTestReader([]byte{0x02, 0, 0, 0, 1}).readInt32Array()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReader_CountLimits(t *testing.T) {
	r := newTestReader(appendString(nil, "abcdef"))
	r.limits.MaxStringLen = 3
	if _, err := r.readString(); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}

	r = newTestReader(appendInt32Array(nil, []int32{1, 2, 3}))
	r.limits.MaxArrayLen = 2
	if _, err := r.readInt32Array(); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}

	// A huge declared count must fail before any allocation.
	r = newTestReader(appendVarLen(nil, math.MaxInt32))
	r.limits.MaxArrayLen = math.MaxInt32
	if _, err := r.readFloat32Array(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReader_Skip(t *testing.T) {
	r := newTestReader([]byte{1, 2, 3})
	if err := r.skip(2); err != nil {
		t.Fatal(err)
	}
	if b, _ := r.readByte(); b != 3 {
		t.Fatalf("got %d", b)
	}
	if err := r.skip(1); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if err := r.need(-1); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}
