package moc

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode_TruncatedAtEveryOffset(t *testing.T) {
	b := mustEncode(t, sampleDoc())
	body := len(b) - reservedTrailerLen
	for cut := 0; cut < body; cut++ {
		_, err := DecodeBytes(b[:cut])
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Fatalf("cut %d/%d: expected ErrUnexpectedEOF, got %v", cut, len(b), err)
		}
		_, err = Decode(bytes.NewReader(b[:cut]))
		if !errors.Is(err, ErrUnexpectedEOF) {
			t.Fatalf("cut %d/%d (reader): expected ErrUnexpectedEOF, got %v", cut, len(b), err)
		}
	}
}

func TestDecode_ShortTrailerTolerated(t *testing.T) {
	b := mustEncode(t, sampleDoc())
	for cut := len(b) - reservedTrailerLen; cut <= len(b); cut++ {
		doc, err := DecodeBytes(b[:cut])
		if err != nil {
			t.Fatalf("cut %d/%d: %v", cut, len(b), err)
		}
		if doc.Width != 1024 || doc.Height != 2048 {
			t.Fatalf("cut %d: canvas %dx%d", cut, doc.Width, doc.Height)
		}
	}
}

func TestDecode_TrailingBytesIgnored(t *testing.T) {
	b := append(minimalStream(), 0xde, 0xad, 0xbe, 0xef)
	doc, err := DecodeBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Width != 100 || doc.Height != 200 {
		t.Fatalf("canvas %dx%d", doc.Width, doc.Height)
	}
}

func TestDecode_ReservedBytesIgnored(t *testing.T) {
	b := minimalStream()
	copy(b[4:8], []byte{1, 2, 3, 4})
	copy(b[len(b)-4:], []byte{5, 6, 7, 8})
	if _, err := DecodeBytes(b); err != nil {
		t.Fatal(err)
	}
}

func TestDecode_UnknownTagsInsideDocument(t *testing.T) {
	// An unassigned tag where the parameter name belongs narrows to "".
	b := minimalStream()[:8]
	b = append(b, tagArray, 0x01, tagParameter)
	b = appendFloat32(b, 0)
	b = appendFloat32(b, 1)
	b = appendFloat32(b, 0)
	b = append(b, 0x7e)
	b = append(b, tagArray, 0x00)
	b = appendInt32(b, 1)
	b = appendInt32(b, 1)
	b = append(b, 0, 0, 0, 0)

	doc, err := DecodeBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Parameters) != 1 || doc.Parameters[0].Name != "" {
		t.Fatalf("got %+v", doc.Parameters)
	}
}

func TestDecode_AbsentTopLevelArrays(t *testing.T) {
	b := minimalStream()[:8]
	b = append(b, tagAbsent, tagAbsent)
	b = appendInt32(b, 1)
	b = appendInt32(b, 2)
	b = append(b, 0, 0, 0, 0)
	doc, err := DecodeBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Parameters != nil || doc.Parts != nil {
		t.Fatalf("got %+v", doc)
	}
}

func TestDecode_TopLevelSchemaMismatch(t *testing.T) {
	b := minimalStream()[:8]
	b = append(b, strValue("parameters")...)
	b = append(b, tagArray, 0x00)
	b = appendInt32(b, 1)
	b = appendInt32(b, 1)
	_, err := DecodeBytes(b)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestDecode_BackrefAcrossTopLevelArrays(t *testing.T) {
	// The part's name refers to the parameter name decoded earlier.
	b := minimalStream()[:8]
	b = append(b, tagArray, 0x01, tagParameter)
	b = appendFloat32(b, 0)
	b = appendFloat32(b, 1)
	b = appendFloat32(b, 0)
	b = append(b, strValue("SHARED")...) // index 1
	// parameter at 2, parameters array at 3
	b = append(b, tagArray, 0x01, tagPart, StatusVisible)
	b = append(b, backrefTo(1)...)
	b = append(b, tagArray, 0x00, tagArray, 0x00)
	b = appendInt32(b, 1)
	b = appendInt32(b, 1)
	b = append(b, 0, 0, 0, 0)

	doc, err := DecodeBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Parts[0].Name != "SHARED" || !doc.Parts[0].IsVisible() {
		t.Fatalf("got %+v", doc.Parts[0])
	}
}

func TestDecode_Limits(t *testing.T) {
	b := mustEncode(t, sampleDoc())

	cases := map[string]Limits{
		"input":  {MaxInputSize: int64(len(b) - 1)},
		"array":  {MaxArrayLen: 1},
		"string": {MaxStringLen: 4},
		"depth":  {MaxDepth: 3},
		"table":  {MaxTableEntries: 5},
	}
	for name, l := range cases {
		_, err := DecodeBytes(b, WithReadLimits(l))
		if !errors.Is(err, ErrLimitExceeded) {
			t.Fatalf("%s: expected ErrLimitExceeded, got %v", name, err)
		}
		_, err = Decode(bytes.NewReader(b), WithReadLimits(l))
		if !errors.Is(err, ErrLimitExceeded) {
			t.Fatalf("%s (reader): expected ErrLimitExceeded, got %v", name, err)
		}
	}

	if _, err := DecodeBytes(b, WithReadLimits(Limits{MaxInputSize: int64(len(b))})); err != nil {
		t.Fatalf("exact input size: %v", err)
	}
}

func TestDecode_UnpackedSizeLimit(t *testing.T) {
	raw := mustEncode(t, sampleDoc())
	packed := mustEncode(t, sampleDoc(), WithCompression(CompZSTD))
	if len(packed) >= len(raw) {
		t.Skip("stream did not shrink")
	}
	l := Limits{MaxInputSize: int64(len(packed))}
	if _, err := DecodeBytes(packed, WithReadLimits(l)); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}

func TestDecode_StrictValidation(t *testing.T) {
	doc := sampleDoc()
	doc.Parts[0].Components[0].Indices = []int32{0, 1, 7}
	b := mustEncode(t, doc)

	if _, err := DecodeBytes(b); err != nil {
		t.Fatalf("lenient decode: %v", err)
	}
	if _, err := DecodeBytes(b, WithStrictValidation(true)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := DecodeBytes(mustEncode(t, sampleDoc()), WithStrictValidation(true)); err != nil {
		t.Fatalf("strict decode of valid document: %v", err)
	}
}

func TestDecode_ShortInput(t *testing.T) {
	for _, in := range [][]byte{nil, {0x6d}, {0x6d, 0x6f, 0x63}} {
		if _, err := DecodeBytes(in); !errors.Is(err, ErrUnexpectedEOF) {
			t.Fatalf("% x: expected ErrUnexpectedEOF, got %v", in, err)
		}
		if _, err := Decode(bytes.NewReader(in)); !errors.Is(err, ErrUnexpectedEOF) {
			t.Fatalf("% x (reader): expected ErrUnexpectedEOF, got %v", in, err)
		}
	}
}
