package moc

import (
	"archive/zip"
	"bytes"
	"errors"
	"io/fs"
	"testing"
)

func TestCompressStreamRoundTrip(t *testing.T) {
	in := minimalStream()
	for _, comp := range []Compression{CompNone, CompZIP, CompZSTD, CompLZ4, CompBR} {
		packed, err := compressStream(comp, in)
		if err != nil {
			t.Fatalf("%s: %v", comp, err)
		}
		out, err := decompressStream(comp, packed, 1<<20)
		if err != nil {
			t.Fatalf("%s: %v", comp, err)
		}
		if !bytes.Equal(in, out) {
			t.Fatalf("%s: round trip mismatch", comp)
		}
	}
}

func TestSniffCompression(t *testing.T) {
	in := minimalStream()
	cases := map[Compression]Compression{
		CompZIP:  CompZIP,
		CompZSTD: CompZSTD,
		CompLZ4:  CompLZ4,
		CompNone: CompNone,
		// Brotli has no signature.
		CompBR: CompNone,
	}
	for comp, want := range cases {
		packed, err := compressStream(comp, in)
		if err != nil {
			t.Fatal(err)
		}
		if got := sniffCompression(packed[:4]); got != want {
			t.Fatalf("%s: sniffed %s", comp, got)
		}
	}
}

func TestZIPDecompressErrors(t *testing.T) {
	// Multi-entry
	{
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, _ = zw.Create(packedEntryName)
		_, _ = zw.Create("extra")
		_ = zw.Close()
		_, err := zipDecompress(buf.Bytes(), 100)
		if !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("expected ErrInvalidPayload, got %v", err)
		}
	}
	// Any single name is accepted
	{
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("haru.moc")
		_, _ = w.Write([]byte("abc"))
		_ = zw.Close()
		out, err := zipDecompress(buf.Bytes(), 3)
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != "abc" {
			t.Fatalf("got %q", out)
		}
	}
	// Too large
	{
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create(packedEntryName)
		_, _ = w.Write([]byte("abcd"))
		_ = zw.Close()
		_, err := zipDecompress(buf.Bytes(), 3)
		if !errors.Is(err, ErrLimitExceeded) {
			t.Fatalf("expected ErrLimitExceeded, got %v", err)
		}
	}
	// Entry is a directory
	{
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		h := &zip.FileHeader{Name: "model/"}
		h.SetMode(fs.ModeDir | 0o755)
		_, _ = zw.CreateHeader(h)
		_ = zw.Close()
		_, err := zipDecompress(buf.Bytes(), 100)
		if !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("expected ErrInvalidPayload, got %v", err)
		}
	}
	// Not an archive
	if _, err := zipDecompress([]byte("notzip"), 100); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestDecompressionExpansionGuards(t *testing.T) {
	in := []byte("hello world")
	for _, comp := range []Compression{CompZIP, CompZSTD, CompLZ4, CompBR} {
		packed, err := compressStream(comp, in)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := decompressStream(comp, packed, 1); !errors.Is(err, ErrLimitExceeded) {
			t.Fatalf("%s: expected ErrLimitExceeded, got %v", comp, err)
		}
		if _, err := decompressStream(comp, packed, int64(len(in))); err != nil {
			t.Fatalf("%s: exact limit: %v", comp, err)
		}
	}
}

func TestDecompressionCorruptStreams(t *testing.T) {
	if _, err := zstdDecompress([]byte("notzstd"), 100); err == nil {
		t.Fatal("expected error")
	}
	if _, err := decompressStream(CompLZ4, []byte("notlz4"), 100); err == nil {
		t.Fatal("expected error")
	}
	if _, err := decompressStream(CompBR, []byte("notbr"), 100); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompressionNames(t *testing.T) {
	for _, c := range []Compression{CompNone, CompZIP, CompZSTD, CompLZ4, CompBR, CompAuto} {
		got, err := ParseCompression(c.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != c {
			t.Fatalf("got %v, want %v", got, c)
		}
	}
	if Compression(0x99).String() != "unknown" {
		t.Fatal("expected unknown")
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Fatal("expected error")
	}
}

func TestUnknownCompression(t *testing.T) {
	if _, err := compressStream(Compression(0x99), []byte("x")); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if _, err := compressStream(CompAuto, []byte("x")); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if _, err := decompressStream(Compression(0x99), []byte("x"), 10); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}
