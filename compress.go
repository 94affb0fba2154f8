package moc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a moc stream is packed on disk.
type Compression uint16

const (
	CompNone Compression = 0x0
	CompZIP  Compression = 0x1
	CompZSTD Compression = 0x2
	CompLZ4  Compression = 0x3
	CompBR   Compression = 0x4

	// CompAuto detects ZIP, Zstandard and LZ4 from the leading bytes.
	// It is only meaningful for reading and is the read default.
	CompAuto Compression = 0xFFFF
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZIP:
		return "zip"
	case CompZSTD:
		return "zstd"
	case CompLZ4:
		return "lz4"
	case CompBR:
		return "brotli"
	case CompAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseCompression maps a name produced by Compression.String back to its value.
func ParseCompression(name string) (Compression, error) {
	for _, c := range []Compression{CompNone, CompZIP, CompZSTD, CompLZ4, CompBR, CompAuto} {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("moc: unknown compression %q", name)
}

// packedEntryName is the archive member written for CompZIP.
const packedEntryName = "model.moc"

var (
	sigZIP  = []byte{'P', 'K', 0x03, 0x04}
	sigZSTD = []byte{0x28, 0xb5, 0x2f, 0xfd}
	sigLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// sniffCompression reports the packing announced by the first bytes of a file.
func sniffCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, sigZIP):
		return CompZIP
	case bytes.HasPrefix(head, sigZSTD):
		return CompZSTD
	case bytes.HasPrefix(head, sigLZ4):
		return CompLZ4
	default:
		return CompNone
	}
}

// Function variables for testing injection.
var (
	newZstdWriter = func() (*zstd.Encoder, error) { return zstd.NewWriter(nil) }
	newZstdReader = func(r io.Reader) (*zstd.Decoder, error) { return zstd.NewReader(r) }
	zipCreate     = func(zw *zip.Writer, name string) (io.Writer, error) { return zw.Create(name) }
	zipClose      = func(zw *zip.Writer) error { return zw.Close() }
	zipOpen       = func(zf *zip.File) (io.ReadCloser, error) { return zf.Open() }
	readAll       = io.ReadAll
	lz4Close      = func(w *lz4.Writer) error { return w.Close() }
	brotliClose   = func(w *brotli.Writer) error { return w.Close() }
	brotliWrite   = func(w *brotli.Writer, p []byte) (int, error) { return w.Write(p) }
)

// compressStream packs a complete moc stream.
func compressStream(comp Compression, raw []byte) ([]byte, error) {
	switch comp {
	case CompNone:
		return raw, nil
	case CompZIP:
		var buf bytes.Buffer
		if err := zipCompressNamed(&buf, packedEntryName, raw); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompZSTD:
		return zstdCompress(raw)
	case CompLZ4:
		var buf bytes.Buffer
		if err := lz4CompressTo(&buf, raw); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompBR:
		var buf bytes.Buffer
		if err := brotliCompressTo(&buf, raw); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: cannot write compression %s", ErrInvalidPayload, comp)
	}
}

// decompressStream unpacks a moc stream, refusing output larger than max.
func decompressStream(comp Compression, packed []byte, max int64) ([]byte, error) {
	switch comp {
	case CompNone:
		return packed, nil
	case CompZIP:
		return zipDecompress(packed, max)
	case CompZSTD:
		return zstdDecompress(packed, max)
	case CompLZ4:
		return readLimited(lz4.NewReader(bytes.NewReader(packed)), max, "lz4")
	case CompBR:
		return readLimited(brotli.NewReader(bytes.NewReader(packed)), max, "brotli")
	default:
		return nil, fmt.Errorf("%w: cannot read compression %s", ErrInvalidPayload, comp)
	}
}

// readLimited reads r to the end, failing once more than max bytes appear.
func readLimited(r io.Reader, max int64, what string) ([]byte, error) {
	b, err := readAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, what, err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%w: %s expands beyond %d bytes", ErrLimitExceeded, what, max)
	}
	return b, nil
}

// zipCompressNamed creates a ZIP archive with a single entry.
func zipCompressNamed(w io.Writer, name string, in []byte) error {
	zw := zip.NewWriter(w)
	entry, err := zipCreate(zw, name)
	if err != nil {
		_ = zipClose(zw)
		return err
	}
	if _, err := entry.Write(in); err != nil {
		_ = zipClose(zw)
		return err
	}
	return zipClose(zw)
}

// zipDecompress extracts the only regular file of a ZIP archive.
func zipDecompress(zipBytes []byte, max int64) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("%w: zip: %v", ErrInvalidPayload, err)
	}
	if len(zr.File) != 1 {
		return nil, fmt.Errorf("%w: zip must contain exactly one entry, found %d", ErrInvalidPayload, len(zr.File))
	}
	zf := zr.File[0]
	if zf.FileInfo().IsDir() {
		return nil, fmt.Errorf("%w: zip entry %q is a directory", ErrInvalidPayload, zf.Name)
	}
	if zf.UncompressedSize64 > uint64(max) {
		return nil, fmt.Errorf("%w: zip entry %q is %d bytes", ErrLimitExceeded, zf.Name, zf.UncompressedSize64)
	}
	rc, err := zipOpen(zf)
	if err != nil {
		return nil, fmt.Errorf("%w: zip: %v", ErrInvalidPayload, err)
	}
	defer rc.Close()
	return readLimited(rc, max, "zip")
}

// zstdCompress compresses in using the Zstandard algorithm.
func zstdCompress(in []byte) ([]byte, error) {
	enc, err := newZstdWriter()
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, nil), nil
}

func zstdDecompress(in []byte, max int64) ([]byte, error) {
	dec, err := newZstdReader(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrInvalidPayload, err)
	}
	defer dec.Close()
	return readLimited(dec, max, "zstd")
}

// lz4CompressTo writes LZ4-compressed data to w.
func lz4CompressTo(w io.Writer, in []byte) error {
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(in); err != nil {
		_ = lz4Close(zw)
		return err
	}
	return lz4Close(zw)
}

// brotliCompressTo writes Brotli-compressed data to w.
func brotliCompressTo(w io.Writer, in []byte) error {
	bw := brotli.NewWriter(w)
	if _, err := brotliWrite(bw, in); err != nil {
		_ = brotliClose(bw)
		return err
	}
	return brotliClose(bw)
}
