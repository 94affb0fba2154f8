package moc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{limits: defaultLimits(), compression: CompAuto}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// Decode reads a moc document from r.
//
// The decoding process:
//  1. Reads the 4-byte prefix and checks the magic (or a packed-file signature)
//  2. Reads the rest of the input and unpacks it if needed
//  3. Decodes the parameters array and the parts array
//  4. Reads the canvas width and height
//  5. Optionally validates the complete document
//
// By default, Decode will:
//   - Use safe default size limits (see [Limits])
//   - Detect ZIP, Zstandard and LZ4 packing
//   - Accept documents that break the format's implied invariants
//
// Use ReadOption functions to customize this behavior:
//   - WithReadLimits(l): set custom size limits
//   - WithInputCompression(c): fix the packing instead of detecting it
//   - WithStrictValidation(true): reject documents that fail [Validate]
//   - WithLogger(l): receive debug diagnostics
//
// Decode returns ErrBadMagic without reading past the prefix if the input is
// not a moc file, ErrUnexpectedEOF if the stream ends early,
// ErrMalformedLength, ErrInvalidReference or ErrSchemaMismatch for corrupt
// streams, and ErrLimitExceeded if any limit is exceeded.
func Decode(r io.Reader, opts ...ReadOption) (*Document, error) {
	cfg := newReadConfig(opts)

	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: missing magic", ErrUnexpectedEOF)
		}
		return nil, err
	}
	comp, err := detectCompression(cfg.compression, head)
	if err != nil {
		return nil, err
	}
	data, err := readInput(io.MultiReader(bytes.NewReader(head), r), cfg.limits.MaxInputSize)
	if err != nil {
		return nil, err
	}
	return decodePacked(data, comp, cfg)
}

// DecodeBytes decodes a moc document held in memory.
func DecodeBytes(b []byte, opts ...ReadOption) (*Document, error) {
	cfg := newReadConfig(opts)
	if int64(len(b)) > cfg.limits.MaxInputSize {
		return nil, fmt.Errorf("%w: input is %d bytes", ErrLimitExceeded, len(b))
	}
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: missing magic", ErrUnexpectedEOF)
	}
	comp, err := detectCompression(cfg.compression, b[:4])
	if err != nil {
		return nil, err
	}
	return decodePacked(b, comp, cfg)
}

// Load decodes the moc file at path.
func Load(path string, opts ...ReadOption) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func isMagic(head []byte) bool {
	return len(head) >= 4 && binary.LittleEndian.Uint32(head) == Magic
}

func detectCompression(want Compression, head []byte) (Compression, error) {
	switch want {
	case CompAuto:
		if isMagic(head) {
			return CompNone, nil
		}
		if c := sniffCompression(head); c != CompNone {
			return c, nil
		}
		return 0, fmt.Errorf("%w: % x", ErrBadMagic, head)
	case CompNone:
		if !isMagic(head) {
			return 0, fmt.Errorf("%w: % x", ErrBadMagic, head)
		}
		return CompNone, nil
	default:
		return want, nil
	}
}

func readInput(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrLimitExceeded, max)
	}
	return data, nil
}

func decodePacked(data []byte, comp Compression, cfg readConfig) (*Document, error) {
	if comp != CompNone {
		cfg.logger.Debug("moc: unpacking input",
			slog.String("compression", comp.String()),
			slog.Int("packed_bytes", len(data)))
		raw, err := decompressStream(comp, data, cfg.limits.MaxInputSize)
		if err != nil {
			return nil, err
		}
		if !isMagic(raw) {
			return nil, fmt.Errorf("%w: %s stream does not hold a moc file", ErrBadMagic, comp)
		}
		data = raw
	}
	return decodeDocument(data, cfg)
}

func decodeDocument(data []byte, cfg readConfig) (*Document, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: missing magic", ErrUnexpectedEOF)
	}
	if !isMagic(data) {
		return nil, fmt.Errorf("%w: % x", ErrBadMagic, data[:4])
	}

	d := newDecoder(data, cfg.limits, cfg.logger)
	if err := d.r.skip(4 + reservedHeaderLen); err != nil {
		return nil, err
	}

	doc := &Document{}
	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	if doc.Parameters, err = asRecords[*Parameter](v, "Document.parameters", "Parameter"); err != nil {
		return nil, err
	}
	if v, err = d.readValue(); err != nil {
		return nil, err
	}
	if doc.Parts, err = asRecords[*Part](v, "Document.parts", "Part"); err != nil {
		return nil, err
	}
	if doc.Width, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	if doc.Height, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	// The trailer is reserved; a short one is tolerated.
	_ = d.r.skip(min(reservedTrailerLen, d.r.remaining()))

	cfg.logger.Debug("moc: decoded document",
		slog.Int("parameters", len(doc.Parameters)),
		slog.Int("parts", len(doc.Parts)),
		slog.Int("table_entries", d.table.len()),
		slog.Int("unread_bytes", d.r.remaining()))

	if cfg.strict {
		if err := Validate(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
