// Package moc decodes and encodes the "moc" binary model format.
//
// A moc file describes a 2D rigged puppet: global parameters, named parts,
// rotation and curved-surface deformers, and mesh components, each driven by
// per-parameter sample sets. This package turns that stream into a typed
// [Document] and can write a [Document] back.
//
// # File Format Overview
//
// A moc file consists of:
//   - A 4-byte magic ("moc" followed by 0x09)
//   - 4 reserved bytes
//   - A tagged array of parameters
//   - A tagged array of parts
//   - Canvas width and height (big-endian int32)
//   - 4 reserved trailing bytes
//
// Every value in the body is introduced by a one-byte tag that selects its
// shape. Multi-byte numbers are big-endian and lengths use a base-128
// encoding with the most significant group first. Decoded values are recorded
// in a positional table so later values can refer back to them (tag 0x21),
// which the format uses to share repeated names and sample blocks.
//
// # Basic Usage
//
// To read a moc file:
//
//	doc, err := moc.Load("model.moc")
//	if errors.Is(err, moc.ErrBadMagic) {
//		// not a moc file
//	}
//
// To write one:
//
//	f, _ := os.Create("model.moc")
//	defer f.Close()
//	err := moc.Encode(f, doc)
//
// # Packed Files
//
// Model files are sometimes shipped compressed. [Decode] recognises ZIP,
// Zstandard and LZ4 frames automatically; Brotli has no frame signature and
// must be requested with [WithInputCompression].
//
// # Security Considerations
//
// Decoding is bounded by [Limits]: input size, array and string lengths,
// nesting depth and reference table size are all checked before allocation.
// Truncated or corrupt input returns an error, never a panic.
package moc
