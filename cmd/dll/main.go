// Package main provides C-compatible exports for the moc library.
// Build with: go build -buildmode=c-shared -o moc.dll
package main

/*
#include <stdlib.h>
#include <stdint.h>

// Result structure for operations that return data
typedef struct {
    char* data;
    int   data_len;
    char* error;
} MocResult;
*/
import "C"

import (
	"bytes"
	"encoding/json"
	"unsafe"

	"github.com/logicossoftware/go-moc"
	"github.com/logicossoftware/go-moc/internal/report"
	"github.com/logicossoftware/go-moc/internal/synth"
)

func main() {}

// MocMagic returns the magic number that moc files start with (little-endian).
//
//export MocMagic
func MocMagic() C.uint32_t {
	return C.uint32_t(moc.Magic)
}

// MocFreeResult frees memory allocated by other Moc functions.
// Must be called to avoid memory leaks.
//
//export MocFreeResult
func MocFreeResult(result C.MocResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// MocFreeString frees a C string allocated by Go.
//
//export MocFreeString
func MocFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// makeResult creates a result with data.
func makeResult(data []byte) C.MocResult {
	var result C.MocResult
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

// makeError creates a result with an error message.
func makeError(err error) C.MocResult {
	var result C.MocResult
	result.error = C.CString(err.Error())
	return result
}

// decode reads a moc file passed from C. compression follows the Compression
// values; 0xFFFF detects the packing.
func decode(data *C.char, dataLen C.int, compression C.uint16_t, strict bool) (*moc.Document, []byte, error) {
	goData := C.GoBytes(unsafe.Pointer(data), dataLen)
	doc, err := moc.DecodeBytes(goData,
		moc.WithInputCompression(moc.Compression(compression)),
		moc.WithStrictValidation(strict),
	)
	return doc, goData, err
}

// MocDecode decodes a moc file and returns a JSON representation of the model.
// Parameters:
//   - data: pointer to moc file bytes
//   - dataLen: length of the data
//   - compression: input packing (0=None, 1=ZIP, 2=ZSTD, 3=LZ4, 4=Brotli, 0xFFFF=detect)
//
// Returns MocResult with JSON string or error. Call MocFreeResult when done.
// The JSON structure contains: width, height, parameters, parts (with deformers
// tagged by kind, and components).
//
//export MocDecode
func MocDecode(data *C.char, dataLen C.int, compression C.uint16_t) C.MocResult {
	doc, _, err := decode(data, dataLen, compression, false)
	if err != nil {
		return makeError(err)
	}
	jsonBytes, err := json.Marshal(report.Export(doc))
	if err != nil {
		return makeError(err)
	}
	return makeResult(jsonBytes)
}

// MocSummary decodes a moc file and returns its statistics as JSON, including
// the BLAKE3 fingerprint of the input.
// Call MocFreeResult when done.
//
//export MocSummary
func MocSummary(data *C.char, dataLen C.int, compression C.uint16_t) C.MocResult {
	doc, raw, err := decode(data, dataLen, compression, false)
	if err != nil {
		return makeError(err)
	}
	jsonBytes, err := json.Marshal(report.Build(doc, raw))
	if err != nil {
		return makeError(err)
	}
	return makeResult(jsonBytes)
}

// MocValidate decodes a moc file with strict validation.
// Returns NULL on success, or an error message string on failure.
// Call MocFreeString on the result if non-NULL.
//
//export MocValidate
func MocValidate(data *C.char, dataLen C.int, compression C.uint16_t) *C.char {
	if _, _, err := decode(data, dataLen, compression, true); err != nil {
		return C.CString(err.Error())
	}
	return nil
}

// MocRepack decodes a moc file and encodes it again with the given output
// compression (0=None, 1=ZIP, 2=ZSTD, 3=LZ4, 4=Brotli).
//
// Returns MocResult with the new file or error. Call MocFreeResult when done.
//
//export MocRepack
func MocRepack(data *C.char, dataLen C.int, inCompression, outCompression C.uint16_t) C.MocResult {
	doc, _, err := decode(data, dataLen, inCompression, false)
	if err != nil {
		return makeError(err)
	}
	var buf bytes.Buffer
	if err := moc.Encode(&buf, doc, moc.WithCompression(moc.Compression(outCompression))); err != nil {
		return makeError(err)
	}
	return makeResult(buf.Bytes())
}

// MocEncodeSample builds a synthetic model, mostly useful for binding tests.
// Parameters:
//   - parts: number of parts
//   - grid: mesh vertices per side
//   - compression: output compression (0=None, 1=ZIP, 2=ZSTD, 3=LZ4, 4=Brotli)
//
// Returns MocResult with encoded data or error. Call MocFreeResult when done.
//
//export MocEncodeSample
func MocEncodeSample(parts, grid C.int, compression C.uint16_t) C.MocResult {
	doc := synth.Model(synth.Options{Parts: int(parts), Grid: int(grid)})
	var buf bytes.Buffer
	if err := moc.Encode(&buf, doc, moc.WithCompression(moc.Compression(compression))); err != nil {
		return makeError(err)
	}
	return makeResult(buf.Bytes())
}

// MocGetParameterCount returns the number of parameters in a moc file.
// Returns -1 on error.
//
//export MocGetParameterCount
func MocGetParameterCount(data *C.char, dataLen C.int) C.int {
	doc, _, err := decode(data, dataLen, C.uint16_t(moc.CompAuto), false)
	if err != nil {
		return -1
	}
	return C.int(len(doc.Parameters))
}

// MocGetPartCount returns the number of parts in a moc file.
// Returns -1 on error.
//
//export MocGetPartCount
func MocGetPartCount(data *C.char, dataLen C.int) C.int {
	doc, _, err := decode(data, dataLen, C.uint16_t(moc.CompAuto), false)
	if err != nil {
		return -1
	}
	return C.int(len(doc.Parts))
}
