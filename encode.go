package moc

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encode writes doc to w in the moc stream format.
//
// By default, Encode will:
//   - Write repeated strings once and refer back to them
//   - Write a *ParameterSamples shared by several owners once and refer back to it
//   - Write an unpacked stream
//
// Use WriteOption functions to customize this behavior:
//   - WithStringSharing(false), WithSampleSharing(false): write every value in full
//   - WithCompression(c): pack the stream
//   - WithValidateOnWrite(true): run [Validate] first
//
// A nil *ParameterSamples is written as an absent value and decodes back to
// nil. Nil parameters, parts, deformers, components or samples are rejected
// with ErrValidation.
func Encode(w io.Writer, doc *Document, opts ...WriteOption) error {
	cfg := writeConfig{
		compression:  CompNone,
		shareStrings: true,
		shareSamples: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if cfg.validateFirst {
		if err := Validate(doc); err != nil {
			return err
		}
	}

	e := newEncoder(cfg)
	if err := e.writeDocument(doc); err != nil {
		return err
	}
	out, err := compressStream(cfg.compression, e.buf)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// encoder mirrors the decoder's reference table: next is the index the
// decoder will give to the next recorded value.
type encoder struct {
	cfg     writeConfig
	buf     []byte
	next    int32
	strings map[string]int32
	samples map[*ParameterSamples]int32
}

func newEncoder(cfg writeConfig) *encoder {
	return &encoder{
		cfg:     cfg,
		next:    1,
		strings: make(map[string]int32),
		samples: make(map[*ParameterSamples]int32),
	}
}

func (e *encoder) record() int32 {
	idx := e.next
	e.next++
	return idx
}

func (e *encoder) backref(idx int32) {
	e.buf = append(e.buf, tagBackref)
	e.buf = appendInt32(e.buf, idx)
}

func checkLen(n int, what string) (uint32, error) {
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s length %d", ErrLimitExceeded, what, n)
	}
	return uint32(n), nil
}

func (e *encoder) writeDocument(doc *Document) error {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, Magic)
	e.buf = append(e.buf, make([]byte, reservedHeaderLen)...)

	err := e.writeArray(len(doc.Parameters), "parameters", func(i int) error {
		p := doc.Parameters[i]
		if p == nil {
			return fmt.Errorf("%w: parameter %d is nil", ErrValidation, i)
		}
		return e.writeParameter(p)
	})
	if err != nil {
		return err
	}
	err = e.writeArray(len(doc.Parts), "parts", func(i int) error {
		p := doc.Parts[i]
		if p == nil {
			return fmt.Errorf("%w: part %d is nil", ErrValidation, i)
		}
		return e.writePart(p)
	})
	if err != nil {
		return err
	}

	e.buf = appendInt32(e.buf, doc.Width)
	e.buf = appendInt32(e.buf, doc.Height)
	e.buf = append(e.buf, make([]byte, reservedTrailerLen)...)
	return nil
}

// writeArray writes a generic array. Elements are recorded before the array.
func (e *encoder) writeArray(n int, what string, elem func(i int) error) error {
	ln, err := checkLen(n, what)
	if err != nil {
		return err
	}
	e.buf = append(e.buf, tagArray)
	e.buf = appendVarLen(e.buf, ln)
	for i := 0; i < n; i++ {
		if err := elem(i); err != nil {
			return err
		}
	}
	e.record()
	return nil
}

func (e *encoder) writeString(s string) error {
	if idx, ok := e.strings[s]; ok && e.cfg.shareStrings {
		e.backref(idx)
		return nil
	}
	if _, err := checkLen(len(s), "string"); err != nil {
		return err
	}
	e.buf = append(e.buf, tagString)
	e.buf = appendString(e.buf, s)
	idx := e.record()
	if _, seen := e.strings[s]; !seen {
		e.strings[s] = idx
	}
	return nil
}

func (e *encoder) writeFloat32s(v []float32) error {
	if _, err := checkLen(len(v), "float32 array"); err != nil {
		return err
	}
	e.buf = append(e.buf, tagFloat32Array)
	e.buf = appendFloat32Array(e.buf, v)
	e.record()
	return nil
}

func (e *encoder) writeInt32s(v []int32) error {
	if _, err := checkLen(len(v), "int32 array"); err != nil {
		return err
	}
	e.buf = append(e.buf, tagInt32Array)
	e.buf = appendInt32Array(e.buf, v)
	e.record()
	return nil
}

func (e *encoder) writeRows(rows [][]float32, what string) error {
	return e.writeArray(len(rows), what, func(i int) error {
		return e.writeFloat32s(rows[i])
	})
}

func (e *encoder) writeParameter(p *Parameter) error {
	e.buf = append(e.buf, tagParameter)
	e.buf = appendFloat32(e.buf, p.MinValue)
	e.buf = appendFloat32(e.buf, p.MaxValue)
	e.buf = appendFloat32(e.buf, p.Default)
	if err := e.writeString(p.Name); err != nil {
		return err
	}
	e.record()
	return nil
}

func (e *encoder) writeSamples(s *ParameterSamples) error {
	if s == nil {
		e.buf = append(e.buf, tagAbsent)
		e.record()
		return nil
	}
	if idx, ok := e.samples[s]; ok && e.cfg.shareSamples {
		e.backref(idx)
		return nil
	}

	e.buf = append(e.buf, tagParameterSamples)
	err := e.writeArray(len(s.Data), "samples", func(i int) error {
		ps := s.Data[i]
		if ps == nil {
			return fmt.Errorf("%w: parameter sample %d is nil", ErrValidation, i)
		}
		e.buf = append(e.buf, tagParameterSample)
		if err := e.writeString(ps.Name); err != nil {
			return err
		}
		e.buf = appendInt32(e.buf, ps.Count)
		if err := e.writeFloat32s(ps.Values); err != nil {
			return err
		}
		e.record()
		return nil
	})
	if err != nil {
		return err
	}
	idx := e.record()
	if _, seen := e.samples[s]; !seen {
		e.samples[s] = idx
	}
	return nil
}

func (e *encoder) writeDeformer(def Deformer) error {
	switch d := def.(type) {
	case *RotationDeformer:
		if d != nil {
			return e.writeRotationDeformer(d)
		}
	case *CurvedSurfaceDeformer:
		if d != nil {
			return e.writeCurvedSurfaceDeformer(d)
		}
	}
	return fmt.Errorf("%w: nil or unknown deformer %T", ErrValidation, def)
}

func (e *encoder) writeRotationDeformer(d *RotationDeformer) error {
	e.buf = append(e.buf, tagRotationDeformer)
	if err := e.writeString(d.Name); err != nil {
		return err
	}
	if err := e.writeString(d.Parent); err != nil {
		return err
	}
	if err := e.writeSamples(d.Samples); err != nil {
		return err
	}
	err := e.writeArray(len(d.Data), "rotation data", func(i int) error {
		desc := d.Data[i]
		e.buf = append(e.buf, tagRotationDesc)
		for _, f := range [...]float32{desc.CenterX, desc.CenterY, desc.ScaleX, desc.ScaleY, desc.Rotation} {
			e.buf = appendFloat32(e.buf, f)
		}
		e.record()
		return nil
	})
	if err != nil {
		return err
	}
	e.record()
	return nil
}

func (e *encoder) writeCurvedSurfaceDeformer(d *CurvedSurfaceDeformer) error {
	e.buf = append(e.buf, tagCurvedSurfaceDeformer)
	if err := e.writeString(d.Name); err != nil {
		return err
	}
	if err := e.writeString(d.Parent); err != nil {
		return err
	}
	e.buf = appendInt32(e.buf, d.DivisionX)
	e.buf = appendInt32(e.buf, d.DivisionY)
	if err := e.writeSamples(d.Samples); err != nil {
		return err
	}
	if err := e.writeRows(d.Data, "curved surface data"); err != nil {
		return err
	}
	e.record()
	return nil
}

func (e *encoder) writeComponent(c *Component) error {
	e.buf = append(e.buf, tagComponent)
	if err := e.writeString(c.Name); err != nil {
		return err
	}
	if err := e.writeString(c.Parent); err != nil {
		return err
	}
	if err := e.writeSamples(c.Samples); err != nil {
		return err
	}
	e.buf = appendInt32(e.buf, c.Order)
	if _, err := checkLen(len(c.Orders), "orders"); err != nil {
		return err
	}
	e.buf = appendInt32Array(e.buf, c.Orders)
	if _, err := checkLen(len(c.Opacities), "opacities"); err != nil {
		return err
	}
	e.buf = appendFloat32Array(e.buf, c.Opacities)
	e.buf = appendInt32(e.buf, c.TextureID)
	e.buf = appendInt32(e.buf, c.VertexCount)
	e.buf = appendInt32(e.buf, c.TriangleCount)
	if err := e.writeInt32s(c.Indices); err != nil {
		return err
	}
	if err := e.writeRows(c.Data, "component data"); err != nil {
		return err
	}
	if err := e.writeFloat32s(c.UVs); err != nil {
		return err
	}
	e.buf = appendInt32(e.buf, c.ColorCompositionType)
	e.record()
	return nil
}

func (e *encoder) writePart(p *Part) error {
	e.buf = append(e.buf, tagPart, p.Status)
	if err := e.writeString(p.Name); err != nil {
		return err
	}
	err := e.writeArray(len(p.Deformers), "deformers", func(i int) error {
		return e.writeDeformer(p.Deformers[i])
	})
	if err != nil {
		return err
	}
	err = e.writeArray(len(p.Components), "components", func(i int) error {
		c := p.Components[i]
		if c == nil {
			return fmt.Errorf("%w: part %q component %d is nil", ErrValidation, p.Name, i)
		}
		return e.writeComponent(c)
	})
	if err != nil {
		return err
	}
	e.record()
	return nil
}
