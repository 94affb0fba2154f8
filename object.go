package moc

import (
	"fmt"
	"log/slog"
)

// decoder walks one moc stream. It owns the cursor and the reference table;
// neither may be shared with another decode.
type decoder struct {
	r      reader
	table  *refTable
	depth  int
	logger *slog.Logger
}

func newDecoder(data []byte, limits Limits, logger *slog.Logger) *decoder {
	return &decoder{
		r:      reader{data: data, limits: limits},
		table:  newRefTable(limits.MaxTableEntries),
		logger: logger,
	}
}

// readValue decodes one tagged value. Every value except backreferences and
// pass-through wrappers is recorded in the reference table after its own
// fields, unknown tags included.
func (d *decoder) readValue() (value, error) {
	d.depth++
	defer func() { d.depth-- }()
	start := d.r.off
	if d.depth > d.r.limits.MaxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d at offset %d", ErrLimitExceeded, d.r.limits.MaxDepth, start)
	}

	tag, err := d.r.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagBackref:
		idx, err := d.r.readInt32()
		if err != nil {
			return nil, err
		}
		v, err := d.table.at(idx)
		if err != nil {
			return nil, fmt.Errorf("%w (offset %d)", err, start)
		}
		return v, nil
	case tagPassThrough:
		return d.readValue()
	}

	v, err := d.readTagged(tag, start)
	if err != nil {
		return nil, err
	}
	if err := d.table.add(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *decoder) readTagged(tag byte, start int) (value, error) {
	switch tag {
	case tagParameter:
		return d.readParameter()
	case tagPart:
		return d.readPart()
	case tagArray:
		return d.readArray()
	case tagInt32Array:
		a, err := d.r.readInt32Array()
		if err != nil {
			return nil, err
		}
		return int32Array(a), nil
	case tagFloat32Array:
		a, err := d.r.readFloat32Array()
		if err != nil {
			return nil, err
		}
		return float32Array(a), nil
	case tagString, tagDrawDataID, tagBaseDataID, tagPartsDataID:
		s, err := d.r.readString()
		if err != nil {
			return nil, err
		}
		return stringValue(s), nil
	case tagCurvedSurfaceDeformer:
		return d.readCurvedSurfaceDeformer()
	case tagParameterSamples:
		return d.readParameterSamples()
	case tagParameterSample:
		return d.readParameterSample()
	case tagRotationDeformer:
		return d.readRotationDeformer()
	case tagRotationDesc:
		return d.readRotationDesc()
	case tagComponent:
		return d.readComponent()
	default:
		d.logger.Debug("moc: unknown tag",
			slog.String("tag", fmt.Sprintf("0x%02x", tag)),
			slog.Int("offset", start),
			slog.Int("index", d.table.len()))
		return nil, nil
	}
}

func (d *decoder) readArray() (arrayValue, error) {
	n, err := d.r.readCount(1, d.r.limits.MaxArrayLen, "array")
	if err != nil {
		return nil, err
	}
	out := make(arrayValue, n)
	for i := range out {
		if out[i], err = d.readValue(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *decoder) readStringField(field string) (string, error) {
	v, err := d.readValue()
	if err != nil {
		return "", err
	}
	return asString(v, field)
}

func (d *decoder) readSamplesField(field string) (*ParameterSamples, error) {
	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	return asSamples(v, field)
}

func (d *decoder) readParameter() (*Parameter, error) {
	p := &Parameter{}
	var err error
	if p.MinValue, err = d.r.readFloat32(); err != nil {
		return nil, err
	}
	if p.MaxValue, err = d.r.readFloat32(); err != nil {
		return nil, err
	}
	if p.Default, err = d.r.readFloat32(); err != nil {
		return nil, err
	}
	if p.Name, err = d.readStringField("Parameter.name"); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *decoder) readParameterSample() (*ParameterSample, error) {
	s := &ParameterSample{}
	var err error
	if s.Name, err = d.readStringField("ParameterSample.name"); err != nil {
		return nil, err
	}
	if s.Count, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	if s.Values, err = asFloat32s(v, "ParameterSample.values"); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *decoder) readParameterSamples() (*ParameterSamples, error) {
	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	data, err := asRecords[*ParameterSample](v, "ParameterSamples.data", "ParameterSample")
	if err != nil {
		return nil, err
	}
	return &ParameterSamples{Data: data}, nil
}

func (d *decoder) readRotationDesc() (*RotationDesc, error) {
	var fields [5]float32
	for i := range fields {
		f, err := d.r.readFloat32()
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return &RotationDesc{
		CenterX:  fields[0],
		CenterY:  fields[1],
		ScaleX:   fields[2],
		ScaleY:   fields[3],
		Rotation: fields[4],
	}, nil
}

func (d *decoder) readRotationDeformer() (*RotationDeformer, error) {
	rd := &RotationDeformer{}
	var err error
	if rd.Name, err = d.readStringField("RotationDeformer.name"); err != nil {
		return nil, err
	}
	if rd.Parent, err = d.readStringField("RotationDeformer.parent"); err != nil {
		return nil, err
	}
	if rd.Samples, err = d.readSamplesField("RotationDeformer.samples"); err != nil {
		return nil, err
	}
	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	if rd.Data, err = asRotationDescs(v, "RotationDeformer.data"); err != nil {
		return nil, err
	}
	return rd, nil
}

func (d *decoder) readCurvedSurfaceDeformer() (*CurvedSurfaceDeformer, error) {
	cd := &CurvedSurfaceDeformer{}
	var err error
	if cd.Name, err = d.readStringField("CurvedSurfaceDeformer.name"); err != nil {
		return nil, err
	}
	if cd.Parent, err = d.readStringField("CurvedSurfaceDeformer.parent"); err != nil {
		return nil, err
	}
	if cd.DivisionX, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	if cd.DivisionY, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	if cd.Samples, err = d.readSamplesField("CurvedSurfaceDeformer.samples"); err != nil {
		return nil, err
	}
	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	if cd.Data, err = asFloat32Rows(v, "CurvedSurfaceDeformer.data"); err != nil {
		return nil, err
	}
	return cd, nil
}

func (d *decoder) readComponent() (*Component, error) {
	c := &Component{}
	var err error
	if c.Name, err = d.readStringField("Component.name"); err != nil {
		return nil, err
	}
	if c.Parent, err = d.readStringField("Component.parent"); err != nil {
		return nil, err
	}
	if c.Samples, err = d.readSamplesField("Component.samples"); err != nil {
		return nil, err
	}
	if c.Order, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	if c.Orders, err = d.r.readInt32Array(); err != nil {
		return nil, err
	}
	if c.Opacities, err = d.r.readFloat32Array(); err != nil {
		return nil, err
	}
	if c.TextureID, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	if c.VertexCount, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	if c.TriangleCount, err = d.r.readInt32(); err != nil {
		return nil, err
	}

	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	if c.Indices, err = asInt32s(v, "Component.indices"); err != nil {
		return nil, err
	}
	if v, err = d.readValue(); err != nil {
		return nil, err
	}
	if c.Data, err = asFloat32Rows(v, "Component.data"); err != nil {
		return nil, err
	}
	if v, err = d.readValue(); err != nil {
		return nil, err
	}
	if c.UVs, err = asFloat32s(v, "Component.uvs"); err != nil {
		return nil, err
	}

	if c.ColorCompositionType, err = d.r.readInt32(); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *decoder) readPart() (*Part, error) {
	p := &Part{}
	var err error
	if p.Status, err = d.r.readByte(); err != nil {
		return nil, err
	}
	if p.Name, err = d.readStringField("Part.name"); err != nil {
		return nil, err
	}
	v, err := d.readValue()
	if err != nil {
		return nil, err
	}
	if p.Deformers, err = asRecords[Deformer](v, "Part.deformers", "deformer"); err != nil {
		return nil, err
	}
	if v, err = d.readValue(); err != nil {
		return nil, err
	}
	if p.Components, err = asRecords[*Component](v, "Part.components", "Component"); err != nil {
		return nil, err
	}
	return p, nil
}
