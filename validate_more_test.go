package moc

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_MoreFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"negative width", func(d *Document) { d.Width = -1 }},
		{"nil parameter", func(d *Document) { d.Parameters[1] = nil }},
		{"nil part", func(d *Document) { d.Parts[0] = nil }},
		{"nil deformer", func(d *Document) { d.Parts[0].Deformers[0] = nil }},
		{"typed nil deformer", func(d *Document) { d.Parts[0].Deformers[0] = (*RotationDeformer)(nil) }},
		{"nil component", func(d *Document) { d.Parts[0].Components[1] = nil }},
		{"sample count", func(d *Document) {
			d.Parts[0].Deformers[1].(*CurvedSurfaceDeformer).Samples.Data[0].Count = 3
		}},
		{"nil sample", func(d *Document) {
			d.Parts[0].Components[0].Samples = &ParameterSamples{Data: []*ParameterSample{nil}}
		}},
		{"negative division", func(d *Document) {
			d.Parts[0].Deformers[1].(*CurvedSurfaceDeformer).DivisionX = -1
		}},
		{"curved row length", func(d *Document) {
			cd := d.Parts[0].Deformers[1].(*CurvedSurfaceDeformer)
			cd.Data[1] = cd.Data[1][:6]
		}},
		{"index count", func(d *Document) { d.Parts[0].Components[0].Indices = []int32{0, 1} }},
		{"index range", func(d *Document) { d.Parts[0].Components[0].Indices = []int32{0, 1, 3} }},
		{"negative index", func(d *Document) { d.Parts[0].Components[0].Indices = []int32{0, -1, 2} }},
		{"negative vertex count", func(d *Document) { d.Parts[0].Components[1].VertexCount = -1 }},
		{"uv length", func(d *Document) { d.Parts[0].Components[0].UVs = []float32{0, 0} }},
		{"component row length", func(d *Document) {
			d.Parts[0].Components[0].Data[2] = []float32{0}
		}},
	}
	for _, tc := range cases {
		d := sampleDoc()
		tc.mutate(d)
		if err := Validate(d); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestValidate_ErrorNamesPart(t *testing.T) {
	d := sampleDoc()
	d.Parts[0].Components[0].UVs = nil
	err := Validate(d)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "PARTS_01_FACE") || !strings.Contains(err.Error(), "D_FACE.SKIN") {
		t.Fatalf("error lacks context: %v", err)
	}
}

func TestValidate_UnknownDeformer(t *testing.T) {
	d := sampleDoc()
	d.Parts[0].Deformers = append(d.Parts[0].Deformers, otherDeformer{})
	if err := Validate(d); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

type otherDeformer struct{}

func (otherDeformer) DeformerName() string   { return "other" }
func (otherDeformer) DeformerParent() string { return "" }
func (otherDeformer) isDeformer()            {}
