package report

import "github.com/logicossoftware/go-moc"

// Model is a plain data view of a document, safe to hand to any encoder.
// Deformers carry an explicit Kind since the document holds them behind an
// interface.
type Model struct {
	Width      int32           `json:"width" yaml:"width" cbor:"width"`
	Height     int32           `json:"height" yaml:"height" cbor:"height"`
	Parameters []ParameterInfo `json:"parameters" yaml:"parameters" cbor:"parameters"`
	Parts      []PartView      `json:"parts" yaml:"parts" cbor:"parts"`
}

type PartView struct {
	Name       string          `json:"name" yaml:"name" cbor:"name"`
	Status     byte            `json:"status" yaml:"status" cbor:"status"`
	Visible    bool            `json:"visible" yaml:"visible" cbor:"visible"`
	Locked     bool            `json:"locked" yaml:"locked" cbor:"locked"`
	Deformers  []DeformerView  `json:"deformers" yaml:"deformers" cbor:"deformers"`
	Components []ComponentView `json:"components" yaml:"components" cbor:"components"`
}

const (
	KindRotation      = "rotation"
	KindCurvedSurface = "curved_surface"
)

type DeformerView struct {
	Kind      string         `json:"kind" yaml:"kind" cbor:"kind"`
	Name      string         `json:"name" yaml:"name" cbor:"name"`
	Parent    string         `json:"parent" yaml:"parent" cbor:"parent"`
	DivisionX int32          `json:"division_x,omitempty" yaml:"division_x,omitempty" cbor:"division_x,omitempty"`
	DivisionY int32          `json:"division_y,omitempty" yaml:"division_y,omitempty" cbor:"division_y,omitempty"`
	Samples   []SampleView   `json:"samples,omitempty" yaml:"samples,omitempty" cbor:"samples,omitempty"`
	Rotations []RotationView `json:"rotations,omitempty" yaml:"rotations,omitempty" cbor:"rotations,omitempty"`
	Points    [][]float32    `json:"points,omitempty" yaml:"points,omitempty" cbor:"points,omitempty"`
}

type RotationView struct {
	CenterX  float32 `json:"center_x" yaml:"center_x" cbor:"center_x"`
	CenterY  float32 `json:"center_y" yaml:"center_y" cbor:"center_y"`
	ScaleX   float32 `json:"scale_x" yaml:"scale_x" cbor:"scale_x"`
	ScaleY   float32 `json:"scale_y" yaml:"scale_y" cbor:"scale_y"`
	Rotation float32 `json:"rotation" yaml:"rotation" cbor:"rotation"`
}

type SampleView struct {
	Parameter string    `json:"parameter" yaml:"parameter" cbor:"parameter"`
	Count     int32     `json:"count" yaml:"count" cbor:"count"`
	Values    []float32 `json:"values" yaml:"values" cbor:"values"`
}

type ComponentView struct {
	Name                 string       `json:"name" yaml:"name" cbor:"name"`
	Parent               string       `json:"parent" yaml:"parent" cbor:"parent"`
	Samples              []SampleView `json:"samples,omitempty" yaml:"samples,omitempty" cbor:"samples,omitempty"`
	Order                int32        `json:"order" yaml:"order" cbor:"order"`
	Orders               []int32      `json:"orders" yaml:"orders" cbor:"orders"`
	Opacities            []float32    `json:"opacities" yaml:"opacities" cbor:"opacities"`
	TextureID            int32        `json:"texture_id" yaml:"texture_id" cbor:"texture_id"`
	VertexCount          int32        `json:"vertex_count" yaml:"vertex_count" cbor:"vertex_count"`
	TriangleCount        int32        `json:"triangle_count" yaml:"triangle_count" cbor:"triangle_count"`
	Indices              []int32      `json:"indices" yaml:"indices" cbor:"indices"`
	Points               [][]float32  `json:"points" yaml:"points" cbor:"points"`
	UVs                  []float32    `json:"uvs" yaml:"uvs" cbor:"uvs"`
	ColorCompositionType int32        `json:"color_composition_type" yaml:"color_composition_type" cbor:"color_composition_type"`
}

// Export builds the plain data view of doc. Nil entries are skipped.
func Export(doc *moc.Document) *Model {
	m := &Model{
		Width:      doc.Width,
		Height:     doc.Height,
		Parameters: make([]ParameterInfo, 0, len(doc.Parameters)),
		Parts:      make([]PartView, 0, len(doc.Parts)),
	}
	for _, p := range doc.Parameters {
		if p != nil {
			m.Parameters = append(m.Parameters, ParameterInfo{Name: p.Name, Min: p.MinValue, Max: p.MaxValue, Default: p.Default})
		}
	}
	for _, part := range doc.Parts {
		if part != nil {
			m.Parts = append(m.Parts, ExportPart(part))
		}
	}
	return m
}

// ExportPart builds the plain data view of one part.
func ExportPart(part *moc.Part) PartView {
	pv := PartView{
		Name:       part.Name,
		Status:     part.Status,
		Visible:    part.IsVisible(),
		Locked:     part.IsLocked(),
		Deformers:  make([]DeformerView, 0, len(part.Deformers)),
		Components: make([]ComponentView, 0, len(part.Components)),
	}
	for _, def := range part.Deformers {
		switch d := def.(type) {
		case *moc.RotationDeformer:
			dv := DeformerView{Kind: KindRotation, Name: d.Name, Parent: d.Parent, Samples: exportSamples(d.Samples)}
			for _, r := range d.Data {
				dv.Rotations = append(dv.Rotations, RotationView(r))
			}
			pv.Deformers = append(pv.Deformers, dv)
		case *moc.CurvedSurfaceDeformer:
			pv.Deformers = append(pv.Deformers, DeformerView{
				Kind:      KindCurvedSurface,
				Name:      d.Name,
				Parent:    d.Parent,
				DivisionX: d.DivisionX,
				DivisionY: d.DivisionY,
				Samples:   exportSamples(d.Samples),
				Points:    d.Data,
			})
		}
	}
	for _, c := range part.Components {
		if c == nil {
			continue
		}
		pv.Components = append(pv.Components, ComponentView{
			Name:                 c.Name,
			Parent:               c.Parent,
			Samples:              exportSamples(c.Samples),
			Order:                c.Order,
			Orders:               c.Orders,
			Opacities:            c.Opacities,
			TextureID:            c.TextureID,
			VertexCount:          c.VertexCount,
			TriangleCount:        c.TriangleCount,
			Indices:              c.Indices,
			Points:               c.Data,
			UVs:                  c.UVs,
			ColorCompositionType: c.ColorCompositionType,
		})
	}
	return pv
}

func exportSamples(ps *moc.ParameterSamples) []SampleView {
	if ps == nil {
		return nil
	}
	out := make([]SampleView, 0, len(ps.Data))
	for _, s := range ps.Data {
		if s != nil {
			out = append(out, SampleView{Parameter: s.Name, Count: s.Count, Values: s.Values})
		}
	}
	return out
}
