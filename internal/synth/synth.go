// Package synth builds small synthetic moc documents for fixtures and demos.
package synth

import (
	"fmt"

	"github.com/logicossoftware/go-moc"
)

// Options shapes a synthetic model. Zero fields take the defaults noted.
type Options struct {
	Parts    int   // parts in the model, default 1
	Grid     int   // mesh vertices per side, default 2, minimum 2
	KeyForms int   // samples per parameter, default 3, minimum 2
	Width    int32 // canvas, default 1024
	Height   int32 // canvas, default 1024
}

func (o Options) withDefaults() Options {
	if o.Parts <= 0 {
		o.Parts = 1
	}
	if o.Grid < 2 {
		o.Grid = 2
	}
	if o.KeyForms < 2 {
		o.KeyForms = 3
	}
	if o.Width == 0 {
		o.Width = 1024
	}
	if o.Height == 0 {
		o.Height = 1024
	}
	return o
}

// Model returns a document that passes moc.Validate. Every part has one
// rotation deformer, one curved surface deformer and one grid mesh. The
// angle and breath sample blocks are shared across all owners.
func Model(o Options) *moc.Document {
	o = o.withDefaults()

	angle := &moc.ParameterSamples{Data: []*moc.ParameterSample{
		{Name: "PARAM_ANGLE_X", Count: int32(o.KeyForms), Values: linspace(-30, 30, o.KeyForms)},
	}}
	breath := &moc.ParameterSamples{Data: []*moc.ParameterSample{
		{Name: "PARAM_BREATH", Count: 2, Values: []float32{0, 1}},
	}}

	doc := &moc.Document{
		Parameters: []*moc.Parameter{
			{Name: "PARAM_ANGLE_X", MinValue: -30, MaxValue: 30, Default: 0},
			{Name: "PARAM_BREATH", MinValue: 0, MaxValue: 1, Default: 0},
		},
		Parts:  make([]*moc.Part, 0, o.Parts),
		Width:  o.Width,
		Height: o.Height,
	}

	for i := 0; i < o.Parts; i++ {
		rot := &moc.RotationDeformer{
			Name:    fmt.Sprintf("D_ROT_%02d", i),
			Parent:  "DST_BASE",
			Samples: angle,
			Data:    make([]moc.RotationDesc, o.KeyForms),
		}
		for k, r := range linspace(-10, 10, o.KeyForms) {
			rot.Data[k] = moc.RotationDesc{CenterX: 0.5, CenterY: 0.5, ScaleX: 1, ScaleY: 1, Rotation: r}
		}

		curved := &moc.CurvedSurfaceDeformer{
			Name:      fmt.Sprintf("D_GRID_%02d", i),
			Parent:    rot.Name,
			DivisionX: 1,
			DivisionY: 1,
			Samples:   breath,
			Data: [][]float32{
				{0, 0, 1, 0, 0, 1, 1, 1},
				{0, 0.05, 1, 0.05, 0, 1.05, 1, 1.05},
			},
		}

		status := moc.StatusVisible
		if i%2 == 1 {
			status |= moc.StatusLocked
		}
		doc.Parts = append(doc.Parts, &moc.Part{
			Status:     status,
			Name:       fmt.Sprintf("PARTS_%02d", i),
			Deformers:  []moc.Deformer{rot, curved},
			Components: []*moc.Component{gridMesh(i, o, curved.Name, angle)},
		})
	}
	return doc
}

func gridMesh(i int, o Options, parent string, samples *moc.ParameterSamples) *moc.Component {
	g := o.Grid
	verts := g * g
	c := &moc.Component{
		Name:          fmt.Sprintf("D_MESH_%02d", i),
		Parent:        parent,
		Samples:       samples,
		Order:         int32(500 + i),
		Orders:        make([]int32, o.KeyForms),
		Opacities:     make([]float32, o.KeyForms),
		TextureID:     int32(i % 2),
		VertexCount:   int32(verts),
		TriangleCount: int32(2 * (g - 1) * (g - 1)),
		Indices:       make([]int32, 0, 6*(g-1)*(g-1)),
		Data:          make([][]float32, o.KeyForms),
		UVs:           make([]float32, 0, 2*verts),
	}
	for k := range c.Orders {
		c.Orders[k] = c.Order
		c.Opacities[k] = 1
	}

	step := 1 / float32(g-1)
	for y := 0; y < g; y++ {
		for x := 0; x < g; x++ {
			c.UVs = append(c.UVs, float32(x)*step, float32(y)*step)
		}
	}
	for y := 0; y < g-1; y++ {
		for x := 0; x < g-1; x++ {
			v := int32(y*g + x)
			w := int32(g)
			c.Indices = append(c.Indices, v, v+1, v+w, v+1, v+w+1, v+w)
		}
	}
	for k, shift := range linspace(-0.1, 0.1, o.KeyForms) {
		row := make([]float32, len(c.UVs))
		for j := 0; j < len(row); j += 2 {
			row[j] = c.UVs[j] + shift
			row[j+1] = c.UVs[j+1]
		}
		c.Data[k] = row
	}
	return c
}

func linspace(lo, hi float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float32(i)/float32(n-1)
	}
	return out
}
