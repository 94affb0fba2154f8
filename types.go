package moc

// Magic is the moc file signature compared as a little-endian uint32
// against the first four bytes of the file ("moc" followed by 0x09).
const Magic uint32 = 0x09636f6d

const (
	reservedHeaderLen  = 4
	reservedTrailerLen = 4
)

// Part status bits.
const (
	StatusVisible byte = 0x40
	StatusLocked  byte = 0x80
)

// Document is the decoded puppet model.
type Document struct {
	Parameters []*Parameter
	Parts      []*Part
	Width      int32
	Height     int32
}

// Parameter is a global animation input.
//
// MinValue <= Default <= MaxValue is expected but not enforced unless
// strict validation is enabled.
type Parameter struct {
	Name     string
	MinValue float32
	MaxValue float32
	Default  float32
}

// ParameterSample lists the sampled values of one parameter.
type ParameterSample struct {
	Name   string
	Count  int32
	Values []float32
}

// ParameterSamples holds one ParameterSample per parameter driving a
// deformer or component. A block may be shared by several owners.
type ParameterSamples struct {
	Data []*ParameterSample
}

// RotationDesc is one rigid-transform snapshot of a RotationDeformer.
type RotationDesc struct {
	CenterX  float32
	CenterY  float32
	ScaleX   float32
	ScaleY   float32
	Rotation float32
}

// Deformer is implemented by *RotationDeformer and *CurvedSurfaceDeformer.
type Deformer interface {
	DeformerName() string
	DeformerParent() string
	isDeformer()
}

// RotationDeformer rotates, scales and translates its children.
// Parent names another deformer and is never resolved by this package.
type RotationDeformer struct {
	Name    string
	Parent  string
	Samples *ParameterSamples
	Data    []RotationDesc
}

func (d *RotationDeformer) DeformerName() string   { return d.Name }
func (d *RotationDeformer) DeformerParent() string { return d.Parent }
func (*RotationDeformer) isDeformer()              {}

// CurvedSurfaceDeformer warps its children with a control grid of
// (DivisionX+1) x (DivisionY+1) points. Each Data row is one flattened
// set of control points.
type CurvedSurfaceDeformer struct {
	Name      string
	Parent    string
	DivisionX int32
	DivisionY int32
	Samples   *ParameterSamples
	Data      [][]float32
}

func (d *CurvedSurfaceDeformer) DeformerName() string   { return d.Name }
func (d *CurvedSurfaceDeformer) DeformerParent() string { return d.Parent }
func (*CurvedSurfaceDeformer) isDeformer()              {}

// Component is a renderable mesh.
type Component struct {
	Name      string
	Parent    string
	Samples   *ParameterSamples
	Order     int32
	Orders    []int32
	Opacities []float32

	TextureID     int32
	VertexCount   int32
	TriangleCount int32
	Indices       []int32
	Data          [][]float32 // flattened vertex positions per sample row
	UVs           []float32

	ColorCompositionType int32
}

// Part groups deformers and components.
type Part struct {
	Status     byte
	Name       string
	Deformers  []Deformer
	Components []*Component
}

func (p *Part) IsVisible() bool { return p.Status&StatusVisible != 0 }
func (p *Part) IsLocked() bool  { return p.Status&StatusLocked != 0 }
