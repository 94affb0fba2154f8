package moc

import "fmt"

// Stream tags.
const (
	tagAbsent       byte = 0x00 // any unassigned tag decodes to nil; the encoder uses this one
	tagParameter    byte = 0x03
	tagPart         byte = 0x05
	tagString       byte = 0x06
	tagArray        byte = 0x0f
	tagInt32Array   byte = 0x19
	tagFloat32Array byte = 0x1b
	tagBackref      byte = 0x21

	// Identifier strings. They decode exactly like tagString.
	tagDrawDataID  byte = 0x32
	tagBaseDataID  byte = 0x33
	tagPartsDataID byte = 0x3c

	tagCurvedSurfaceDeformer byte = 0x41
	tagParameterSamples      byte = 0x42
	tagParameterSample       byte = 0x43
	tagRotationDeformer      byte = 0x44
	tagRotationDesc          byte = 0x45
	tagComponent             byte = 0x46
	tagPassThrough           byte = 0x81
)

// value is one decoded tagged value. A nil value is the absent value
// produced by unknown tags. The set of implementations is closed.
type value interface {
	mocValue()
}

type (
	stringValue  string
	int32Array   []int32
	float32Array []float32
	arrayValue   []value
)

func (stringValue) mocValue()  {}
func (int32Array) mocValue()   {}
func (float32Array) mocValue() {}
func (arrayValue) mocValue()   {}

func (*Parameter) mocValue()             {}
func (*ParameterSample) mocValue()       {}
func (*ParameterSamples) mocValue()      {}
func (*RotationDesc) mocValue()          {}
func (*RotationDeformer) mocValue()      {}
func (*CurvedSurfaceDeformer) mocValue() {}
func (*Component) mocValue()             {}
func (*Part) mocValue()                  {}

// shapeName describes v for error messages.
func shapeName(v value) string {
	switch t := v.(type) {
	case nil:
		return "absent"
	case stringValue:
		return "string"
	case int32Array:
		return "int32 array"
	case float32Array:
		return "float32 array"
	case arrayValue:
		return fmt.Sprintf("array[%d]", len(t))
	case *Parameter:
		return "Parameter"
	case *ParameterSample:
		return "ParameterSample"
	case *ParameterSamples:
		return "ParameterSamples"
	case *RotationDesc:
		return "RotationDeformer.Desc"
	case *RotationDeformer:
		return "RotationDeformer"
	case *CurvedSurfaceDeformer:
		return "CurvedSurfaceDeformer"
	case *Component:
		return "Component"
	case *Part:
		return "Part"
	default:
		return fmt.Sprintf("%T", v)
	}
}
