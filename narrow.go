package moc

import "fmt"

// The stream carries no static element types, so every field is decoded as a
// generic value and narrowed here. Absent values narrow to the zero value of
// the field; absent elements inside record arrays do not.

func mismatch(field, want string, got value) error {
	return fmt.Errorf("%w: %s: expected %s, got %s", ErrSchemaMismatch, field, want, shapeName(got))
}

func asString(v value, field string) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case stringValue:
		return string(t), nil
	default:
		return "", mismatch(field, "string", v)
	}
}

func asInt32s(v value, field string) ([]int32, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int32Array:
		return []int32(t), nil
	default:
		return nil, mismatch(field, "int32 array", v)
	}
}

func asFloat32s(v value, field string) ([]float32, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float32Array:
		return []float32(t), nil
	default:
		return nil, mismatch(field, "float32 array", v)
	}
}

func asSamples(v value, field string) (*ParameterSamples, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *ParameterSamples:
		return t, nil
	default:
		return nil, mismatch(field, "ParameterSamples", v)
	}
}

func asArray(v value, field string) (arrayValue, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case arrayValue:
		return t, nil
	default:
		return nil, mismatch(field, "array", v)
	}
}

// asRecords narrows a generic array whose elements must all be T.
func asRecords[T any](v value, field, want string) ([]T, error) {
	arr, err := asArray(v, field)
	if err != nil || arr == nil {
		return nil, err
	}
	out := make([]T, len(arr))
	for i, e := range arr {
		t, ok := e.(T)
		if !ok {
			return nil, mismatch(fmt.Sprintf("%s[%d]", field, i), want, e)
		}
		out[i] = t
	}
	return out, nil
}

func asRotationDescs(v value, field string) ([]RotationDesc, error) {
	descs, err := asRecords[*RotationDesc](v, field, "RotationDeformer.Desc")
	if err != nil || descs == nil {
		return nil, err
	}
	out := make([]RotationDesc, len(descs))
	for i, d := range descs {
		out[i] = *d
	}
	return out, nil
}

func asFloat32Rows(v value, field string) ([][]float32, error) {
	arr, err := asArray(v, field)
	if err != nil || arr == nil {
		return nil, err
	}
	out := make([][]float32, len(arr))
	for i, e := range arr {
		if out[i], err = asFloat32s(e, fmt.Sprintf("%s[%d]", field, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}
