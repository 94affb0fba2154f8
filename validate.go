package moc

import (
	"fmt"
	"math"
)

// Validate checks the invariants the format implies but does not encode:
// parameter ranges, sample counts and mesh buffer sizes. Decode only calls
// it when WithStrictValidation is set.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if doc.Width < 0 || doc.Height < 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrValidation, doc.Width, doc.Height)
	}
	for i, p := range doc.Parameters {
		if p == nil {
			return fmt.Errorf("%w: parameter %d is nil", ErrValidation, i)
		}
		if err := validateParameter(p); err != nil {
			return err
		}
	}
	for i, part := range doc.Parts {
		if part == nil {
			return fmt.Errorf("%w: part %d is nil", ErrValidation, i)
		}
		for j, def := range part.Deformers {
			if err := validateDeformer(def); err != nil {
				return fmt.Errorf("part %q deformer %d: %w", part.Name, j, err)
			}
		}
		for j, c := range part.Components {
			if c == nil {
				return fmt.Errorf("%w: part %q component %d is nil", ErrValidation, part.Name, j)
			}
			if err := validateComponent(c); err != nil {
				return fmt.Errorf("part %q: %w", part.Name, err)
			}
		}
	}
	return nil
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

func validateParameter(p *Parameter) error {
	if !isFinite(p.MinValue) || !isFinite(p.MaxValue) || !isFinite(p.Default) {
		return fmt.Errorf("%w: parameter %q has a non-finite bound", ErrValidation, p.Name)
	}
	if p.MinValue > p.Default || p.Default > p.MaxValue {
		return fmt.Errorf("%w: parameter %q default %g outside [%g, %g]", ErrValidation, p.Name, p.Default, p.MinValue, p.MaxValue)
	}
	return nil
}

func validateSamples(owner string, s *ParameterSamples) error {
	if s == nil {
		return nil
	}
	for i, ps := range s.Data {
		if ps == nil {
			return fmt.Errorf("%w: %s sample %d is nil", ErrValidation, owner, i)
		}
		if int(ps.Count) != len(ps.Values) {
			return fmt.Errorf("%w: %s sample %q count %d, %d values", ErrValidation, owner, ps.Name, ps.Count, len(ps.Values))
		}
	}
	return nil
}

func validateDeformer(def Deformer) error {
	switch d := def.(type) {
	case *RotationDeformer:
		if d == nil {
			break
		}
		return validateSamples(fmt.Sprintf("rotation deformer %q", d.Name), d.Samples)
	case *CurvedSurfaceDeformer:
		if d == nil {
			break
		}
		owner := fmt.Sprintf("curved surface deformer %q", d.Name)
		if err := validateSamples(owner, d.Samples); err != nil {
			return err
		}
		if d.DivisionX < 0 || d.DivisionY < 0 {
			return fmt.Errorf("%w: %s division %dx%d", ErrValidation, owner, d.DivisionX, d.DivisionY)
		}
		want := 2 * (int64(d.DivisionX) + 1) * (int64(d.DivisionY) + 1)
		for i, row := range d.Data {
			if int64(len(row)) != want {
				return fmt.Errorf("%w: %s row %d has %d floats, want %d", ErrValidation, owner, i, len(row), want)
			}
		}
		return nil
	}
	return fmt.Errorf("%w: nil or unknown deformer %T", ErrValidation, def)
}

func validateComponent(c *Component) error {
	owner := fmt.Sprintf("component %q", c.Name)
	if err := validateSamples(owner, c.Samples); err != nil {
		return err
	}
	if c.VertexCount < 0 || c.TriangleCount < 0 {
		return fmt.Errorf("%w: %s has negative counts", ErrValidation, owner)
	}
	if int64(len(c.Indices)) != 3*int64(c.TriangleCount) {
		return fmt.Errorf("%w: %s has %d indices for %d triangles", ErrValidation, owner, len(c.Indices), c.TriangleCount)
	}
	for _, idx := range c.Indices {
		if idx < 0 || idx >= c.VertexCount {
			return fmt.Errorf("%w: %s index %d outside %d vertices", ErrValidation, owner, idx, c.VertexCount)
		}
	}
	want := 2 * int64(c.VertexCount)
	if int64(len(c.UVs)) != want {
		return fmt.Errorf("%w: %s has %d uv floats, want %d", ErrValidation, owner, len(c.UVs), want)
	}
	for i, row := range c.Data {
		if int64(len(row)) != want {
			return fmt.Errorf("%w: %s row %d has %d floats, want %d", ErrValidation, owner, i, len(row), want)
		}
	}
	return nil
}
