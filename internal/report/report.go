// Package report turns decoded moc documents into summaries and plain data
// views for the command line tools and the C exports.
package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/logicossoftware/go-moc"
)

// Formats lists the output formats accepted by Write.
var Formats = []string{"text", "json", "yaml", "cbor"}

// Summary holds document statistics.
type Summary struct {
	Fingerprint string `json:"blake3,omitempty" yaml:"blake3,omitempty" cbor:"blake3,omitempty"`
	InputBytes  int    `json:"input_bytes" yaml:"input_bytes" cbor:"input_bytes"`
	Width       int32  `json:"width" yaml:"width" cbor:"width"`
	Height      int32  `json:"height" yaml:"height" cbor:"height"`

	ParameterCount         int `json:"parameter_count" yaml:"parameter_count" cbor:"parameter_count"`
	PartCount              int `json:"part_count" yaml:"part_count" cbor:"part_count"`
	RotationDeformers      int `json:"rotation_deformers" yaml:"rotation_deformers" cbor:"rotation_deformers"`
	CurvedSurfaceDeformers int `json:"curved_surface_deformers" yaml:"curved_surface_deformers" cbor:"curved_surface_deformers"`
	ComponentCount         int `json:"component_count" yaml:"component_count" cbor:"component_count"`
	VertexCount            int `json:"vertex_count" yaml:"vertex_count" cbor:"vertex_count"`
	TriangleCount          int `json:"triangle_count" yaml:"triangle_count" cbor:"triangle_count"`
	SampleBlocks           int `json:"sample_blocks" yaml:"sample_blocks" cbor:"sample_blocks"`
	SharedSampleBlocks     int `json:"shared_sample_blocks" yaml:"shared_sample_blocks" cbor:"shared_sample_blocks"`
	Textures               int `json:"textures" yaml:"textures" cbor:"textures"`

	Parameters []ParameterInfo `json:"parameters" yaml:"parameters" cbor:"parameters"`
	Parts      []PartInfo      `json:"parts" yaml:"parts" cbor:"parts"`
}

type ParameterInfo struct {
	Name    string  `json:"name" yaml:"name" cbor:"name"`
	Min     float32 `json:"min" yaml:"min" cbor:"min"`
	Max     float32 `json:"max" yaml:"max" cbor:"max"`
	Default float32 `json:"default" yaml:"default" cbor:"default"`
}

type PartInfo struct {
	Name       string `json:"name" yaml:"name" cbor:"name"`
	Visible    bool   `json:"visible" yaml:"visible" cbor:"visible"`
	Locked     bool   `json:"locked" yaml:"locked" cbor:"locked"`
	Deformers  int    `json:"deformers" yaml:"deformers" cbor:"deformers"`
	Components int    `json:"components" yaml:"components" cbor:"components"`
}

// Fingerprint returns the hex BLAKE3-256 digest of b.
func Fingerprint(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Build summarizes doc. raw is the file the document was decoded from and may
// be nil, in which case no fingerprint is recorded.
func Build(doc *moc.Document, raw []byte) *Summary {
	s := &Summary{
		InputBytes:     len(raw),
		Width:          doc.Width,
		Height:         doc.Height,
		ParameterCount: len(doc.Parameters),
		PartCount:      len(doc.Parts),
		Parameters:     make([]ParameterInfo, 0, len(doc.Parameters)),
		Parts:          make([]PartInfo, 0, len(doc.Parts)),
	}
	if raw != nil {
		s.Fingerprint = Fingerprint(raw)
	}

	owners := make(map[*moc.ParameterSamples]int)
	textures := make(map[int32]struct{})
	countSamples := func(ps *moc.ParameterSamples) {
		if ps != nil {
			owners[ps]++
		}
	}

	for _, p := range doc.Parameters {
		if p == nil {
			continue
		}
		s.Parameters = append(s.Parameters, ParameterInfo{Name: p.Name, Min: p.MinValue, Max: p.MaxValue, Default: p.Default})
	}
	for _, part := range doc.Parts {
		if part == nil {
			continue
		}
		s.Parts = append(s.Parts, PartInfo{
			Name:       part.Name,
			Visible:    part.IsVisible(),
			Locked:     part.IsLocked(),
			Deformers:  len(part.Deformers),
			Components: len(part.Components),
		})
		for _, def := range part.Deformers {
			switch d := def.(type) {
			case *moc.RotationDeformer:
				s.RotationDeformers++
				countSamples(d.Samples)
			case *moc.CurvedSurfaceDeformer:
				s.CurvedSurfaceDeformers++
				countSamples(d.Samples)
			}
		}
		for _, c := range part.Components {
			if c == nil {
				continue
			}
			s.ComponentCount++
			s.VertexCount += int(c.VertexCount)
			s.TriangleCount += int(c.TriangleCount)
			textures[c.TextureID] = struct{}{}
			countSamples(c.Samples)
		}
	}

	s.SampleBlocks = len(owners)
	for _, n := range owners {
		if n > 1 {
			s.SharedSampleBlocks++
		}
	}
	s.Textures = len(textures)
	return s
}

var cborMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
	return em
}()

// Write renders v in the named format. Any value works for json, yaml and
// cbor; text requires a *Summary.
func Write(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		return cborMode.NewEncoder(w).Encode(v)
	case "text":
		s, ok := v.(*Summary)
		if !ok {
			return fmt.Errorf("report: text format needs a summary, got %T", v)
		}
		return writeText(w, s)
	default:
		return fmt.Errorf("report: unknown format %q", format)
	}
}

func writeText(w io.Writer, s *Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if s.Fingerprint != "" {
		fmt.Fprintf(tw, "blake3\t%s\n", s.Fingerprint)
	}
	fmt.Fprintf(tw, "canvas\t%dx%d\n", s.Width, s.Height)
	fmt.Fprintf(tw, "parameters\t%d\n", s.ParameterCount)
	fmt.Fprintf(tw, "parts\t%d\n", s.PartCount)
	fmt.Fprintf(tw, "deformers\t%d rotation, %d curved surface\n", s.RotationDeformers, s.CurvedSurfaceDeformers)
	fmt.Fprintf(tw, "components\t%d (%d vertices, %d triangles, %d textures)\n", s.ComponentCount, s.VertexCount, s.TriangleCount, s.Textures)
	fmt.Fprintf(tw, "sample blocks\t%d (%d shared)\n", s.SampleBlocks, s.SharedSampleBlocks)

	params := append([]ParameterInfo(nil), s.Parameters...)
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	if len(params) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "PARAMETER\tMIN\tMAX\tDEFAULT")
		for _, p := range params {
			fmt.Fprintf(tw, "%s\t%g\t%g\t%g\n", p.Name, p.Min, p.Max, p.Default)
		}
	}
	if len(s.Parts) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "PART\tFLAGS\tDEFORMERS\tCOMPONENTS")
		for _, p := range s.Parts {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", p.Name, partFlags(p), p.Deformers, p.Components)
		}
	}
	return tw.Flush()
}

func partFlags(p PartInfo) string {
	flags := []byte("--")
	if p.Visible {
		flags[0] = 'v'
	}
	if p.Locked {
		flags[1] = 'l'
	}
	return string(flags)
}
