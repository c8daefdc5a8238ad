package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/mesh"
)

// Input formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the supported input formats.
var Formats = []string{FormatJSON, FormatYAML, FormatTOML}

// =============================================================================
// Input - Flow Data Serialization
// =============================================================================

// Input is the wire format of flow data: a catalogue of points and a tree of
// link descriptors referencing them by index.
//
// Options optionally carries mesh overrides stored alongside the data. They
// have lower precedence than overrides supplied by the caller.
type Input struct {
	Points  []PointSpec     `json:"points" yaml:"points" toml:"points"`
	Links   []LinkSpec      `json:"links" yaml:"links" toml:"links"`
	Options *mesh.Overrides `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
}

// PointSpec is a catalogue entry. Its index is its position in Points.
type PointSpec struct {
	Name string `json:"name" yaml:"name" toml:"name"`
}

// LinkSpec is a weighted link between two points. Nested Links continue the
// chain from Target one layer deeper. An explicit empty list ("links": [])
// is kept distinct from an absent one in JSON, since it adds an empty layer.
type LinkSpec struct {
	Source int        `json:"source" yaml:"source" toml:"source"`
	Target int        `json:"target" yaml:"target" toml:"target"`
	Value  float64    `json:"value" yaml:"value" toml:"value"`
	Links  []LinkSpec `json:"links,omitzero" yaml:"links,omitempty" toml:"links,omitempty"`
}

// Validate checks point names, link references and values, and nesting depth.
func (in Input) Validate() error {
	for i, p := range in.Points {
		if err := errs.ValidatePointName(p.Name); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return validateLinks(in.Links, len(in.Points), 0)
}

func validateLinks(links []LinkSpec, n, depth int) error {
	if links != nil && depth >= mesh.MaxDepth {
		return errs.New(errs.ErrCodeInvalidInput, "links nested deeper than %d levels", mesh.MaxDepth)
	}
	for _, l := range links {
		if l.Source < 0 || l.Source >= n {
			return errs.New(errs.ErrCodeInvalidReference, "depth %d: source index %d out of range [0, %d)", depth, l.Source, n)
		}
		if l.Target < 0 || l.Target >= n {
			return errs.New(errs.ErrCodeInvalidReference, "depth %d: target index %d out of range [0, %d)", depth, l.Target, n)
		}
		if l.Value < 0 || math.IsNaN(l.Value) || math.IsInf(l.Value, 0) {
			return errs.New(errs.ErrCodeInvalidInput, "depth %d: link %d -> %d has invalid value %v", depth, l.Source, l.Target, l.Value)
		}
		if err := validateLinks(l.Links, n, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// MeshInput converts the wire format into the engine's input.
func (in Input) MeshInput() mesh.Input {
	out := mesh.Input{Points: make([]mesh.PointSpec, len(in.Points))}
	for i, p := range in.Points {
		out.Points[i] = mesh.PointSpec{Name: p.Name}
	}
	out.Links = convertLinks(in.Links)
	return out
}

// convertLinks keeps nil and empty apart: an empty nested list still adds a
// layer.
func convertLinks(links []LinkSpec) []mesh.LinkSpec {
	if links == nil {
		return nil
	}
	out := make([]mesh.LinkSpec, len(links))
	for i, l := range links {
		out[i] = mesh.LinkSpec{Source: l.Source, Target: l.Target, Value: l.Value, Links: convertLinks(l.Links)}
	}
	return out
}

// Overrides returns the options stored in the input, or zero overrides.
func (in Input) Overrides() mesh.Overrides {
	if in.Options == nil {
		return mesh.Overrides{}
	}
	return *in.Options
}

// LinkCount returns the number of link descriptors including nested ones.
func (in Input) LinkCount() int {
	var count func([]LinkSpec) int
	count = func(links []LinkSpec) int {
		n := len(links)
		for _, l := range links {
			n += count(l.Links)
		}
		return n
	}
	return count(in.Links)
}

// =============================================================================
// Input Serialization API
// =============================================================================

// FormatFromPath infers the input format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer input format from %q (want .json, .yaml, .yml or .toml)", path)
}

// ReadInput decodes flow data from r in the given format.
func ReadInput(r io.Reader, format string) (Input, error) {
	var in Input
	var err error
	switch format {
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(&in)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&in)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&in)
	default:
		return Input{}, errs.New(errs.ErrCodeInvalidFormat, "unsupported input format %q", format)
	}
	if err != nil {
		return Input{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s input", format)
	}
	return in, nil
}

// ReadInputFile reads flow data from path, inferring the format from the
// file extension.
func ReadInputFile(path string) (Input, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Input{}, err
	}
	return ReadInputFileAs(path, format)
}

// ReadInputFileAs reads flow data from path in an explicit format.
func ReadInputFileAs(path, format string) (Input, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Input{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "input %s", path)
		}
		return Input{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadInput(f, format)
}

// MarshalInput encodes flow data in the given format.
func MarshalInput(in Input, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(in, "", "  ")
	case FormatYAML:
		return yaml.Marshal(in)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(in); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported input format %q", format)
}
