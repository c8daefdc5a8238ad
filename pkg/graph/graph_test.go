package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/mesh"
)

const jsonInput = `{
  "points": [{"name": "A"}, {"name": "B"}, {"name": "C"}],
  "links": [
    {"source": 0, "target": 1, "value": 6, "links": [{"source": 1, "target": 2, "value": 6}]}
  ],
  "options": {"container_width": 800}
}`

const yamlInput = `
points:
  - name: A
  - name: B
  - name: C
links:
  - source: 0
    target: 1
    value: 6
    links:
      - source: 1
        target: 2
        value: 6
options:
  container_width: 800
`

const tomlInput = `
[[points]]
name = "A"

[[points]]
name = "B"

[[points]]
name = "C"

[[links]]
source = 0
target = 1
value = 6

  [[links.links]]
  source = 1
  target = 2
  value = 6

[options]
container_width = 800.0
`

func TestReadInput(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"json", FormatJSON, jsonInput},
		{"yaml", FormatYAML, yamlInput},
		{"toml", FormatTOML, tomlInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ReadInput(strings.NewReader(tt.data), tt.format)
			if err != nil {
				t.Fatalf("ReadInput() error: %v", err)
			}
			if len(in.Points) != 3 || in.Points[2].Name != "C" {
				t.Errorf("points = %+v", in.Points)
			}
			if len(in.Links) != 1 || len(in.Links[0].Links) != 1 {
				t.Fatalf("links = %+v", in.Links)
			}
			if in.Links[0].Links[0].Target != 2 || in.Links[0].Links[0].Value != 6 {
				t.Errorf("nested link = %+v", in.Links[0].Links[0])
			}
			if in.LinkCount() != 2 {
				t.Errorf("LinkCount() = %d, want 2", in.LinkCount())
			}
			ov := in.Overrides()
			if ov.ContainerWidth == nil || *ov.ContainerWidth != 800 {
				t.Errorf("options not decoded: %+v", ov)
			}
			if err := in.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestReadInputErrors(t *testing.T) {
	if _, err := ReadInput(strings.NewReader("{"), FormatJSON); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("malformed JSON: got %v", err)
	}
	if _, err := ReadInput(strings.NewReader("{}"), "xml"); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("unknown format: got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"data.json", FormatJSON, false},
		{"data.YAML", FormatYAML, false},
		{"dir/data.yml", FormatYAML, false},
		{"data.toml", FormatTOML, false},
		{"data.csv", "", true},
		{"data", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	if err := os.WriteFile(path, []byte(yamlInput), 0644); err != nil {
		t.Fatal(err)
	}

	in, err := ReadInputFile(path)
	if err != nil {
		t.Fatalf("ReadInputFile() error: %v", err)
	}
	if len(in.Points) != 3 {
		t.Errorf("points = %d, want 3", len(in.Points))
	}

	_, err = ReadInputFile(filepath.Join(dir, "missing.json"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v", err)
	}
}

func TestInputValidate(t *testing.T) {
	pts := []PointSpec{{Name: "A"}, {Name: "B"}}
	tests := []struct {
		name string
		in   Input
		code errs.Code
	}{
		{"valid", Input{Points: pts, Links: []LinkSpec{{Source: 0, Target: 1, Value: 1}}}, ""},
		{"empty name", Input{Points: []PointSpec{{Name: " "}}}, errs.ErrCodeInvalidInput},
		{"bad source", Input{Points: pts, Links: []LinkSpec{{Source: 2, Target: 1, Value: 1}}}, errs.ErrCodeInvalidReference},
		{"bad nested target", Input{Points: pts, Links: []LinkSpec{{Source: 0, Target: 1, Value: 1, Links: []LinkSpec{{Source: 1, Target: -1}}}}}, errs.ErrCodeInvalidReference},
		{"negative value", Input{Points: pts, Links: []LinkSpec{{Source: 0, Target: 1, Value: -1}}}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestEmptyNestedLinks(t *testing.T) {
	const empty = `{"points":[{"name":"A"},{"name":"B"}],"links":[{"source":0,"target":1,"value":10,"links":[]}]}`
	const absent = `{"points":[{"name":"A"},{"name":"B"}],"links":[{"source":0,"target":1,"value":10}]}`

	tests := []struct {
		name   string
		data   string
		format string
		layers int
	}{
		{"json empty", empty, FormatJSON, 3},
		{"json absent", absent, FormatJSON, 2},
		{"yaml empty", "points: [{name: A}, {name: B}]\nlinks:\n  - {source: 0, target: 1, value: 10, links: []}\n", FormatYAML, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ReadInput(strings.NewReader(tt.data), tt.format)
			if err != nil {
				t.Fatal(err)
			}
			m, err := mesh.New(in.MeshInput(), in.Overrides())
			if err != nil {
				t.Fatal(err)
			}
			if len(m.Layers) != tt.layers {
				t.Errorf("layers = %d, want %d", len(m.Layers), tt.layers)
			}
		})
	}

	in, err := ReadInput(strings.NewReader(empty), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalInput(in, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"links": []`) && !strings.Contains(string(data), `"links":[]`) {
		t.Errorf("empty nested links dropped on marshal:\n%s", data)
	}
}

func TestMarshalInputRoundTrip(t *testing.T) {
	in, err := ReadInput(strings.NewReader(jsonInput), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			data, err := MarshalInput(in, format)
			if err != nil {
				t.Fatalf("MarshalInput() error: %v", err)
			}
			back, err := ReadInput(bytes.NewReader(data), format)
			if err != nil {
				t.Fatalf("ReadInput() error: %v\n%s", err, data)
			}
			if back.LinkCount() != in.LinkCount() || len(back.Points) != len(in.Points) {
				t.Errorf("round trip lost data:\n%s", data)
			}
		})
	}
}

func buildLayout(t *testing.T) Layout {
	t.Helper()
	in, err := ReadInput(strings.NewReader(jsonInput), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	m, err := mesh.New(in.MeshInput(), in.Overrides())
	if err != nil {
		t.Fatal(err)
	}
	return FromMesh(m)
}

func TestFromMesh(t *testing.T) {
	l := buildLayout(t)

	if len(l.Layers) != 3 || l.NodeCount() != 3 || len(l.Links) != 2 {
		t.Fatalf("layers=%d nodes=%d links=%d", len(l.Layers), l.NodeCount(), len(l.Links))
	}
	if l.Options.ContainerWidth != 800 {
		t.Errorf("options not carried: %+v", l.Options)
	}
	if l.Width <= 0 || l.Height <= 0 {
		t.Errorf("bounds = %v x %v", l.Width, l.Height)
	}

	link := l.Links[0]
	if link.Source != "0:0" || link.Target != "1:1" || link.SourceName != "A" || link.TargetName != "B" {
		t.Errorf("link endpoints = %+v", link)
	}
	if !strings.HasPrefix(link.Path, "M ") || !strings.HasSuffix(link.Path, " Z") {
		t.Errorf("path = %q", link.Path)
	}
	if !strings.HasPrefix(link.Curve, "M ") || link.Stroke <= 0 {
		t.Errorf("curve = %q, stroke = %v", link.Curve, link.Stroke)
	}

	idx := l.NodeIndex()
	src := idx[link.Source]
	if link.X0 != src.X+src.Width {
		t.Errorf("X0 = %v, want %v", link.X0, src.X+src.Width)
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := buildLayout(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error: %v", err)
	}
	back, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error: %v", err)
	}
	if back.NodeCount() != l.NodeCount() || back.Links[1].Path != l.Links[1].Path {
		t.Error("layout changed across the file round trip")
	}
}

func TestUnmarshalLayoutRejectsDanglingLinks(t *testing.T) {
	data := []byte(`{"layers":[{"depth":0,"nodes":[{"id":"0:0","name":"A"}]}],"links":[{"source":"0:0","target":"1:4"}]}`)
	_, err := UnmarshalLayout(data)
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want %s", err, errs.ErrCodeInvalidFormat)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	in, _ := ReadInput(strings.NewReader(jsonInput), FormatJSON)
	m, err := mesh.New(in.MeshInput(), mesh.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalSnapshot(m.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	s, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}

	nodes := m.Nodes()
	i := 0
	for _, layer := range s.Layers {
		for _, n := range layer {
			if n.Count() != nodes[i].Count() {
				t.Errorf("%s: re-derived value %v, want %v", n.Name, n.Count(), nodes[i].Count())
			}
			i++
		}
	}
}
