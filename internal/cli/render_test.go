package cli

import (
	"reflect"
	"testing"

	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty uses config", "", nil},
		{"blank uses config", "  ", nil},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,png,dot", []string{"svg", "png", "dot"}},
		{"spaces and case", " SVG , json ", []string{"svg", "json"}},
		{"trailing comma", "png,", []string{"png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid png", []string{"png"}, false},
		{"valid json", []string{"json"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid all", []string{"svg", "png", "json", "dot"}, false},
		{"pdf unsupported", []string{"pdf"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"ribbon", false},
		{"curve", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			err := pipeline.ValidateStyle(tt.style)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "flows.json", "flows"},
		{"", "data/flows.yaml", "data/flows"},
		{"out.svg", "flows.json", "out"},
		{"out.png", "flows.json", "out"},
		{"out", "flows.json", "out"},
		{"out.txt", "flows.json", "out.txt"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestArtifactExt(t *testing.T) {
	tests := map[string]string{
		"svg":  "svg",
		"png":  "png",
		"dot":  "dot",
		"json": "mesh.json",
	}
	for format, want := range tests {
		if got := artifactExt(format); got != want {
			t.Errorf("artifactExt(%q) = %q, want %q", format, got, want)
		}
	}
}
