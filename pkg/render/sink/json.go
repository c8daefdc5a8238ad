package sink

import (
	"encoding/json"

	"github.com/matzehuels/linearmesh/pkg/graph"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style   string
	compact bool
}

// WithJSONStyle records the style name in the JSON output so the layout can
// be re-rendered the same way.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Style string `json:"style,omitempty"`
	graph.Layout
}

// RenderJSON renders the layout as JSON for external tools.
func RenderJSON(l graph.Layout, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{Style: r.style, Layout: l}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
