package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/linearmesh/pkg/mesh"
)

// meshFlags binds the mesh option flags shared by layout and render.
// Only flags set on the command line become overrides, so values from
// the input document and the config file survive otherwise.
type meshFlags struct {
	nodeWidth      float64
	minNodeWidth   float64
	maxNodeWidth   float64
	minNodeHeight  float64
	maxNodeHeight  float64
	nodePadding    float64
	minSpacingX    float64
	spacingY       float64
	containerWidth float64
	curvature      float64
	order          string
	fitWidth       bool
}

func (f *meshFlags) register(cmd *cobra.Command) {
	d := mesh.DefaultOptions()
	fs := cmd.Flags()
	fs.Float64Var(&f.containerWidth, "width", d.ContainerWidth, "container width the layers are fitted into")
	fs.Float64Var(&f.nodeWidth, "node-width", d.NodeWidth, "fixed node width (with --fit-width=false)")
	fs.Float64Var(&f.minNodeWidth, "min-node-width", d.MinNodeWidth, "minimum node width")
	fs.Float64Var(&f.maxNodeWidth, "max-node-width", d.MaxNodeWidth, "maximum node width")
	fs.Float64Var(&f.minNodeHeight, "min-node-height", d.MinNodeHeight, "height of the smallest node")
	fs.Float64Var(&f.maxNodeHeight, "max-node-height", d.MaxNodeHeight, "height of the largest node")
	fs.Float64Var(&f.nodePadding, "node-padding", d.NodePadding, "vertical gap between links at a node")
	fs.Float64Var(&f.minSpacingX, "min-spacing-x", d.MinNodeSpacingX, "minimum horizontal gap between layers")
	fs.Float64Var(&f.spacingY, "spacing-y", d.NodeSpacingY, "vertical gap between nodes")
	fs.Float64Var(&f.curvature, "curvature", d.Curvature, "ribbon curvature in [0,1]")
	fs.StringVar(&f.order, "order", string(d.NodeOrder), "node order within a layer: links, points")
	fs.BoolVar(&f.fitWidth, "fit-width", d.FitWidth, "derive node width and spacing from --width")
}

// overrides returns the options explicitly set on cmd.
func (f *meshFlags) overrides(cmd *cobra.Command) mesh.Overrides {
	fs := cmd.Flags()
	float := func(name string, v float64) *float64 {
		if !fs.Changed(name) {
			return nil
		}
		return &v
	}

	ov := mesh.Overrides{
		ContainerWidth:  float("width", f.containerWidth),
		NodeWidth:       float("node-width", f.nodeWidth),
		MinNodeWidth:    float("min-node-width", f.minNodeWidth),
		MaxNodeWidth:    float("max-node-width", f.maxNodeWidth),
		MinNodeHeight:   float("min-node-height", f.minNodeHeight),
		MaxNodeHeight:   float("max-node-height", f.maxNodeHeight),
		NodePadding:     float("node-padding", f.nodePadding),
		MinNodeSpacingX: float("min-spacing-x", f.minSpacingX),
		NodeSpacingY:    float("spacing-y", f.spacingY),
		Curvature:       float("curvature", f.curvature),
	}
	if fs.Changed("order") {
		o := mesh.Order(f.order)
		ov.NodeOrder = &o
	}
	if fs.Changed("fit-width") {
		b := f.fitWidth
		ov.FitWidth = &b
	}
	return ov
}
