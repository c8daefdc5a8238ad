package mesh

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
)

// Order selects how nodes are stacked within a layer.
type Order string

const (
	// OrderLinks stacks nodes in the order links first reference them.
	OrderLinks Order = "links"
	// OrderPoints stacks nodes by catalogue index.
	OrderPoints Order = "points"
)

// Default option values.
const (
	DefaultMinNodeSpacingX = 50
	DefaultNodeSpacingY    = 50
	DefaultNodePadding     = 10
	DefaultMinNodeWidth    = 110
	DefaultMaxNodeWidth    = 200
	DefaultMaxNodeHeight   = 250
	DefaultMinNodeHeight   = 20
	DefaultContainerWidth  = 1000
	DefaultCurvature       = 0.35
)

// spacingStep is the decrement used while fitting NodeSpacingX.
const spacingStep = 10

// Options is the fully populated mesh configuration. NodeWidth and
// NodeSpacingX are overwritten by [Mesh.RecalculateNodeSizes].
type Options struct {
	NodeWidth       float64 `json:"node_width"`
	MinNodeWidth    float64 `json:"min_node_width"`
	MaxNodeWidth    float64 `json:"max_node_width"`
	MinNodeHeight   float64 `json:"min_node_height"`
	MaxNodeHeight   float64 `json:"max_node_height"`
	NodePadding     float64 `json:"node_padding"`
	NodeSpacingX    float64 `json:"node_spacing_x"`
	MinNodeSpacingX float64 `json:"min_node_spacing_x"`
	NodeSpacingY    float64 `json:"node_spacing_y"`
	ContainerWidth  float64 `json:"container_width"`
	Curvature       float64 `json:"curvature"`
	NodeOrder       Order   `json:"node_order"`

	// FitWidth derives NodeWidth from ContainerWidth and shrinks NodeSpacingX
	// until the row fits. When false the configured NodeWidth is kept.
	FitWidth bool `json:"fit_width"`
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		MinNodeWidth:    DefaultMinNodeWidth,
		MaxNodeWidth:    DefaultMaxNodeWidth,
		MinNodeHeight:   DefaultMinNodeHeight,
		MaxNodeHeight:   DefaultMaxNodeHeight,
		NodePadding:     DefaultNodePadding,
		MinNodeSpacingX: DefaultMinNodeSpacingX,
		NodeSpacingY:    DefaultNodeSpacingY,
		ContainerWidth:  DefaultContainerWidth,
		Curvature:       DefaultCurvature,
		NodeOrder:       OrderLinks,
		FitWidth:        true,
	}
}

// Overrides holds optional option values. Nil fields keep the value they are
// merged over.
type Overrides struct {
	NodeWidth       *float64 `json:"node_width,omitempty" yaml:"node_width,omitempty" toml:"node_width,omitempty"`
	MinNodeWidth    *float64 `json:"min_node_width,omitempty" yaml:"min_node_width,omitempty" toml:"min_node_width,omitempty"`
	MaxNodeWidth    *float64 `json:"max_node_width,omitempty" yaml:"max_node_width,omitempty" toml:"max_node_width,omitempty"`
	MinNodeHeight   *float64 `json:"min_node_height,omitempty" yaml:"min_node_height,omitempty" toml:"min_node_height,omitempty"`
	MaxNodeHeight   *float64 `json:"max_node_height,omitempty" yaml:"max_node_height,omitempty" toml:"max_node_height,omitempty"`
	NodePadding     *float64 `json:"node_padding,omitempty" yaml:"node_padding,omitempty" toml:"node_padding,omitempty"`
	NodeSpacingX    *float64 `json:"node_spacing_x,omitempty" yaml:"node_spacing_x,omitempty" toml:"node_spacing_x,omitempty"`
	MinNodeSpacingX *float64 `json:"min_node_spacing_x,omitempty" yaml:"min_node_spacing_x,omitempty" toml:"min_node_spacing_x,omitempty"`
	NodeSpacingY    *float64 `json:"node_spacing_y,omitempty" yaml:"node_spacing_y,omitempty" toml:"node_spacing_y,omitempty"`
	ContainerWidth  *float64 `json:"container_width,omitempty" yaml:"container_width,omitempty" toml:"container_width,omitempty"`
	Curvature       *float64 `json:"curvature,omitempty" yaml:"curvature,omitempty" toml:"curvature,omitempty"`
	NodeOrder       *Order   `json:"node_order,omitempty" yaml:"node_order,omitempty" toml:"node_order,omitempty"`
	FitWidth        *bool    `json:"fit_width,omitempty" yaml:"fit_width,omitempty" toml:"fit_width,omitempty"`
}

// Merge returns a copy of o with every non-nil override applied.
func (o Options) Merge(ov Overrides) Options {
	setFloat(&o.NodeWidth, ov.NodeWidth)
	setFloat(&o.MinNodeWidth, ov.MinNodeWidth)
	setFloat(&o.MaxNodeWidth, ov.MaxNodeWidth)
	setFloat(&o.MinNodeHeight, ov.MinNodeHeight)
	setFloat(&o.MaxNodeHeight, ov.MaxNodeHeight)
	setFloat(&o.NodePadding, ov.NodePadding)
	setFloat(&o.NodeSpacingX, ov.NodeSpacingX)
	setFloat(&o.MinNodeSpacingX, ov.MinNodeSpacingX)
	setFloat(&o.NodeSpacingY, ov.NodeSpacingY)
	setFloat(&o.ContainerWidth, ov.ContainerWidth)
	setFloat(&o.Curvature, ov.Curvature)
	if ov.NodeOrder != nil {
		o.NodeOrder = *ov.NodeOrder
	}
	if ov.FitWidth != nil {
		o.FitWidth = *ov.FitWidth
	}
	return o
}

// Merge layers next over ov; fields set in next win.
func (ov Overrides) Merge(next Overrides) Overrides {
	out := ov
	pick(&out.NodeWidth, next.NodeWidth)
	pick(&out.MinNodeWidth, next.MinNodeWidth)
	pick(&out.MaxNodeWidth, next.MaxNodeWidth)
	pick(&out.MinNodeHeight, next.MinNodeHeight)
	pick(&out.MaxNodeHeight, next.MaxNodeHeight)
	pick(&out.NodePadding, next.NodePadding)
	pick(&out.NodeSpacingX, next.NodeSpacingX)
	pick(&out.MinNodeSpacingX, next.MinNodeSpacingX)
	pick(&out.NodeSpacingY, next.NodeSpacingY)
	pick(&out.ContainerWidth, next.ContainerWidth)
	pick(&out.Curvature, next.Curvature)
	pick(&out.NodeOrder, next.NodeOrder)
	pick(&out.FitWidth, next.FitWidth)
	return out
}

// IsZero reports whether no override is set.
func (ov Overrides) IsZero() bool {
	return ov == Overrides{}
}

// Validate checks that the options describe a drawable layout.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.NodeWidth, validation.Min(0.0)),
		validation.Field(&o.MinNodeWidth, validation.Min(0.0)),
		validation.Field(&o.MaxNodeWidth, validation.Min(o.MinNodeWidth)),
		validation.Field(&o.MinNodeHeight, validation.Min(0.0)),
		validation.Field(&o.MaxNodeHeight, validation.Min(0.0)),
		validation.Field(&o.NodePadding, validation.Min(0.0)),
		validation.Field(&o.NodeSpacingX, validation.Min(0.0)),
		validation.Field(&o.MinNodeSpacingX, validation.Min(0.0)),
		validation.Field(&o.NodeSpacingY, validation.Min(0.0)),
		validation.Field(&o.ContainerWidth, validation.Min(0.0)),
		validation.Field(&o.Curvature, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&o.NodeOrder, validation.In(OrderLinks, OrderPoints)),
	)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "invalid mesh options")
	}
	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func pick[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}
