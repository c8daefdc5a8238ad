package mesh

// Point is a named flow endpoint. Index is its position in the input
// catalogue and is the key used by every [Layer] to store the point's node.
type Point struct {
	Name  string
	Index int
}

// PointSpec is one catalogue entry of an [Input].
type PointSpec struct {
	Name string
}

// LinkSpec is one link descriptor of an [Input]. Source and Target are point
// indices. Nested Links continue from Target one layer deeper. A non-nil
// empty Links still adds that deeper layer; nil adds nothing.
type LinkSpec struct {
	Source int
	Target int
	Value  float64
	Links  []LinkSpec
}

// Input is the raw data a [Mesh] is expanded from.
type Input struct {
	Points []PointSpec
	Links  []LinkSpec
}
