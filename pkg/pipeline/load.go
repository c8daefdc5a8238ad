package pipeline

import (
	"bytes"
	"context"

	"github.com/matzehuels/linearmesh/pkg/cache"
	"github.com/matzehuels/linearmesh/pkg/graph"
)

// Load reads and validates flow data. Inline data is decoded with
// InputFormat (JSON when empty); a source file is decoded by extension
// unless InputFormat says otherwise.
func Load(ctx context.Context, opts Options) (graph.Input, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return graph.Input{}, err
	}

	var in graph.Input
	var err error
	switch {
	case len(opts.Data) > 0:
		in, err = graph.ReadInput(bytes.NewReader(opts.Data), opts.InputFormat)
	case opts.InputFormat != "":
		in, err = graph.ReadInputFileAs(opts.Source, opts.InputFormat)
	default:
		in, err = graph.ReadInputFile(opts.Source)
	}
	if err != nil {
		return graph.Input{}, err
	}

	if err := in.Validate(); err != nil {
		return graph.Input{}, err
	}
	return in, nil
}

// InputHash returns the content hash of the canonical JSON encoding of in,
// so the same flow data hashes equally whatever format it was read from.
func InputHash(in graph.Input) (string, error) {
	data, err := graph.MarshalInput(in, graph.FormatJSON)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
