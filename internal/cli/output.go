package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

// artifactWriteParams describes the artifacts of one input.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes each artifact to <base>.<ext> and returns the
// written paths in format order. With a single format an explicit output
// path is used as is; "-" writes to stdout.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	if len(p.formats) == 1 && p.output != "" {
		data, ok := p.artifacts[p.formats[0]]
		if !ok {
			return nil, fmt.Errorf("missing %s artifact", p.formats[0])
		}
		if err := writeOutput(p.output, data); err != nil {
			return nil, err
		}
		return []string{p.output}, nil
	}

	base := basePath(p.output, p.input)
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return paths, fmt.Errorf("missing %s artifact", format)
		}
		path := base + "." + artifactExt(format)
		if err := writeOutput(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactExt returns the file extension of a format. JSON artifacts get
// their own suffix so they never overwrite JSON input data.
func artifactExt(format string) string {
	if format == pipeline.FormatJSON {
		return "mesh.json"
	}
	return format
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// openOutput opens path for writing; "-" is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
