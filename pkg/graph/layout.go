package graph

import (
	"encoding/json"
	"fmt"
	"os"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/mesh"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every link must reference nodes present in the layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal layout")
	}

	idx := l.NodeIndex()
	for i, link := range l.Links {
		if _, ok := idx[link.Source]; !ok {
			return Layout{}, errs.New(errs.ErrCodeInvalidFormat, "link %d: unknown source node %q", i, link.Source)
		}
		if _, ok := idx[link.Target]; !ok {
			return Layout{}, errs.New(errs.ErrCodeInvalidFormat, "link %d: unknown target node %q", i, link.Target)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot serializes a mesh snapshot to pretty-printed JSON bytes.
func MarshalSnapshot(s mesh.Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// UnmarshalSnapshot deserializes JSON bytes into a mesh snapshot.
func UnmarshalSnapshot(data []byte) (mesh.Snapshot, error) {
	var s mesh.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return mesh.Snapshot{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal snapshot")
	}
	return s, nil
}

// WriteSnapshotFile writes a mesh snapshot to a JSON file.
func WriteSnapshotFile(s mesh.Snapshot, path string) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
