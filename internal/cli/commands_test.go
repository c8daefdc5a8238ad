package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/mesh"
)

const flowsJSON = `{
  "points": [{"name": "A"}, {"name": "B"}, {"name": "C"}],
  "links": [{"source": 0, "target": 1, "value": 10, "links": [{"source": 1, "target": 2, "value": 4}]}]
}`

const flowsYAML = `
points:
  - name: A
  - name: B
links:
  - source: 0
    target: 1
    value: 10
`

// isolate keeps commands away from the user's config and cache.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flows.json", flowsJSON)
	snapshot := filepath.Join(dir, "flows.snapshot.json")

	if _, err := execute(t, "layout", input, "--no-cache", "--snapshot", snapshot, "--curvature", "0.25"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	l, err := graph.ReadLayoutFile(filepath.Join(dir, "flows.layout.json"))
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if len(l.Layers) != 3 || l.NodeCount() != 3 {
		t.Errorf("layout has %d layers and %d nodes, want 3 and 3", len(l.Layers), l.NodeCount())
	}
	if l.Options.Curvature != 0.25 {
		t.Errorf("curvature = %v, want the flag value 0.25", l.Options.Curvature)
	}

	data, err := os.ReadFile(snapshot)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap mesh.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Layers) != 3 {
		t.Errorf("snapshot has %d layers, want 3", len(snap.Layers))
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flows.json", flowsJSON)
	bad := writeFile(t, dir, "bad.json", `{"points":[{"name":"A"}],"links":[{"source":0,"target":3,"value":1}]}`)

	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"invalid curvature", []string{"layout", input, "--no-cache", "--curvature", "1.5"}, errs.ErrCodeInvalidOptions},
		{"invalid order", []string{"layout", input, "--no-cache", "--order", "random"}, errs.ErrCodeInvalidOptions},
		{"bad reference", []string{"layout", bad, "--no-cache"}, errs.ErrCodeInvalidReference},
		{"missing file", []string{"layout", filepath.Join(dir, "nope.json"), "--no-cache"}, errs.ErrCodeFileNotFound},
		{"unknown extension", []string{"layout", filepath.Join(dir, "flows.csv"), "--no-cache"}, errs.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", flowsJSON)
	b := writeFile(t, dir, "b.yaml", flowsYAML)

	if _, err := execute(t, "render", a, b, "-f", "svg,dot,json", "--no-cache", "-j", "2"); err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, name := range []string{"a.svg", "a.dot", "a.mesh.json", "b.svg", "b.dot", "b.mesh.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	svg, err := os.ReadFile(filepath.Join(dir, "a.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) {
		t.Errorf("a.svg does not start with <svg: %.40q", svg)
	}
	data, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != flowsJSON {
		t.Error("render must not overwrite its JSON input")
	}
}

func TestRenderCommandOutput(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flows.json", flowsJSON)
	out := filepath.Join(dir, "diagram.svg")

	if _, err := execute(t, "render", input, "-o", out, "--no-cache", "--style", "curve", "--title", "Flows"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<title>Flows</title>") {
		t.Error("title missing from SVG")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", flowsJSON)
	b := writeFile(t, dir, "b.json", flowsJSON)

	tests := []struct {
		name string
		args []string
	}{
		{"output with several inputs", []string{"render", a, b, "-o", "out.svg", "--no-cache"}},
		{"unknown format", []string{"render", a, "-f", "pdf", "--no-cache"}},
		{"unknown style", []string{"render", a, "--style", "sketch", "--no-cache"}},
		{"no inputs", []string{"render"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestVisualizeCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flows.json", flowsJSON)

	if _, err := execute(t, "layout", input, "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if _, err := execute(t, "visualize", filepath.Join(dir, "flows.layout.json"), "-f", "svg,png", "--no-cache"); err != nil {
		t.Fatalf("visualize: %v", err)
	}

	for _, name := range []string{"flows.svg", "flows.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestInspectPlain(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flows.yaml", flowsYAML)

	if _, err := execute(t, "inspect", input, "--plain", "--no-cache"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
}

func TestConfigAndCacheCommands(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")

	const envVar = "LINEARMESH_TEST_CACHE_DIR"
	t.Cleanup(func() { os.Unsetenv(envVar) })
	env := writeFile(t, dir, "test.env", envVar+"="+cacheDir+"\n")
	cfg := writeFile(t, dir, "linearmesh.yaml", `
mesh:
  curvature: 0.75
cache:
  backend: file
  dir: ${`+envVar+`}
`)
	input := writeFile(t, dir, "flows.json", flowsJSON)

	out, err := execute(t, "--config", cfg, "--env-file", env, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), cacheDir)
	}

	if _, err := execute(t, "--config", cfg, "--env-file", env, "layout", input); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l, err := graph.ReadLayoutFile(filepath.Join(dir, "flows.layout.json"))
	if err != nil {
		t.Fatal(err)
	}
	if l.Options.Curvature != 0.75 {
		t.Errorf("curvature = %v, want 0.75 from the config file", l.Options.Curvature)
	}

	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache dir %s is empty after layout (err %v)", cacheDir, err)
	}

	if _, err := execute(t, "--config", cfg, "--env-file", env, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, err = os.ReadDir(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries after clear", len(entries))
	}
}

func TestConfigFileInvalid(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := writeFile(t, dir, "linearmesh.yaml", "mesh:\n  curvature: 3\n")

	if _, err := execute(t, "--config", cfg, "cache", "path"); err == nil {
		t.Error("expected a validation error for the config file")
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "linearmesh") {
		t.Error("bash completion does not mention the command name")
	}
}
