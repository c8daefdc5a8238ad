package api

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/linearmesh/pkg/graph"
	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/pipeline"
)

// HeaderCache reports whether a response was served from the cache.
const HeaderCache = "X-Cache"

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json; charset=utf-8",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

var inputMediaTypes = map[string]string{
	"application/json":   graph.FormatJSON,
	"text/json":          graph.FormatJSON,
	"application/yaml":   graph.FormatYAML,
	"application/x-yaml": graph.FormatYAML,
	"text/yaml":          graph.FormatYAML,
	"application/toml":   graph.FormatTOML,
	"text/toml":          graph.FormatTOML,
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// layout handles POST /v1/layout.
func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	in, opts, err := s.load(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBody(w, contentTypes[pipeline.FormatJSON], cacheStatus(hit), data)
}

// render handles POST /v1/render?format=svg|png|json|dot.
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	in, opts, err := s.load(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := renderOptions(r.URL.Query(), &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(opts.Formats) == 0 && len(s.cfg.Render.Formats) > 0 {
		opts.Formats = s.cfg.Render.Formats[:1]
	}
	s.cfg.Apply(&opts)
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, layoutHit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := opts.Formats[0]
	writeBody(w, contentTypes[format], cacheStatus(layoutHit && renderHit), artifacts[format])
}

// snapshot handles POST /v1/snapshot. Snapshots are diagnostic and never
// cached.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	in, opts, err := s.load(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	snap, err := pipeline.GenerateSnapshot(in, opts.EffectiveOverrides(in))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := graph.MarshalSnapshot(snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBody(w, contentTypes[pipeline.FormatJSON], "", data)
}

// load reads and validates the flow document in the request body and
// returns it with the effective pipeline options.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (graph.Input, pipeline.Options, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return graph.Input{}, pipeline.Options{}, err
	}
	if len(data) == 0 {
		return graph.Input{}, pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "request body is empty")
	}

	format, err := inputFormat(r)
	if err != nil {
		return graph.Input{}, pipeline.Options{}, err
	}

	q := r.URL.Query()
	refresh, err := boolParam(q, "refresh")
	if err != nil {
		return graph.Input{}, pipeline.Options{}, err
	}

	opts := pipeline.Options{
		Data:        data,
		InputFormat: format,
		Refresh:     refresh,
		Logger:      s.logger.With("request_id", RequestIDFromContext(r.Context())),
	}
	in, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		return graph.Input{}, pipeline.Options{}, err
	}

	// Options in the body rank above the config file.
	opts.Overrides = s.cfg.Mesh.Merge(in.Overrides())
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Input{}, pipeline.Options{}, err
	}
	return in, opts, nil
}

// inputFormat picks the decoder from the "input" query parameter or the
// Content-Type header. A missing header means JSON.
func inputFormat(r *http.Request) (string, error) {
	if f := r.URL.Query().Get("input"); f != "" {
		if _, err := graph.FormatFromPath("body." + f); err != nil {
			return "", err
		}
		return f, nil
	}

	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return graph.FormatJSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidFormat, err, "malformed Content-Type")
	}
	if f, ok := inputMediaTypes[mt]; ok {
		return f, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported Content-Type %q", mt)
}

// renderOptions reads render settings from the query string.
func renderOptions(q url.Values, opts *pipeline.Options) error {
	if f := q.Get("format"); f != "" {
		if err := pipeline.ValidateFormat(f); err != nil {
			return err
		}
		opts.Formats = []string{f}
	}
	opts.Style = q.Get("style")
	opts.Background = q.Get("background")
	opts.Title = q.Get("title")

	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidOptions, err, "scale %q", v)
		}
		opts.Scale = scale
	}

	var err error
	if opts.Interactive, err = boolParam(q, "interactive"); err != nil {
		return err
	}
	if opts.Detailed, err = boolParam(q, "detailed"); err != nil {
		return err
	}
	return nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.Wrap(errs.ErrCodeInvalidOptions, err, "%s %q", name, v)
	}
	return b, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeBody(w http.ResponseWriter, contentType, cache string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if cache != "" {
		w.Header().Set(HeaderCache, cache)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
