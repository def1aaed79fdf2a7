package check

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/calumari/shim/internal/adapter"
)

// Report is the outcome of one Run.
type Report struct {
	Request string   `json:"request" yaml:"request"`
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Version string   `json:"version,omitempty" yaml:"version,omitempty"`
	Results []Result `json:"results" yaml:"results"`
}

// Result is the outcome for a single adapter. Kind and Error are set only
// when OK is false.
type Result struct {
	Adapter         string         `json:"adapter" yaml:"adapter"`
	Parent          string         `json:"parent" yaml:"parent"`
	Interfaces      []string       `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	OK              bool           `json:"ok" yaml:"ok"`
	Kind            string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Error           string         `json:"error,omitempty" yaml:"error,omitempty"`
	Implementations []BindingView  `json:"implementations,omitempty" yaml:"implementations,omitempty"`
	Overrides       []BindingView  `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	Coverage        []CoverageView `json:"coverage,omitempty" yaml:"coverage,omitempty"`
}

type BindingView struct {
	Method string        `json:"method" yaml:"method"`
	Target string        `json:"target" yaml:"target"`
	Shape  adapter.Shape `json:"shape" yaml:"shape"`
}

type CoverageView struct {
	Method  string      `json:"method" yaml:"method"`
	Via     adapter.Via `json:"via" yaml:"via"`
	Binding string      `json:"binding" yaml:"binding"`
}

// Failed counts the adapters that did not validate.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK {
			n++
		}
	}
	return n
}

func (r Result) failed(err error) Result {
	r.Error = err.Error()
	var p *adapter.Problem
	if errors.As(err, &p) {
		r.Kind = p.Kind.String()
	}
	return r
}

func resultOf(s *adapter.Snapshot) Result {
	res := Result{Adapter: s.Name(), Parent: s.Parent(), Interfaces: s.Interfaces(), OK: true}
	res.Implementations = bindingViews(s.Implementations())
	res.Overrides = bindingViews(s.Overrides())
	for _, c := range s.Coverage() {
		res.Coverage = append(res.Coverage, CoverageView{Method: c.Method.String(), Via: c.Via, Binding: c.Binding})
	}
	return res
}

func bindingViews(bs []adapter.Binding) []BindingView {
	out := make([]BindingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, BindingView{Method: b.Method, Target: b.Target.Label, Shape: b.Target.Shape})
	}
	return out
}

// Render writes the report in the given format.
func (r *Report) Render(w io.Writer, format string) error {
	switch format {
	case "", FormatText:
		if err := ensureTemplates(); err != nil {
			return err
		}
		var out bytes.Buffer
		if err := reportTmpl.ExecuteTemplate(&out, tmplReport, r); err != nil {
			return err
		}
		_, err := w.Write(out.Bytes())
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("report: marshal yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return fmt.Errorf("unknown format %q", format)
}
