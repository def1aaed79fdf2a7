// Package request decodes adapter requests from YAML and turns them into
// adapter definitions.
package request

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/calumari/shim/internal/adapter"
)

// Document is a request file: the adapters to check, in order.
type Document struct {
	Path     string    `yaml:"-"`
	Adapters []Adapter `yaml:"adapters"`
}

// Adapter is one adapter request.
type Adapter struct {
	Name       string    `yaml:"name"`
	Parent     string    `yaml:"parent"`
	Interfaces []string  `yaml:"interfaces,omitempty"`
	Implements []Binding `yaml:"implements,omitempty"`
	Overrides  []Binding `yaml:"overrides,omitempty"`
}

// Binding names the method and the shape of the callable backing it.
// Target is a label for diagnostics; it defaults to the method name.
type Binding struct {
	Method   string `yaml:"method"`
	Target   string `yaml:"target,omitempty"`
	Arity    int    `yaml:"arity"`
	Variadic bool   `yaml:"variadic,omitempty"`
}

func (b Binding) target() adapter.Target {
	label := b.Target
	if label == "" {
		label = b.Method
	}
	return adapter.NewTarget(label, b.Arity, b.Variadic)
}

// Load decodes a request document.
func Load(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("request: parse: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile reads a request document from path.
func LoadFile(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("request: resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	doc.Path = abs
	return doc, nil
}

func (d *Document) validate() error {
	seen := make(map[string]bool)
	for i, a := range d.Adapters {
		if a.Name == "" {
			return fmt.Errorf("request: adapter #%d has no name", i+1)
		}
		if a.Parent == "" {
			return fmt.Errorf("request: adapter %s has no parent", a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("request: duplicate adapter %s", a.Name)
		}
		seen[a.Name] = true
		for _, b := range append(append([]Binding(nil), a.Implements...), a.Overrides...) {
			if b.Method == "" {
				return fmt.Errorf("request: adapter %s has a binding without method", a.Name)
			}
		}
	}
	return nil
}

// Build creates the definitions of every adapter in document order. The
// first declaration error stops the build and names its adapter.
func (d *Document) Build(resolver adapter.Resolver) ([]*adapter.Definition, error) {
	defs := make([]*adapter.Definition, 0, len(d.Adapters))
	for _, a := range d.Adapters {
		def, err := a.Build(resolver)
		if err != nil {
			return nil, fmt.Errorf("adapter %s: %w", a.Name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Build creates the definition of a single adapter against resolver.
// Declaration errors (arity and wildcard shape) are returned with the
// binding that caused them.
func (a Adapter) Build(resolver adapter.Resolver) (*adapter.Definition, error) {
	def := adapter.New(resolver, a.Name, a.Parent)
	for _, iface := range a.Interfaces {
		if err := def.AddInterface(iface); err != nil {
			return nil, err
		}
	}
	for i, b := range a.Implements {
		if err := def.Implement(b.Method, b.target()); err != nil {
			return nil, fmt.Errorf("implements[%d] %s: %w", i, b.Method, err)
		}
	}
	for i, b := range a.Overrides {
		if err := def.Override(b.Method, b.target()); err != nil {
			return nil, fmt.Errorf("overrides[%d] %s: %w", i, b.Method, err)
		}
	}
	return def, nil
}
