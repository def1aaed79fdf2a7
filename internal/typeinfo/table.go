// Package typeinfo provides type resolvers for adapter definitions: a
// precomputed metadata table, Go packages loaded from source, and a chain
// that combines them.
package typeinfo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/calumari/shim/internal/adapter"
)

var (
	ErrTypeNotFound      = errors.New("type not found")
	ErrUnsupportedFormat = errors.New("unsupported table format")
	ErrForeignType       = errors.New("type descriptor from another resolver")
)

// FormatVersion is the table format written by this version.
const FormatVersion = "1.0.0"

var supportedFormats = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
)

type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Package   Visibility = "package"
	Private   Visibility = "private"
)

// TypeSpec describes one type of the table.
type TypeSpec struct {
	Name       string       `yaml:"name"`
	Kind       Kind         `yaml:"kind"`
	Super      string       `yaml:"super,omitempty"`
	Interfaces []string     `yaml:"interfaces,omitempty"`
	Methods    []MethodSpec `yaml:"methods,omitempty"`
}

// MethodSpec describes a declared method. Abstract defaults to true on
// interfaces and false on classes.
type MethodSpec struct {
	Name       string     `yaml:"name"`
	Params     int        `yaml:"params"`
	Variadic   bool       `yaml:"variadic,omitempty"`
	Abstract   *bool      `yaml:"abstract,omitempty"`
	Visibility Visibility `yaml:"visibility,omitempty"`
}

func (m MethodSpec) abstractIn(kind Kind) bool {
	if m.Abstract != nil {
		return *m.Abstract
	}
	return kind == KindInterface
}

func (m MethodSpec) visibleIn(kind Kind) bool {
	if kind == KindInterface {
		return true
	}
	switch m.Visibility {
	case "", Public, Protected:
		return true
	}
	return false
}

type tableDoc struct {
	Format string     `yaml:"format"`
	Types  []TypeSpec `yaml:"types"`
}

// Table is an in-memory type registry. It is safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	types map[string]*TypeSpec
}

type tableType struct {
	spec *TypeSpec
}

func (t tableType) Name() string { return t.spec.Name }

func NewTable() *Table {
	return &Table{types: make(map[string]*TypeSpec)}
}

// LoadTable decodes a YAML table document.
func LoadTable(r io.Reader) (*Table, error) {
	var doc tableDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("table: parse: %w", err)
	}
	if doc.Format == "" {
		doc.Format = FormatVersion
	}
	v, err := semver.NewVersion(doc.Format)
	if err != nil {
		return nil, fmt.Errorf("table: format %q: %w", doc.Format, err)
	}
	if !supportedFormats.Check(v) {
		return nil, fmt.Errorf("%w: %s (want %s)", ErrUnsupportedFormat, v, supportedFormats)
	}
	t := NewTable()
	for _, spec := range doc.Types {
		if err := t.Add(spec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadTableFile reads a table from path.
func LoadTableFile(path string) (*Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("table: resolve %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := LoadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	return t, nil
}

// Add registers a type. Supertypes need not be registered yet; they are
// looked up when methods are listed.
func (t *Table) Add(spec TypeSpec) error {
	if spec.Name == "" {
		return errors.New("table: type without name")
	}
	if spec.Kind == "" {
		spec.Kind = KindClass
	}
	if spec.Kind != KindClass && spec.Kind != KindInterface {
		return fmt.Errorf("table: type %s: unknown kind %q", spec.Name, spec.Kind)
	}
	if spec.Kind == KindInterface && spec.Super != "" {
		return fmt.Errorf("table: interface %s cannot have a super class", spec.Name)
	}
	for _, m := range spec.Methods {
		if m.Name == "" || m.Params < 0 {
			return fmt.Errorf("table: type %s: invalid method %+v", spec.Name, m)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.types[spec.Name]; ok {
		return fmt.Errorf("table: duplicate type %s", spec.Name)
	}
	t.types[spec.Name] = &spec
	return nil
}

// Names lists the registered types in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.types))
	for n := range t.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Resolve(name string) (adapter.Type, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	spec, ok := t.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	}
	return tableType{spec: spec}, nil
}

// AbstractMethods walks the class chain first, then every interface the
// chain implements. The nearest declaration of a name decides whether it
// is abstract, so a concrete class method hides an abstract one above it.
func (t *Table) AbstractMethods(typ adapter.Type) ([]adapter.Method, error) {
	tt, ok := typ.(tableType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignType, typ.Name())
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, err := t.hierarchy(tt.spec)
	if err != nil {
		return nil, err
	}
	var out []adapter.Method
	declared := make(map[string]bool)
	for _, spec := range h {
		for _, m := range spec.Methods {
			if declared[m.Name] {
				continue
			}
			declared[m.Name] = true
			if m.abstractIn(spec.Kind) {
				out = append(out, adapter.Method{Name: m.Name, Params: m.Params, Variadic: m.Variadic, Owner: spec.Name})
			}
		}
	}
	return out, nil
}

// VisibleMethods lists public and protected methods along the hierarchy.
func (t *Table) VisibleMethods(typ adapter.Type) ([]string, error) {
	tt, ok := typ.(tableType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignType, typ.Name())
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, err := t.hierarchy(tt.spec)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	for _, spec := range h {
		for _, m := range spec.Methods {
			if seen[m.Name] || !m.visibleIn(spec.Kind) {
				continue
			}
			seen[m.Name] = true
			out = append(out, m.Name)
		}
	}
	return out, nil
}

// hierarchy linearizes spec: itself, its super classes nearest first, then
// the interfaces of that chain depth first. Callers hold t.mu.
func (t *Table) hierarchy(spec *TypeSpec) ([]*TypeSpec, error) {
	var chain []*TypeSpec
	visited := make(map[string]bool)
	for cur := spec; cur != nil; {
		if visited[cur.Name] {
			return nil, fmt.Errorf("table: inheritance cycle at %s", cur.Name)
		}
		visited[cur.Name] = true
		chain = append(chain, cur)
		if cur.Super == "" {
			break
		}
		next, ok := t.types[cur.Super]
		if !ok {
			return nil, fmt.Errorf("%w: %s (super class of %s)", ErrTypeNotFound, cur.Super, cur.Name)
		}
		cur = next
	}
	out := append([]*TypeSpec(nil), chain...)
	var visit func(owner *TypeSpec, names []string) error
	visit = func(owner *TypeSpec, names []string) error {
		for _, n := range names {
			if visited[n] {
				continue
			}
			iface, ok := t.types[n]
			if !ok {
				return fmt.Errorf("%w: %s (interface of %s)", ErrTypeNotFound, n, owner.Name)
			}
			visited[n] = true
			out = append(out, iface)
			if err := visit(iface, iface.Interfaces); err != nil {
				return err
			}
		}
		return nil
	}
	for _, c := range chain {
		if err := visit(c, c.Interfaces); err != nil {
			return nil, err
		}
	}
	return out, nil
}
