// Package adapter checks adapter definitions: a base type, a set of
// interfaces and the callables that back their methods. A definition is
// built with AddInterface, Implement and Override, then checked once by
// Validate, which yields an immutable Snapshot for the code generator.
package adapter

import (
	"sort"
	"sync/atomic"
)

const (
	stateIdle int32 = iota
	stateBusy
	stateFinal
)

// Definition accumulates an adapter request. It is owned by a single
// goroutine until Validate succeeds; overlapping calls fail with
// ErrConcurrentUse and calls after a successful Validate fail with
// ErrFinalized.
type Definition struct {
	resolver Resolver
	name     string
	parent   string

	interfaces      map[string]struct{}
	implementations bindings
	overrides       bindings

	state atomic.Int32
}

// New starts a definition for an adapter called name extending parent.
// Types are only resolved by Validate.
func New(resolver Resolver, name, parent string) *Definition {
	return &Definition{
		resolver:        resolver,
		name:            name,
		parent:          parent,
		interfaces:      make(map[string]struct{}),
		implementations: newBindings(),
		overrides:       newBindings(),
	}
}

// Name is the adapter type to generate.
func (d *Definition) Name() string { return d.name }

// Parent is the base type the adapter extends.
func (d *Definition) Parent() string { return d.parent }

// Interfaces returns the requested interfaces in sorted order.
func (d *Definition) Interfaces() []string {
	if err := d.acquireRead(); err != nil {
		panic(err)
	}
	defer d.releaseRead()
	return d.sortedInterfaces()
}

// AddInterface adds an interface to implement. Adding the same name twice
// is a no-op.
func (d *Definition) AddInterface(name string) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release(false)
	d.interfaces[name] = struct{}{}
	return nil
}

// Implement binds target as the implementation of method name. The target
// takes the receiver as its first parameter. Re-binding a name replaces the
// previous target.
func (d *Definition) Implement(name string, target Target) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release(false)
	if target.Shape.Arity < 1 {
		p := problemf(KindArityViolation, d.name,
			"an implementation target must take at least 1 argument (the receiver): %s", target)
		p.Method, p.Target = name, target
		return p
	}
	if name == Wildcard && target.Shape != wildcardImplementationShape {
		p := problemf(KindWildcardShapeViolation, d.name,
			"a %s implementation must take (receiver, args...): %s", Wildcard, target)
		p.Method, p.Target, p.Expected = name, target, wildcardImplementationShape
		return p
	}
	d.implementations.set(name, target)
	return nil
}

// Override binds target as an override of the parent's method name. The
// target takes the original method ("super") first, then the receiver.
func (d *Definition) Override(name string, target Target) error {
	if err := d.acquire(); err != nil {
		return err
	}
	defer d.release(false)
	if target.Shape.Arity < 2 {
		p := problemf(KindArityViolation, d.name,
			"an override target must take at least 2 arguments (super, then the receiver): %s", target)
		p.Method, p.Target = name, target
		return p
	}
	if name == Wildcard && target.Shape != wildcardOverrideShape {
		p := problemf(KindWildcardShapeViolation, d.name,
			"a %s override must take (super, receiver, args...): %s", Wildcard, target)
		p.Method, p.Target, p.Expected = name, target, wildcardOverrideShape
		return p
	}
	d.overrides.set(name, target)
	return nil
}

// HasWildcardImplementation reports whether a catch-all implementation is
// bound. It panics with ErrConcurrentUse when called during another call.
func (d *Definition) HasWildcardImplementation() bool {
	if err := d.acquireRead(); err != nil {
		panic(err)
	}
	defer d.releaseRead()
	return d.implementations.has(Wildcard)
}

// HasWildcardOverride reports whether a catch-all override is bound. It
// panics with ErrConcurrentUse when called during another call.
func (d *Definition) HasWildcardOverride() bool {
	if err := d.acquireRead(); err != nil {
		panic(err)
	}
	defer d.releaseRead()
	return d.overrides.has(Wildcard)
}

// Validate checks the definition against its resolver and returns the
// first violation found. On success the definition is frozen and the
// returned Snapshot is the only view the code generator should use. A
// failed definition may be corrected and validated again.
func (d *Definition) Validate() (*Snapshot, error) {
	if err := d.acquire(); err != nil {
		return nil, err
	}
	final := false
	defer func() { d.release(final) }()
	v := &validator{def: d, types: make(map[string]Type)}
	coverage, err := v.run()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		name:            d.name,
		parent:          d.parent,
		interfaces:      d.sortedInterfaces(),
		implementations: d.implementations.list(),
		overrides:       d.overrides.list(),
		coverage:        coverage,
	}
	final = true
	return snap, nil
}

func (d *Definition) sortedInterfaces() []string {
	names := make([]string, 0, len(d.interfaces))
	for n := range d.interfaces {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d *Definition) acquire() error {
	if d.state.CompareAndSwap(stateIdle, stateBusy) {
		return nil
	}
	if d.state.Load() == stateFinal {
		return ErrFinalized
	}
	return ErrConcurrentUse
}

func (d *Definition) release(final bool) {
	if final {
		d.state.Store(stateFinal)
		return
	}
	d.state.Store(stateIdle)
}

// acquireRead allows queries on frozen definitions without claiming them.
func (d *Definition) acquireRead() error {
	if d.state.CompareAndSwap(stateIdle, stateBusy) {
		return nil
	}
	if d.state.Load() == stateFinal {
		return nil
	}
	return ErrConcurrentUse
}

func (d *Definition) releaseRead() {
	d.state.CompareAndSwap(stateBusy, stateIdle)
}

// bindings is an insertion-ordered name -> target map. Overwriting a name
// keeps its original position.
type bindings struct {
	order  []string
	byName map[string]Target
}

func newBindings() bindings {
	return bindings{byName: make(map[string]Target)}
}

func (b *bindings) set(name string, t Target) {
	if _, ok := b.byName[name]; !ok {
		b.order = append(b.order, name)
	}
	b.byName[name] = t
}

func (b *bindings) get(name string) (Target, bool) {
	t, ok := b.byName[name]
	return t, ok
}

func (b *bindings) has(name string) bool {
	_, ok := b.byName[name]
	return ok
}

func (b *bindings) list() []Binding {
	out := make([]Binding, 0, len(b.order))
	for _, n := range b.order {
		out = append(out, Binding{Method: n, Target: b.byName[n]})
	}
	return out
}
