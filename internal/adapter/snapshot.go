package adapter

// Binding pairs a method name (or Wildcard) with its target.
type Binding struct {
	Method string
	Target Target
}

// Via says which kind of binding covers an obligation.
type Via string

const (
	ViaImplementation Via = "implementation"
	ViaOverride       Via = "override"
	ViaWildcard       Via = "wildcard"
)

// Coverage records how one abstract method is satisfied.
type Coverage struct {
	Method  Method
	Via     Via
	Binding string
}

// Snapshot is the read-only result of a successful Validate. Accessors
// return copies, so callers cannot mutate it.
type Snapshot struct {
	name            string
	parent          string
	interfaces      []string
	implementations []Binding
	overrides       []Binding
	coverage        []Coverage
}

func (s *Snapshot) Name() string   { return s.name }
func (s *Snapshot) Parent() string { return s.parent }

// Interfaces returns the implemented interfaces in sorted order.
func (s *Snapshot) Interfaces() []string { return append([]string(nil), s.interfaces...) }

// Implementations returns the implementation bindings in insertion order.
func (s *Snapshot) Implementations() []Binding { return append([]Binding(nil), s.implementations...) }

// Overrides returns the override bindings in insertion order.
func (s *Snapshot) Overrides() []Binding { return append([]Binding(nil), s.overrides...) }

// Coverage lists every abstract method in obligation order with the
// binding that satisfies it.
func (s *Snapshot) Coverage() []Coverage { return append([]Coverage(nil), s.coverage...) }

func (s *Snapshot) Implementation(name string) (Target, bool) { return lookup(s.implementations, name) }
func (s *Snapshot) Override(name string) (Target, bool)       { return lookup(s.overrides, name) }

func (s *Snapshot) HasWildcardImplementation() bool {
	_, ok := s.Implementation(Wildcard)
	return ok
}

func (s *Snapshot) HasWildcardOverride() bool {
	_, ok := s.Override(Wildcard)
	return ok
}

func lookup(bs []Binding, name string) (Target, bool) {
	for _, b := range bs {
		if b.Method == name {
			return b.Target, true
		}
	}
	return Target{}, false
}
