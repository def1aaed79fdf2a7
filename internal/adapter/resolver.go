package adapter

import "fmt"

// Type is an introspectable type descriptor handed out by a Resolver.
type Type interface {
	Name() string
}

// Method is an abstract method obligation: something the adapter must
// provide a body for. Params excludes the receiver.
type Method struct {
	Name     string
	Params   int
	Variadic bool
	Owner    string
}

func (m Method) String() string {
	s := fmt.Sprintf("%s.%s/%d", m.Owner, m.Name, m.Params)
	if m.Variadic {
		s += "..."
	}
	return s
}

// Resolver is the resolution context a definition is checked against. It
// must be safe for concurrent reads when definitions are validated in
// parallel.
type Resolver interface {
	// Resolve finds a type by name.
	Resolve(name string) (Type, error)
	// AbstractMethods lists the abstract methods t declares or inherits.
	AbstractMethods(t Type) ([]Method, error)
	// VisibleMethods lists the names of methods a subtype of t may
	// override: public and protected, declared or inherited.
	VisibleMethods(t Type) ([]string, error)
}
