package typeinfo

import (
	"errors"
	"fmt"

	"github.com/calumari/shim/internal/adapter"
)

// Chain tries each resolver in order; the first one that knows a name owns
// the returned descriptor.
type Chain []adapter.Resolver

type chainType struct {
	adapter.Type
	owner adapter.Resolver
}

func (c Chain) Resolve(name string) (adapter.Type, error) {
	for _, r := range c {
		t, err := r.Resolve(name)
		if err == nil {
			return chainType{Type: t, owner: r}, nil
		}
		if !errors.Is(err, ErrTypeNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
}

func (c Chain) AbstractMethods(t adapter.Type) ([]adapter.Method, error) {
	ct, ok := t.(chainType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignType, t.Name())
	}
	return ct.owner.AbstractMethods(ct.Type)
}

func (c Chain) VisibleMethods(t adapter.Type) ([]string, error) {
	ct, ok := t.(chainType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignType, t.Name())
	}
	return ct.owner.VisibleMethods(ct.Type)
}
