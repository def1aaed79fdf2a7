package adapter

import (
	"fmt"
	"reflect"
)

// Wildcard is the reserved method name for catch-all bindings. It can never
// collide with a real method identifier.
const Wildcard = "*"

// Shape is the calling convention of a callable: how many formal parameters
// it takes and whether the last one collects any trailing arguments.
type Shape struct {
	Arity    int  `json:"arity" yaml:"arity"`
	Variadic bool `json:"variadic,omitempty" yaml:"variadic,omitempty"`
}

func (s Shape) String() string {
	if s.Variadic {
		return fmt.Sprintf("%d params (variadic)", s.Arity)
	}
	return fmt.Sprintf("%d params", s.Arity)
}

// Target is an externally supplied callable bound to a method name. The
// engine only inspects its Shape; Handle is carried through untouched for
// the code generator.
type Target struct {
	Label  string
	Handle any
	Shape  Shape
}

// NewTarget builds a target with an explicit shape.
func NewTarget(label string, arity int, variadic bool) Target {
	return Target{Label: label, Shape: Shape{Arity: arity, Variadic: variadic}}
}

// TargetOf derives a target from a Go function value. The function's
// parameter count becomes the arity and a trailing ...T parameter marks it
// variadic.
func TargetOf(label string, fn any) (Target, error) {
	if fn == nil {
		return Target{}, fmt.Errorf("target %s: nil function", label)
	}
	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return Target{}, fmt.Errorf("target %s: %s is not a function", label, t)
	}
	return Target{Label: label, Handle: fn, Shape: Shape{Arity: t.NumIn(), Variadic: t.IsVariadic()}}, nil
}

func (t Target) String() string {
	label := t.Label
	if label == "" {
		label = "<anonymous>"
	}
	return label + "(" + t.Shape.String() + ")"
}

// implementation wildcard: (receiverAndRest...)
var wildcardImplementationShape = Shape{Arity: 1, Variadic: true}

// override wildcard: (super, receiverAndRest...)
var wildcardOverrideShape = Shape{Arity: 2, Variadic: true}
