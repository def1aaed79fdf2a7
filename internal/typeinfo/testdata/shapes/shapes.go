package shapes

type Shape interface {
	Area() float64
	Perimeter() float64
}

type Named interface {
	Name() string
}

type Logger interface {
	Logf(format string, args ...any)
}

// Base leaves Area to the adapter.
type Base struct {
	Shape
	label string
}

func (b *Base) Describe() string   { return b.label }
func (b *Base) Perimeter() float64 { return 0 }
func (b *Base) reset()             { b.label = "" }
