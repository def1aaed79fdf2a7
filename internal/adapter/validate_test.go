package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("unmet obligation without wildcard is missing implementation", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement("area", NewTarget("area", 1, false)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrMissingImplementation)
		var p *Problem
		require.True(t, errors.As(err, &p))
		require.Equal(t, "perimeter", p.Method)
		require.Equal(t, "Shape", p.TypeName)
	})

	t.Run("wildcard implementation covers remaining obligations", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement("area", NewTarget("area", 1, false)))
		require.NoError(t, d.Implement(Wildcard, NewTarget("any", 1, true)))
		snap, err := d.Validate()
		require.NoError(t, err)
		_, ok := snap.Implementation("area")
		require.True(t, ok)
		require.True(t, snap.HasWildcardImplementation())
		cov := snap.Coverage()
		require.Len(t, cov, 2)
		require.Equal(t, Coverage{Method: Method{Name: "area", Owner: "Shape"}, Via: ViaImplementation, Binding: "area"}, cov[0])
		require.Equal(t, ViaWildcard, cov[1].Via)
		require.Equal(t, Wildcard, cov[1].Binding)
	})

	t.Run("named override satisfies an obligation", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement("area", NewTarget("area", 1, false)))
		require.NoError(t, d.Override("perimeter", NewTarget("perimeter", 2, false)))
		snap, err := d.Validate()
		require.NoError(t, err)
		require.Equal(t, ViaOverride, snap.Coverage()[1].Via)
	})

	t.Run("wildcard override does not satisfy an obligation", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement("area", NewTarget("area", 1, false)))
		require.NoError(t, d.Override(Wildcard, NewTarget("any", 2, true)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrMissingImplementation)
	})

	t.Run("conflicting wildcards in either order", func(t *testing.T) {
		impl := NewTarget("impl", 1, true)
		over := NewTarget("over", 2, true)
		orders := []func(d *Definition){
			func(d *Definition) {
				require.NoError(t, d.Implement(Wildcard, impl))
				require.NoError(t, d.Override(Wildcard, over))
			},
			func(d *Definition) {
				require.NoError(t, d.Override(Wildcard, over))
				require.NoError(t, d.Implement(Wildcard, impl))
			},
		}
		for _, register := range orders {
			d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
			register(d)
			_, err := d.Validate()
			require.ErrorIs(t, err, ErrConflictingWildcards)
		}
	})

	t.Run("unresolvable parent fails before any other check", func(t *testing.T) {
		r := newFakeResolver(shapeType())
		d := New(r, "x", "NoSuchType")
		require.NoError(t, d.Implement(Wildcard, NewTarget("impl", 1, true)))
		require.NoError(t, d.Override(Wildcard, NewTarget("over", 2, true)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrResolutionFailure)
		require.NotErrorIs(t, err, ErrMissingImplementation)
		require.NotErrorIs(t, err, ErrConflictingWildcards)
		require.Zero(t, r.abstract)
		var p *Problem
		require.True(t, errors.As(err, &p))
		require.Equal(t, "NoSuchType", p.TypeName)
		require.Error(t, errors.Unwrap(err))
	})

	t.Run("unresolvable interface is a resolution failure", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.AddInterface("Missing"))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrResolutionFailure)
	})

	t.Run("implementation arity must match obligation plus receiver", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement("area", NewTarget("area", 2, false)))
		require.NoError(t, d.Implement(Wildcard, NewTarget("any", 1, true)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrSignatureMismatch)
		var p *Problem
		require.True(t, errors.As(err, &p))
		require.Equal(t, "area", p.Method)
		require.Equal(t, Shape{Arity: 1}, p.Expected)
		require.Equal(t, 2, p.Target.Shape.Arity)
	})

	t.Run("variadic flag must match", func(t *testing.T) {
		logger := &fakeType{name: "Logger", abstract: []Method{{Name: "log", Params: 2, Variadic: true}}}
		d := New(newFakeResolver(&fakeType{name: "Object"}, logger), "LogAdapter", "Object")
		require.NoError(t, d.AddInterface("Logger"))
		require.NoError(t, d.Implement("log", NewTarget("log", 3, false)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrSignatureMismatch)

		d = New(newFakeResolver(&fakeType{name: "Object"}, logger), "LogAdapter", "Object")
		require.NoError(t, d.AddInterface("Logger"))
		require.NoError(t, d.Implement("log", NewTarget("log", 3, true)))
		_, err = d.Validate()
		require.NoError(t, err)
	})

	t.Run("override arity must match obligation plus super and receiver", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement("area", NewTarget("area", 1, false)))
		require.NoError(t, d.Override("perimeter", NewTarget("perimeter", 3, false)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("override must name a method visible on the parent", func(t *testing.T) {
		drawable := &fakeType{name: "Drawable", abstract: []Method{{Name: "draw"}}}
		d := New(newFakeResolver(shapeType(), drawable), "ShapeAdapter", "Shape")
		require.NoError(t, d.AddInterface("Drawable"))
		require.NoError(t, d.Implement(Wildcard, NewTarget("any", 1, true)))
		require.NoError(t, d.Override("draw", NewTarget("draw", 2, false)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrNoSuchMethodToOverride)
		var p *Problem
		require.True(t, errors.As(err, &p))
		require.Equal(t, "draw", p.Method)
		require.Equal(t, "Shape", p.TypeName)
	})

	t.Run("override of a concrete visible method is allowed", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement(Wildcard, NewTarget("any", 1, true)))
		require.NoError(t, d.Override("describe", NewTarget("describe", 2, false)))
		snap, err := d.Validate()
		require.NoError(t, err)
		_, ok := snap.Override("describe")
		require.True(t, ok)
	})

	t.Run("same-named obligations are checked once against the first seen", func(t *testing.T) {
		a := &fakeType{name: "A", abstract: []Method{{Name: "run", Params: 1}}}
		b := &fakeType{name: "B", abstract: []Method{{Name: "run", Params: 3}}}
		d := New(newFakeResolver(&fakeType{name: "Object"}, a, b), "Runner", "Object")
		require.NoError(t, d.AddInterface("B"))
		require.NoError(t, d.AddInterface("A"))
		require.NoError(t, d.Implement("run", NewTarget("run", 2, false)))
		snap, err := d.Validate()
		require.NoError(t, err)
		require.Len(t, snap.Coverage(), 1)
		require.Equal(t, "A", snap.Coverage()[0].Method.Owner)
	})

	t.Run("conflicting wildcards are reported before missing implementations", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Implement(Wildcard, NewTarget("impl", 1, true)))
		require.NoError(t, d.Override(Wildcard, NewTarget("over", 2, true)))
		require.NoError(t, d.Override("nope", NewTarget("nope", 2, false)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrConflictingWildcards)
	})

	t.Run("coverage errors are reported before override legality", func(t *testing.T) {
		d := New(newFakeResolver(shapeType()), "ShapeAdapter", "Shape")
		require.NoError(t, d.Override("nope", NewTarget("nope", 2, false)))
		_, err := d.Validate()
		require.ErrorIs(t, err, ErrMissingImplementation)
	})
}
