package typeinfo

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calumari/shim/internal/adapter"
)

func loadTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := LoadTableFile("testdata/types.yaml")
	require.NoError(t, err)
	return tbl
}

func abstractNames(ms []adapter.Method) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Owner+"."+m.Name)
	}
	return out
}

func TestTable(t *testing.T) {
	t.Run("loads all types from file", func(t *testing.T) {
		tbl := loadTestTable(t)
		require.Equal(t, []string{"java.lang.Object", "shapes.Named", "shapes.Shape", "shapes.Square", "util.Logger"}, tbl.Names())
	})

	t.Run("unknown type is not found", func(t *testing.T) {
		_, err := loadTestTable(t).Resolve("NoSuchType")
		require.ErrorIs(t, err, ErrTypeNotFound)
	})

	t.Run("abstract class inherits interface obligations", func(t *testing.T) {
		tbl := loadTestTable(t)
		shape, err := tbl.Resolve("shapes.Shape")
		require.NoError(t, err)
		ms, err := tbl.AbstractMethods(shape)
		require.NoError(t, err)
		require.Equal(t, []string{"shapes.Shape.area", "shapes.Shape.perimeter", "shapes.Named.name"}, abstractNames(ms))
	})

	t.Run("concrete subclass method hides inherited abstract method", func(t *testing.T) {
		tbl := loadTestTable(t)
		square, err := tbl.Resolve("shapes.Square")
		require.NoError(t, err)
		ms, err := tbl.AbstractMethods(square)
		require.NoError(t, err)
		require.Equal(t, []string{"shapes.Square.side", "shapes.Shape.area", "shapes.Named.name"}, abstractNames(ms))
	})

	t.Run("visible methods exclude package and private members", func(t *testing.T) {
		tbl := loadTestTable(t)
		square, err := tbl.Resolve("shapes.Square")
		require.NoError(t, err)
		names, err := tbl.VisibleMethods(square)
		require.NoError(t, err)
		require.Equal(t, []string{"perimeter", "side", "area", "describe", "toString", "hashCode", "clone", "name"}, names)
	})

	t.Run("interface default methods are not obligations", func(t *testing.T) {
		tbl := loadTestTable(t)
		logger, err := tbl.Resolve("util.Logger")
		require.NoError(t, err)
		ms, err := tbl.AbstractMethods(logger)
		require.NoError(t, err)
		require.Len(t, ms, 2)
		require.Equal(t, adapter.Method{Name: "log", Params: 2, Variadic: true, Owner: "util.Logger"}, ms[0])
		require.Equal(t, "name", ms[1].Name)
	})

	t.Run("missing super class surfaces when listing methods", func(t *testing.T) {
		tbl := NewTable()
		require.NoError(t, tbl.Add(TypeSpec{Name: "Orphan", Super: "Gone"}))
		orphan, err := tbl.Resolve("Orphan")
		require.NoError(t, err)
		_, err = tbl.AbstractMethods(orphan)
		require.ErrorIs(t, err, ErrTypeNotFound)
	})

	t.Run("inheritance cycle is an error", func(t *testing.T) {
		tbl := NewTable()
		require.NoError(t, tbl.Add(TypeSpec{Name: "A", Super: "B"}))
		require.NoError(t, tbl.Add(TypeSpec{Name: "B", Super: "A"}))
		a, err := tbl.Resolve("A")
		require.NoError(t, err)
		_, err = tbl.VisibleMethods(a)
		require.ErrorContains(t, err, "cycle")
	})

	t.Run("invalid specs are rejected", func(t *testing.T) {
		tbl := NewTable()
		require.Error(t, tbl.Add(TypeSpec{}))
		require.Error(t, tbl.Add(TypeSpec{Name: "X", Kind: "struct"}))
		require.Error(t, tbl.Add(TypeSpec{Name: "I", Kind: KindInterface, Super: "Object"}))
		require.Error(t, tbl.Add(TypeSpec{Name: "M", Methods: []MethodSpec{{Name: "m", Params: -1}}}))
		require.NoError(t, tbl.Add(TypeSpec{Name: "D"}))
		require.Error(t, tbl.Add(TypeSpec{Name: "D"}))
	})

	t.Run("descriptor from another resolver is rejected", func(t *testing.T) {
		tbl := loadTestTable(t)
		_, err := tbl.AbstractMethods(goType{name: "x"})
		require.ErrorIs(t, err, ErrForeignType)
	})

	t.Run("concurrent reads and writes", func(t *testing.T) {
		tbl := loadTestTable(t)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = tbl.Add(TypeSpec{Name: "extra" + string(rune('a'+i))})
				shape, err := tbl.Resolve("shapes.Shape")
				require.NoError(t, err)
				_, err = tbl.AbstractMethods(shape)
				require.NoError(t, err)
			}(i)
		}
		wg.Wait()
		require.Len(t, tbl.Names(), 13)
	})
}

func TestLoadTableFormat(t *testing.T) {
	t.Run("missing format defaults to current", func(t *testing.T) {
		tbl, err := LoadTable(strings.NewReader("types:\n  - name: A\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"A"}, tbl.Names())
	})

	t.Run("newer major format is rejected", func(t *testing.T) {
		_, err := LoadTable(strings.NewReader("format: \"2.0.0\"\ntypes: []\n"))
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed version is rejected", func(t *testing.T) {
		_, err := LoadTable(strings.NewReader("format: banana\n"))
		require.Error(t, err)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, err := LoadTable(strings.NewReader("types:\n  - name: A\n    color: red\n"))
		require.Error(t, err)
	})
}
