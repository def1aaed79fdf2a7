package typeinfo

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/calumari/shim/internal/adapter"
)

// Packages resolves Go named types. Interface methods are abstract. For
// other named types, methods promoted from embedded interface fields are
// abstract: the adapter has to supply them.
type Packages struct {
	pkgs []*types.Package
}

type goType struct {
	name  string
	named *types.Named
}

func (t goType) Name() string { return t.name }

// LoadPackages type-checks the packages matching patterns in dir.
func LoadPackages(dir string, patterns ...string) (*Packages, error) {
	if len(patterns) == 0 {
		patterns = []string{"./"}
	}
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedDeps | packages.NeedImports,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, err
	}
	var result []*types.Package
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			return nil, p.Errors[0]
		}
		result = append(result, p.Types)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no packages found in %s", dir)
	}
	return NewPackages(result...), nil
}

// NewPackages wraps already type-checked packages.
func NewPackages(pkgs ...*types.Package) *Packages {
	return &Packages{pkgs: pkgs}
}

// Resolve accepts "Name", "pkgname.Name" or "import/path.Name".
func (p *Packages) Resolve(name string) (adapter.Type, error) {
	qual, typeName := "", name
	if i := strings.LastIndex(name, "."); i >= 0 {
		qual, typeName = name[:i], name[i+1:]
	}
	var found []*types.Named
	for _, pkg := range p.pkgs {
		if qual != "" && pkg.Path() != qual && pkg.Name() != qual {
			continue
		}
		obj, ok := pkg.Scope().Lookup(typeName).(*types.TypeName)
		if !ok {
			continue
		}
		if named, ok := types.Unalias(obj.Type()).(*types.Named); ok {
			found = append(found, named)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	case 1:
		return goType{name: name, named: found[0]}, nil
	}
	return nil, fmt.Errorf("ambiguous type %s: found in %d packages", name, len(found))
}

func (p *Packages) AbstractMethods(t adapter.Type) ([]adapter.Method, error) {
	gt, ok := t.(goType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignType, t.Name())
	}
	var out []adapter.Method
	if iface, ok := gt.named.Underlying().(*types.Interface); ok {
		for i := 0; i < iface.NumMethods(); i++ {
			out = append(out, methodOf(gt.name, iface.Method(i)))
		}
		return out, nil
	}
	ms := types.NewMethodSet(types.NewPointer(gt.named))
	for i := 0; i < ms.Len(); i++ {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Recv() != nil && types.IsInterface(sig.Recv().Type()) {
			out = append(out, methodOf(gt.name, fn))
		}
	}
	return out, nil
}

// VisibleMethods lists the exported methods of *T, or of T itself for
// interfaces.
func (p *Packages) VisibleMethods(t adapter.Type) ([]string, error) {
	gt, ok := t.(goType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignType, t.Name())
	}
	var recv types.Type = types.NewPointer(gt.named)
	if types.IsInterface(gt.named) {
		recv = gt.named
	}
	ms := types.NewMethodSet(recv)
	var out []string
	for i := 0; i < ms.Len(); i++ {
		if obj := ms.At(i).Obj(); obj.Exported() {
			out = append(out, obj.Name())
		}
	}
	return out, nil
}

func methodOf(owner string, fn *types.Func) adapter.Method {
	sig := fn.Type().(*types.Signature)
	return adapter.Method{Name: fn.Name(), Params: sig.Params().Len(), Variadic: sig.Variadic(), Owner: owner}
}
