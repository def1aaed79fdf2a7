package adapter

// validator runs the contract checks for one Validate call. Resolved types
// are cached only for the duration of the pass.
type validator struct {
	def   *Definition
	types map[string]Type
}

// run performs the checks in a fixed order and stops at the first
// violation.
func (v *validator) run() ([]Coverage, error) {
	if err := v.checkSuperTypesExist(); err != nil {
		return nil, err
	}
	if err := v.checkWildcardConflict(); err != nil {
		return nil, err
	}
	obligations, err := v.obligations()
	if err != nil {
		return nil, err
	}
	coverage, err := v.checkCoverage(obligations)
	if err != nil {
		return nil, err
	}
	if err := v.checkOverridesExist(); err != nil {
		return nil, err
	}
	return coverage, nil
}

// supertypes lists the parent followed by the interfaces in sorted order.
func (v *validator) supertypes() []string {
	return append([]string{v.def.parent}, v.def.sortedInterfaces()...)
}

func (v *validator) resolve(name string) (Type, error) {
	if t, ok := v.types[name]; ok {
		return t, nil
	}
	t, err := v.def.resolver.Resolve(name)
	if err != nil {
		p := problemf(KindResolutionFailure, v.def.name, "cannot resolve type %s: %v", name, err)
		p.TypeName, p.Err = name, err
		return nil, p
	}
	v.types[name] = t
	return t, nil
}

func (v *validator) checkSuperTypesExist() error {
	for _, name := range v.supertypes() {
		if _, err := v.resolve(name); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) checkWildcardConflict() error {
	if v.def.implementations.has(Wildcard) && v.def.overrides.has(Wildcard) {
		return problemf(KindConflictingWildcards, v.def.name,
			"having both a %s implementation and a %s override is forbidden", Wildcard, Wildcard)
	}
	return nil
}

// obligations collects the abstract methods of every supertype, keeping the
// first method seen for each name.
func (v *validator) obligations() ([]Method, error) {
	var out []Method
	seen := make(map[string]bool)
	for _, name := range v.supertypes() {
		t, err := v.resolve(name)
		if err != nil {
			return nil, err
		}
		methods, err := v.def.resolver.AbstractMethods(t)
		if err != nil {
			p := problemf(KindResolutionFailure, v.def.name, "cannot list abstract methods of %s: %v", name, err)
			p.TypeName, p.Err = name, err
			return nil, p
		}
		for _, m := range methods {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			if m.Owner == "" {
				m.Owner = name
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func (v *validator) checkCoverage(obligations []Method) ([]Coverage, error) {
	coverage := make([]Coverage, 0, len(obligations))
	for _, m := range obligations {
		if target, ok := v.def.implementations.get(m.Name); ok {
			want := Shape{Arity: m.Params + 1, Variadic: m.Variadic}
			if target.Shape != want {
				return nil, v.mismatch(m, "implement", target, want)
			}
			coverage = append(coverage, Coverage{Method: m, Via: ViaImplementation, Binding: m.Name})
			continue
		}
		if target, ok := v.def.overrides.get(m.Name); ok {
			want := Shape{Arity: m.Params + 2, Variadic: m.Variadic}
			if target.Shape != want {
				return nil, v.mismatch(m, "override", target, want)
			}
			coverage = append(coverage, Coverage{Method: m, Via: ViaOverride, Binding: m.Name})
			continue
		}
		// A wildcard override never satisfies an abstract method.
		if v.def.implementations.has(Wildcard) {
			coverage = append(coverage, Coverage{Method: m, Via: ViaWildcard, Binding: Wildcard})
			continue
		}
		p := problemf(KindMissingImplementation, v.def.name, "there is no implementation or override for %s", m)
		p.Method, p.TypeName = m.Name, m.Owner
		return nil, p
	}
	return coverage, nil
}

func (v *validator) mismatch(m Method, verb string, target Target, want Shape) *Problem {
	p := problemf(KindSignatureMismatch, v.def.name,
		"cannot %s %s with %s: expected %s", verb, m, target, want)
	p.Method, p.TypeName, p.Target, p.Expected = m.Name, m.Owner, target, want
	return p
}

func (v *validator) checkOverridesExist() error {
	parent, err := v.resolve(v.def.parent)
	if err != nil {
		return err
	}
	visible, err := v.def.resolver.VisibleMethods(parent)
	if err != nil {
		p := problemf(KindResolutionFailure, v.def.name, "cannot list methods of %s: %v", v.def.parent, err)
		p.TypeName, p.Err = v.def.parent, err
		return p
	}
	canOverride := make(map[string]bool, len(visible))
	for _, n := range visible {
		canOverride[n] = true
	}
	for _, b := range v.def.overrides.list() {
		if b.Method == Wildcard || canOverride[b.Method] {
			continue
		}
		p := problemf(KindNoSuchMethodToOverride, v.def.name,
			"there is no method named %s to override in parent %s", b.Method, v.def.parent)
		p.Method, p.TypeName, p.Target = b.Method, v.def.parent, b.Target
		return p
	}
	return nil
}
