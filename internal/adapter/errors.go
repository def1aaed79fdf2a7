package adapter

import (
	"errors"
	"fmt"
)

// Kind classifies a contract violation.
type Kind int

const (
	KindResolutionFailure Kind = iota + 1
	KindArityViolation
	KindWildcardShapeViolation
	KindConflictingWildcards
	KindMissingImplementation
	KindSignatureMismatch
	KindNoSuchMethodToOverride
)

var kindNames = map[Kind]string{
	KindResolutionFailure:      "ResolutionFailure",
	KindArityViolation:         "ArityViolation",
	KindWildcardShapeViolation: "WildcardShapeViolation",
	KindConflictingWildcards:   "ConflictingWildcards",
	KindMissingImplementation:  "MissingImplementation",
	KindSignatureMismatch:      "SignatureMismatch",
	KindNoSuchMethodToOverride: "NoSuchMethodToOverride",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels matched by errors.Is against any *Problem of the same kind.
var (
	ErrResolutionFailure      = errors.New("type resolution failure")
	ErrArityViolation         = errors.New("arity violation")
	ErrWildcardShapeViolation = errors.New("wildcard shape violation")
	ErrConflictingWildcards   = errors.New("conflicting wildcards")
	ErrMissingImplementation  = errors.New("missing implementation")
	ErrSignatureMismatch      = errors.New("signature mismatch")
	ErrNoSuchMethodToOverride = errors.New("no such method to override")
)

var kindSentinels = map[Kind]error{
	KindResolutionFailure:      ErrResolutionFailure,
	KindArityViolation:         ErrArityViolation,
	KindWildcardShapeViolation: ErrWildcardShapeViolation,
	KindConflictingWildcards:   ErrConflictingWildcards,
	KindMissingImplementation:  ErrMissingImplementation,
	KindSignatureMismatch:      ErrSignatureMismatch,
	KindNoSuchMethodToOverride: ErrNoSuchMethodToOverride,
}

// Lifecycle errors. These are programming errors, not contract violations.
var (
	ErrFinalized     = errors.New("adapter definition already validated")
	ErrConcurrentUse = errors.New("adapter definition used concurrently")
)

// Problem is the single error produced by a failed declaration or
// validation. Fields not relevant to Kind are left zero.
type Problem struct {
	Kind     Kind
	Adapter  string
	Method   string
	TypeName string
	Expected Shape
	Target   Target
	Err      error
	msg      string
}

func (p *Problem) Error() string {
	if p.Adapter == "" {
		return p.msg
	}
	return p.Adapter + ": " + p.msg
}

// Is reports whether target is the sentinel for p's kind.
func (p *Problem) Is(target error) bool {
	s, ok := kindSentinels[p.Kind]
	return ok && s == target
}

func (p *Problem) Unwrap() error { return p.Err }

func problemf(kind Kind, adapter string, format string, args ...any) *Problem {
	return &Problem{Kind: kind, Adapter: adapter, msg: fmt.Sprintf(format, args...)}
}
