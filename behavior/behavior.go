package behavior

import (
	"bytes"
	"crypto/sha256"
	"log/slog"
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// Strategy identifies how a behavior attachment was fingerprinted. The
// strategy is part of the fingerprint itself: refs resolved under different
// strategies never compare equal, even if their payloads collide.
type Strategy string

const (
	// StrategyName fingerprints a behavior by its fully qualified function
	// name. Blind to behavioral changes inside a same-named function.
	StrategyName Strategy = "by-name"

	// StrategySource fingerprints a behavior by a hash of its expression
	// source text.
	StrategySource Strategy = "by-source-hash"

	// StrategySignature fingerprints a behavior by its reflected parameter
	// and return types only. Weakest guarantee.
	StrategySignature Strategy = "by-signature"
)

// Behavior is a validator or serializer attachment declared on a schema node.
// At most one of Fn and Expr is normally set; an explicit Name wins over both.
type Behavior struct {
	// Name is an explicit qualified name for the behavior. When set, the
	// resolver uses it directly under StrategyName.
	Name string

	// Fn is the attached function value, if the behavior is a Go function.
	Fn any

	// Expr is the behavior's CEL expression source, if the behavior is an
	// expression rather than a function.
	Expr string
}

// Named declares a behavior identified by an explicit qualified name, such as
// "github.com/acme/models.ValidateEmail".
func Named(name string) Behavior {
	return Behavior{Name: name}
}

// Func declares a behavior backed by a Go function value. Module-level named
// functions resolve by name; closures degrade to a signature fingerprint.
func Func(fn any) Behavior {
	return Behavior{Fn: fn}
}

// Expr declares a behavior backed by a CEL expression, for example
// "value.size() > 0 && value.size() < 256".
func Expr(src string) Behavior {
	return Behavior{Expr: src}
}

// Ref is the symbolic, portable representation of a resolved behavior. It is
// what enters the canonical byte form in place of the behavior itself.
type Ref struct {
	// QualifiedName is a best-effort stable name for the behavior. May be
	// empty for anonymous expressions.
	QualifiedName string

	// Strategy records how Payload was produced.
	Strategy Strategy

	// Payload is the strategy-specific fingerprint bytes.
	Payload []byte
}

// Compare orders refs deterministically by strategy, then name, then payload.
func (r Ref) Compare(other Ref) int {
	if c := strings.Compare(string(r.Strategy), string(other.Strategy)); c != 0 {
		return c
	}
	if c := strings.Compare(r.QualifiedName, other.QualifiedName); c != 0 {
		return c
	}
	return bytes.Compare(r.Payload, other.Payload)
}

// Degradation signals that a behavior could not be fingerprinted by name and
// the resolver fell back to a weaker strategy. It is informational, not an
// error; resolution always proceeds.
type Degradation struct {
	// Strategy is the fallback strategy that was used.
	Strategy Strategy

	// Reason explains why the stronger strategies were unavailable.
	Reason string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDegradationHandler installs a handler invoked whenever resolution falls
// back past the by-name strategy.
func WithDegradationHandler(fn func(Degradation)) Option {
	return func(r *Resolver) {
		r.onDegraded = fn
	}
}

// WithLogger sets the logger used to record degradations at warning level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver converts behavior attachments into symbolic Refs. The zero value
// is not usable; construct with NewResolver.
type Resolver struct {
	onDegraded func(Degradation)
	logger     *slog.Logger
}

// NewResolver creates a behavior fingerprint resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// closurePattern matches the compiler-assigned names of function literals
// ("pkg.Parent.func1", "pkg.Parent.func2.1"). Those names depend on the
// lexical position of the literal, so they are not stable across edits.
var closurePattern = regexp.MustCompile(`\.func\d+(\.\d+)*$`)

// Resolve fingerprints a behavior attachment. It never fails: resolution
// degrades through by-name, by-source-hash, and by-signature, tagging the
// chosen strategy in the returned Ref.
func (r *Resolver) Resolve(b Behavior) Ref {
	if b.Name != "" {
		return Ref{QualifiedName: b.Name, Strategy: StrategyName, Payload: []byte(b.Name)}
	}

	fnName := ""
	if b.Fn != nil {
		fnName = functionName(b.Fn)
		if fnName != "" && !closurePattern.MatchString(fnName) {
			return Ref{QualifiedName: fnName, Strategy: StrategyName, Payload: []byte(fnName)}
		}
	}

	if b.Expr != "" {
		src := normalizeExpr(b.Expr)
		sum := sha256.Sum256([]byte(src))
		r.degrade(Degradation{Strategy: StrategySource, Reason: "expression behavior has no qualified name"})
		return Ref{Strategy: StrategySource, Payload: sum[:]}
	}

	if b.Fn != nil {
		sig := signatureOf(b.Fn)
		r.degrade(Degradation{Strategy: StrategySignature, Reason: "function has no stable name and no source"})
		return Ref{QualifiedName: fnName, Strategy: StrategySignature, Payload: []byte(sig)}
	}

	r.degrade(Degradation{Strategy: StrategySignature, Reason: "empty behavior attachment"})
	return Ref{Strategy: StrategySignature}
}

// ResolveAll fingerprints a slice of behaviors in order.
func (r *Resolver) ResolveAll(behaviors []Behavior) []Ref {
	if len(behaviors) == 0 {
		return nil
	}
	refs := make([]Ref, 0, len(behaviors))
	for _, b := range behaviors {
		refs = append(refs, r.Resolve(b))
	}
	return refs
}

func (r *Resolver) degrade(d Degradation) {
	if r.logger != nil {
		r.logger.Warn("behavior fingerprint degraded",
			"strategy", string(d.Strategy),
			"reason", d.Reason)
	}
	if r.onDegraded != nil {
		r.onDegraded(d)
	}
}

// functionName returns the runtime name of a function value, or "" if the
// value is not a function.
func functionName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	// Method values carry a "-fm" wrapper suffix; the underlying method name
	// is the stable part.
	return strings.TrimSuffix(rf.Name(), "-fm")
}

// signatureOf renders a function's parameter and return types. Parameter
// names are not recoverable through reflection, so types are all that
// participate in the signature fingerprint.
func signatureOf(fn any) string {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return ""
	}
	return t.String()
}
