package behavior

import (
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// celEnv is the shared parse-only CEL environment. Parsing does not check
// identifier declarations, so a single empty environment serves every
// expression behavior.
var (
	celEnvOnce sync.Once
	celEnv     *cel.Env
)

func parseEnv() *cel.Env {
	celEnvOnce.Do(func() {
		env, err := cel.NewEnv()
		if err != nil {
			return
		}
		celEnv = env
	})
	return celEnv
}

// normalizeExpr renders a CEL expression in its canonical unparsed form, so
// that formatting-only differences ("a>b" vs "a > b") hash identically.
// Expressions that fail to parse are hashed as-is after whitespace trimming:
// an invalid expression still deserves a deterministic fingerprint, and
// rejecting it is the validation engine's job, not ours.
func normalizeExpr(src string) string {
	env := parseEnv()
	if env == nil {
		return strings.TrimSpace(src)
	}
	ast, iss := env.Parse(src)
	if iss != nil && iss.Err() != nil {
		return strings.TrimSpace(src)
	}
	normalized, err := cel.AstToString(ast)
	if err != nil {
		return strings.TrimSpace(src)
	}
	return normalized
}

// NormalizeExpr exposes the canonical form of a CEL expression behavior.
// Useful for debugging why two expression fingerprints differ.
func NormalizeExpr(src string) string {
	return normalizeExpr(src)
}
