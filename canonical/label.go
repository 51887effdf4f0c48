package canonical

import (
	"crypto/sha256"
	"fmt"
)

// label is the structural fingerprint a definition carries through the
// refinement rounds.
type label [sha256.Size]byte

// refine assigns every definition a structural label in two phases.
//
// Phase one is classic partition refinement: round zero derives labels from
// the node kind alone; each subsequent round rehashes the definition's full
// structure with reference nodes substituting the target's label from the
// previous round. Reference targets are consulted, never expanded, so the
// pass converges on cyclic graphs. The raw labels of recursive definitions
// never literally stabilize (each round is a fresh hash chain), but the
// partition they induce can only split, so it stabilizes within one round
// per definition; the loop stops there.
//
// Phase two recomputes labels on the quotient graph: one representative per
// equivalence class, with every reference resolved through its target's
// class. The final labels therefore depend only on the quotient's structure,
// not on how many bisimilar duplicates the input carried. Without this, a
// recursive definition's label would bake in the pre-merge definition count,
// and duplicated isomorphic definitions would shift table order and
// reference indexes.
func refine(defs map[string]rnode, opts Options) (map[string]label, error) {
	if len(defs) == 0 {
		return map[string]label{}, nil
	}

	labels := initialLabels(defs)
	for round := 0; round <= len(defs); round++ {
		next, err := refineRound(defs, labels, nil, opts)
		if err != nil {
			return nil, err
		}
		stable := samePartition(defs, labels, next)
		labels = next
		if stable {
			break
		}
	}

	// Quotient: every definition resolves to the smallest name in its class.
	classOf := make(map[string]string, len(defs))
	smallest := make(map[label]string, len(defs))
	for name, l := range labels {
		if current, ok := smallest[l]; !ok || name < current {
			smallest[l] = name
		}
	}
	quotient := make(map[string]rnode, len(smallest))
	for name, l := range labels {
		rep := smallest[l]
		classOf[name] = rep
		quotient[rep] = defs[rep]
	}

	qlabels := initialLabels(quotient)
	rounds := len(quotient) + 1
	for round := 0; round < rounds; round++ {
		next, err := refineRound(quotient, qlabels, classOf, opts)
		if err != nil {
			return nil, err
		}
		qlabels = next
	}

	out := make(map[string]label, len(defs))
	for name, rep := range classOf {
		out[name] = qlabels[rep]
	}
	return out, nil
}

func initialLabels(defs map[string]rnode) map[string]label {
	labels := make(map[string]label, len(defs))
	for name, def := range defs {
		labels[name] = sha256.Sum256([]byte{uint8(def.kind)})
	}
	return labels
}

// refineRound rehashes every definition body with reference targets encoded
// as their current label. A nil classOf resolves targets directly.
func refineRound(defs map[string]rnode, labels map[string]label, classOf map[string]string, opts Options) (map[string]label, error) {
	next := make(map[string]label, len(defs))
	for name, def := range defs {
		var w writer
		if err := encodeNode(&w, def, labelRefs(labels, classOf), opts); err != nil {
			return nil, err
		}
		next[name] = sha256.Sum256(w.bytes())
	}
	return next, nil
}

// samePartition reports whether two label assignments group the definitions
// identically. Refinement only ever splits classes, so it suffices to check
// that every previous class still maps to a single new label.
func samePartition(defs map[string]rnode, prev, next map[string]label) bool {
	seen := make(map[label]label, len(defs))
	for name := range defs {
		if mapped, ok := seen[prev[name]]; ok {
			if mapped != next[name] {
				return false
			}
			continue
		}
		seen[prev[name]] = next[name]
	}
	return true
}

// labelRefs encodes a reference as the target's current label, resolving
// through the target's equivalence class when one is supplied.
func labelRefs(labels map[string]label, classOf map[string]string) refEncoder {
	return func(w *writer, target string) error {
		if classOf != nil {
			rep, ok := classOf[target]
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownDefinition, target)
			}
			target = rep
		}
		l, ok := labels[target]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDefinition, target)
		}
		w.raw(l[:])
		return nil
	}
}
