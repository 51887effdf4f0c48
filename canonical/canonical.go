package canonical

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/schema-tools/schemaid/behavior"
	"github.com/schema-tools/schemaid/schema"
)

var (
	// ErrUnknownDefinition indicates a reference node naming a definition
	// that is absent from the graph's definitions table.
	ErrUnknownDefinition = errors.New("unknown schema definition")

	// ErrNodeLimit indicates a schema graph larger than the configured node
	// bound. Legitimate recursive schemas are handled structurally and never
	// trip this; the bound guards against malformed external descriptions.
	ErrNodeLimit = errors.New("schema graph exceeds node limit")
)

// DefaultMaxNodes is the node-count bound applied when Options.MaxNodes is
// zero. Hand-written model schemas sit orders of magnitude below this.
const DefaultMaxNodes = 65536

// Options control which incidental properties of a schema declaration
// participate in its canonical form. The zero value is the recommended
// configuration: order-independent, descriptions untracked, defaults tracked
// by presence only.
type Options struct {
	// TrackFieldOrder makes model field declaration order significant.
	TrackFieldOrder bool

	// TrackUnionOrder makes union member and literal value order significant.
	TrackUnionOrder bool

	// TrackDescriptions includes documentation text in the canonical form.
	TrackDescriptions bool

	// TrackDefaultValues includes default values, not just their presence.
	TrackDefaultValues bool

	// ExtraData is arbitrary JSON-serializable data appended to the canonical
	// form: deployment configs, prompts, or other static inputs whose changes
	// should change the identifier.
	ExtraData any

	// MaxNodes bounds the graph size; zero means DefaultMaxNodes.
	MaxNodes int

	// Resolver fingerprints behavior attachments. Nil uses a default
	// resolver without a degradation handler.
	Resolver *behavior.Resolver
}

// Encode transforms a schema graph into its canonical byte form. Graphs that
// are structurally equivalent under field-order permutation, union-member
// permutation, and equivalent recursive-reference topology encode to
// byte-identical sequences (under the zero Options).
func Encode(g schema.Graph, opts Options) ([]byte, error) {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = behavior.NewResolver()
	}

	reachable, err := reachableDefinitions(g, opts.MaxNodes)
	if err != nil {
		return nil, err
	}

	root := resolveNode(g.Root, resolver)
	defs := make(map[string]rnode, len(reachable))
	for name := range reachable {
		defs[name] = resolveNode(g.Definitions[name], resolver)
	}

	labels, err := refine(defs, opts)
	if err != nil {
		return nil, err
	}

	table, indexOf := dedupe(labels)

	var w writer
	w.u32(uint32(len(table)))
	for _, name := range table {
		if err := encodeNode(&w, defs[name], indexRefs(indexOf), opts); err != nil {
			return nil, err
		}
	}
	if err := encodeNode(&w, root, indexRefs(indexOf), opts); err != nil {
		return nil, err
	}

	if opts.ExtraData != nil {
		data, err := json.Marshal(opts.ExtraData)
		if err != nil {
			return nil, fmt.Errorf("extra data is not JSON-serializable: %w", err)
		}
		w.raw(data)
	}

	return w.bytes(), nil
}

// reachableDefinitions walks the graph from the root, returning the set of
// definitions actually referenced. Unreachable definitions do not exist as
// far as the identifier is concerned. The walk enforces the node bound and
// fails on dangling references.
func reachableDefinitions(g schema.Graph, maxNodes int) (map[string]bool, error) {
	reachable := make(map[string]bool)
	nodeCount := 0

	var pending []string
	var walk func(n schema.Node) error
	walk = func(n schema.Node) error {
		nodeCount++
		if nodeCount > maxNodes {
			return fmt.Errorf("%w: more than %d nodes", ErrNodeLimit, maxNodes)
		}
		if n.Kind == schema.KindReference {
			if _, ok := g.Definitions[n.Name]; !ok {
				return fmt.Errorf("%w: %q", ErrUnknownDefinition, n.Name)
			}
			if !reachable[n.Name] {
				reachable[n.Name] = true
				pending = append(pending, n.Name)
			}
			return nil
		}
		for _, child := range n.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(g.Root); err != nil {
		return nil, err
	}
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]
		if err := walk(g.Definitions[name]); err != nil {
			return nil, err
		}
	}
	return reachable, nil
}

// dedupe merges definitions with identical final labels and fixes the
// canonical definition table order. It returns the table (one representative
// definition name per unique label, in label order) and the index every
// definition name maps to.
func dedupe(labels map[string]label) ([]string, map[string]uint32) {
	representative := make(map[label]string, len(labels))
	for name, l := range labels {
		if current, ok := representative[l]; !ok || name < current {
			representative[l] = name
		}
	}

	unique := make([]label, 0, len(representative))
	for l := range representative {
		unique = append(unique, l)
	}
	sort.Slice(unique, func(i, j int) bool {
		return bytes.Compare(unique[i][:], unique[j][:]) < 0
	})

	table := make([]string, 0, len(unique))
	indexByLabel := make(map[label]uint32, len(unique))
	for i, l := range unique {
		table = append(table, representative[l])
		indexByLabel[l] = uint32(i)
	}

	indexOf := make(map[string]uint32, len(labels))
	for name, l := range labels {
		indexOf[name] = indexByLabel[l]
	}
	return table, indexOf
}

// indexRefs encodes a reference as its index in the deduplicated definition
// table, breaking cycles structurally.
func indexRefs(indexOf map[string]uint32) refEncoder {
	return func(w *writer, target string) error {
		ix, ok := indexOf[target]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDefinition, target)
		}
		w.u32(ix)
		return nil
	}
}

// canonicalJSON renders a default value deterministically; encoding/json
// sorts map keys.
func canonicalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
