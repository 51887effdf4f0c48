package canonical

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/schema-tools/schemaid/behavior"
	"github.com/schema-tools/schemaid/schema"
)

// writer accumulates the canonical byte stream. Every primitive has exactly
// one encoding: u8 tags, u32 big-endian integers, length-prefixed strings.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) str(s string) {
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) raw(b []byte) {
	w.u32(uint32(len(b)))
	w.buf.Write(b)
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}

// rnode mirrors a schema node with its behaviors already resolved into
// symbolic refs, so the refinement rounds never re-resolve (or re-signal
// degradation for) the same attachment.
type rnode struct {
	kind           schema.Kind
	name           string
	fieldName      string
	description    string
	constraints    []schema.Constraint
	values         []string
	defaultPresent bool
	defaultValue   any
	refs           []behavior.Ref
	children       []rnode
}

func resolveNode(n schema.Node, r *behavior.Resolver) rnode {
	out := rnode{
		kind:           n.Kind,
		name:           n.Name,
		fieldName:      n.FieldName,
		description:    n.Description,
		constraints:    n.Constraints,
		values:         n.Values,
		defaultPresent: n.DefaultPresent,
		defaultValue:   n.Default,
		refs:           r.ResolveAll(n.Behaviors),
	}
	if len(n.Children) > 0 {
		out.children = make([]rnode, 0, len(n.Children))
		for _, child := range n.Children {
			out.children = append(out.children, resolveNode(child, r))
		}
	}
	return out
}

// refEncoder supplies the encoding of a reference node's target: the target's
// current label during refinement, its table index in the final serialization.
type refEncoder func(w *writer, target string) error

const (
	flagDefaultPresent = 1 << 0
	behaviorNameTag    = uint8(1)
	behaviorSourceTag  = uint8(2)
	behaviorSigTag     = uint8(3)
)

func strategyTag(s behavior.Strategy) uint8 {
	switch s {
	case behavior.StrategyName:
		return behaviorNameTag
	case behavior.StrategySource:
		return behaviorSourceTag
	default:
		return behaviorSigTag
	}
}

// encodeNode serializes one node. The encoding is total over the node kinds
// this engine version models; anything else is a hard failure.
//
// The attribute block (flags, constraints, behavior refs, tracked description
// and default) is written for every kind, references included: a reference
// node carries its own attachments in addition to naming its target, and
// those attachments are part of the schema's identity.
func encodeNode(w *writer, n rnode, refs refEncoder, opts Options) error {
	if n.kind < schema.KindScalar || n.kind > schema.KindReference {
		return fmt.Errorf("%w: kind %s", schema.ErrUnsupportedNode, n.kind)
	}

	w.u8(uint8(n.kind))
	w.str(n.fieldName)

	var flags uint8
	if n.defaultPresent {
		flags |= flagDefaultPresent
	}
	w.u8(flags)

	if opts.TrackDescriptions {
		w.str(n.description)
	}
	if opts.TrackDefaultValues && n.defaultPresent {
		w.str(canonicalJSON(n.defaultValue))
	}

	encodeConstraints(w, n.constraints)
	encodeRefs(w, n.refs)

	if n.kind == schema.KindReference {
		return refs(w, n.name)
	}

	w.str(n.name)
	encodeValues(w, n.values, opts)

	return encodeChildren(w, n, refs, opts)
}

func encodeConstraints(w *writer, constraints []schema.Constraint) {
	sorted := append([]schema.Constraint(nil), constraints...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Value < sorted[j].Value
	})

	w.u32(uint32(len(sorted)))
	for _, c := range sorted {
		w.str(c.Name)
		w.str(c.Value)
	}
}

// encodeRefs serializes resolved behavior refs in attachment order; the
// attachment sequence is meaningful (validators run in order), so it is part
// of the schema's identity. Only the strategy and payload enter the bytes:
// for by-name refs the payload is the qualified name, and for the weaker
// strategies the qualified name is best-effort diagnostics, not identity.
func encodeRefs(w *writer, refs []behavior.Ref) {
	w.u32(uint32(len(refs)))
	for _, r := range refs {
		w.u8(strategyTag(r.Strategy))
		w.raw(r.Payload)
	}
}

func encodeValues(w *writer, values []string, opts Options) {
	sorted := values
	if !opts.TrackUnionOrder {
		sorted = append([]string(nil), values...)
		sort.Strings(sorted)
	}
	w.u32(uint32(len(sorted)))
	for _, v := range sorted {
		w.str(v)
	}
}

func encodeChildren(w *writer, n rnode, refs refEncoder, opts Options) error {
	children := n.children

	switch n.kind {
	case schema.KindModel:
		if !opts.TrackFieldOrder {
			children = append([]rnode(nil), children...)
			sort.SliceStable(children, func(i, j int) bool {
				return children[i].fieldName < children[j].fieldName
			})
		}

	case schema.KindUnion:
		if !opts.TrackUnionOrder {
			// Members are an unordered set: order by their own encodings.
			encoded := make([][]byte, 0, len(children))
			for _, child := range children {
				var cw writer
				if err := encodeNode(&cw, child, refs, opts); err != nil {
					return err
				}
				encoded = append(encoded, cw.bytes())
			}
			sort.Slice(encoded, func(i, j int) bool {
				return bytes.Compare(encoded[i], encoded[j]) < 0
			})
			w.u32(uint32(len(encoded)))
			for _, e := range encoded {
				w.buf.Write(e)
			}
			return nil
		}
	}

	w.u32(uint32(len(children)))
	for _, child := range children {
		if err := encodeNode(w, child, refs, opts); err != nil {
			return err
		}
	}
	return nil
}
