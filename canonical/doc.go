// Package canonical transforms a schema graph into its canonical byte form:
// an order-independent, cycle-free byte sequence that is identical for all
// structurally equivalent graphs.
//
// The transformation runs in four steps:
//
//  1. Labeling. Every reachable definition receives a structural label by
//     iterative refinement: labels start from the node kind alone, and each
//     round rehashes the definition's full structure with reference nodes
//     substituting the target's current label. References are never expanded,
//     only consulted, which is what makes the pass terminate on cyclic
//     graphs. Refinement stops when the induced partition stabilizes, and
//     final labels are recomputed on the deduplicated quotient so they do
//     not depend on how many bisimilar duplicates the input carried.
//
//  2. Deduplication. Definitions with identical final labels describe
//     bisimilar structures and merge into a single canonical definition, so
//     two textually distinct but structurally identical models contribute the
//     same subgraph.
//
//  3. Ordering. Union members and literal values are sorted by their encoded
//     bytes, constraints by name. Model fields are serialized sorted by field
//     name: the names stay bound to their schemas, but declaration order
//     disappears. The tracking options can opt back into declaration order.
//
//  4. Serialization. A fixed encoding for every primitive: unsigned 32-bit
//     big-endian integers, length-prefixed strings, one tag byte per node
//     kind, and references encoded as an index into the deduplicated
//     definition table rather than an inline copy, which is what breaks
//     cycles structurally.
//
// Behavior attachments are resolved into symbolic refs before encoding; the
// resolution strategy is part of the bytes, so fingerprints produced under
// different strategies never collide silently.
package canonical
