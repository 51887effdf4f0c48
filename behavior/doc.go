// Package behavior fingerprints validator and serializer attachments so they
// can participate in a schema's identity.
//
// Attached behaviors are executable, not structural, so their process-level
// identity (a function pointer) is meaningless across runs. The resolver
// converts each attachment into a symbolic Ref using the strongest strategy
// available:
//
//  1. by-name: the fully qualified name of a named function, stable for as
//     long as the name and package path do not change.
//  2. by-source-hash: a hash of the behavior's CEL expression source, used
//     when no stable name exists. The source is normalized through the parsed
//     AST first, so formatting-only edits do not change the fingerprint.
//  3. by-signature: a last-resort fingerprint of the function's reflected
//     signature only. Two different functions with the same signature collide
//     under this strategy; it is explicitly the weakest guarantee.
//
// Resolution never fails. It degrades through the strategy list, and the
// chosen strategy is recorded in the Ref so identifiers computed under
// different strategies are distinguishable rather than falsely equal. Any
// fallback past by-name raises a non-fatal degradation signal that callers
// may observe through a handler.
package behavior
