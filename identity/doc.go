// Package identity defines the versioned schema identifier value type and the
// digest computation that produces it.
//
// An Identifier pairs an algorithm version tag with a hex digest of a schema's
// canonical byte form. The version tag is part of the identifier's string form
// ("v1:3f9a...") and of its equality semantics: identifiers carrying different
// version tags are never equal, even when the digests happen to match. This
// keeps identifiers produced by different canonicalization algorithms from
// silently colliding; bumping the version is the only sanctioned way to change
// the digest of an unchanged schema.
//
// Digests are SHA-256 over the canonical bytes, hex encoded, optionally
// truncated. The hash has no per-process seed, so the same canonical bytes
// produce the same identifier in every process on every machine.
package identity
