package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Version is the current canonicalization algorithm version. It changes only
// when the canonical byte encoding changes in a way that would alter the
// digest of an unchanged schema.
const Version = "v1"

// ErrMalformed indicates an identifier string that does not match the
// "<version>:<hex digest>" form.
var ErrMalformed = errors.New("malformed identifier")

// Identifier is a stable, versioned fingerprint of a schema. The zero value
// is not a valid identifier; use Compute or Parse to obtain one.
type Identifier struct {
	// Version is the canonicalization algorithm version tag (e.g. "v1").
	Version string

	// Digest is the lowercase hex digest of the schema's canonical bytes.
	Digest string
}

// Compute hashes canonical bytes into an Identifier tagged with the given
// version. If truncate is positive, the hex digest is shortened to that many
// characters; otherwise the full SHA-256 digest (64 hex characters) is kept.
func Compute(version string, canonical []byte, truncate int) Identifier {
	sum := sha256.Sum256(canonical)
	digest := hex.EncodeToString(sum[:])
	if truncate > 0 && truncate < len(digest) {
		digest = digest[:truncate]
	}
	return Identifier{Version: version, Digest: digest}
}

// Parse converts the string form "<version>:<hex digest>" back into an
// Identifier. Both segments must be non-empty and the digest must be valid
// lowercase hex.
func Parse(s string) (Identifier, error) {
	version, digest, ok := strings.Cut(s, ":")
	if !ok || version == "" || digest == "" {
		return Identifier{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return Identifier{}, fmt.Errorf("%w: digest is not hex: %q", ErrMalformed, s)
	}
	return Identifier{Version: version, Digest: digest}, nil
}

// String returns the canonical string form "<version>:<hex digest>".
func (id Identifier) String() string {
	return id.Version + ":" + id.Digest
}

// IsZero reports whether the identifier is the zero value.
func (id Identifier) IsZero() bool {
	return id.Version == "" && id.Digest == ""
}

// Equal reports whether two identifiers denote the same schema. Identifiers
// with different version tags are never equal: digests produced by different
// algorithm versions are not comparable, and "unknown" must read as unequal.
func (id Identifier) Equal(other Identifier) bool {
	if id.IsZero() || other.IsZero() {
		return false
	}
	return id.Version == other.Version && id.Digest == other.Digest
}
