package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/schema-tools/schemaid/identity"
)

// Process-level provenance, fixed at startup. Every report produced by this
// process carries the same process ID and start time.
var (
	processID    = uuid.New()
	processStart = time.Now().UTC()
)

// ProcessID returns the random identity of the current process. It changes
// on every process start and distinguishes records written by different runs.
func ProcessID() uuid.UUID {
	return processID
}

// ProcessStart returns the UTC time the process-level provenance was
// initialized.
func ProcessStart() time.Time {
	return processStart
}

// Settings is the snapshot of engine tracking configuration in force when an
// identifier was computed. Identifiers computed under different settings are
// not comparable, even under the same algorithm version.
type Settings struct {
	TrackFieldOrder    bool `json:"track_field_order"`
	TrackUnionOrder    bool `json:"track_union_order"`
	TrackDescriptions  bool `json:"track_descriptions"`
	TrackDefaultValues bool `json:"track_default_values"`
	DigestLength       int  `json:"digest_length,omitempty"`
}

// Report ties a schema identifier to its provenance.
type Report struct {
	// Name is the schema source's cache key, or empty for anonymous sources.
	Name string `json:"name,omitempty"`

	// ProcessID identifies the process that computed the identifier.
	ProcessID uuid.UUID `json:"process_id"`

	// ProcessStart is when that process started.
	ProcessStart time.Time `json:"process_start"`

	// GeneratedAt is when this report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Identifier is the computed schema identifier.
	Identifier identity.Identifier `json:"-"`

	// ID is the identifier's string form, for serialized records.
	ID string `json:"id"`

	// Settings is the engine configuration snapshot.
	Settings Settings `json:"settings"`
}

// New assembles a report for an identifier computed in this process.
func New(name string, id identity.Identifier, settings Settings) Report {
	return Report{
		Name:         name,
		ProcessID:    processID,
		ProcessStart: processStart,
		GeneratedAt:  time.Now().UTC(),
		Identifier:   id,
		ID:           id.String(),
		Settings:     settings,
	}
}
