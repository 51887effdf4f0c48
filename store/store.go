package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/schema-tools/schemaid/identity"
	"github.com/schema-tools/schemaid/report"
)

// ErrUnnamed indicates an attempt to record a report for an anonymous schema
// source. Records are keyed by schema name; an unnamed report has no key.
var ErrUnnamed = errors.New("report has no schema name")

// Registry defines the interface for persisting schema identity records.
type Registry interface {
	// Record stores a report under its schema name. The first record for a
	// name wins; later records for the same name are dropped. The report's
	// identifier is always added to the identifier set.
	Record(ctx context.Context, rep report.Report) error

	// Seen reports whether the identifier has ever been recorded.
	Seen(ctx context.Context, id identity.Identifier) (bool, error)

	// Lookup returns the record stored under a schema name, if any.
	Lookup(ctx context.Context, name string) (report.Report, bool, error)

	// List returns all stored records.
	List(ctx context.Context) ([]report.Report, error)

	// Close releases the backend connection.
	Close() error
}

// Drift compares a freshly computed report against the registry's record for
// the same schema name. It returns true when a record exists and its
// identifier differs from the fresh one, meaning the schema changed shape
// since it was first registered.
func Drift(ctx context.Context, reg Registry, rep report.Report) (bool, error) {
	if rep.Name == "" {
		return false, ErrUnnamed
	}
	stored, ok, err := reg.Lookup(ctx, rep.Name)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return stored.ID != rep.ID, nil
}

// decodeRecord unmarshals a stored record and restores the structured
// identifier from its serialized string form.
func decodeRecord(data []byte) (report.Report, error) {
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return report.Report{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	id, err := identity.Parse(rep.ID)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to parse stored identifier: %w", err)
	}
	rep.Identifier = id
	return rep, nil
}
