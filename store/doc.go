// Package store persists schema identity records so that identifiers
// computed by different processes can be compared.
//
// A Registry keeps one record per schema name under first-writer-wins
// semantics: identifiers are deterministic, so a second write for the same
// schema carries the same value and is safely dropped. The full set of
// identifiers ever recorded is kept separately, which is what makes drift
// visible: a schema whose recorded identifier no longer matches a fresh
// computation has changed shape since it was first registered.
//
// Two backends are provided: Redis for single-cluster deployments and etcd
// for installations that already run one for coordination.
package store
