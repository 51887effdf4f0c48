// Package schemaid computes stable, deterministic identifiers for data-model
// schemas.
//
// An identifier is derived from a schema's structure and validation rules:
// two independently defined but structurally equivalent schemas always
// produce the same identifier, and any semantically meaningful change to a
// schema (a new constraint, a changed field type, a renamed field) produces a
// different one with overwhelming probability. Consumers use identifiers for
// caching, versioning, deduplication, and cross-process equality checks
// without comparing full schema objects.
//
// # Pipeline
//
// A schema source is extracted into a graph of schema nodes, behavior
// attachments (validators/serializers) are resolved into portable symbolic
// fingerprints, the graph is normalized into an order-independent, cycle-free
// canonical byte form, and the bytes are hashed into a versioned identifier:
//
//	extractor -> behavior resolver -> canonicalizer -> hasher -> identity cache
//
// The sub-packages implement the stages: schema (node model and extractors),
// behavior (attachment fingerprinting), canonical (labeling, deduplication,
// ordering, byte encoding), identity (the versioned identifier), report
// (identity reports), and store (cross-process fingerprint registries).
//
// # Usage
//
//	type User struct {
//		Name  string `json:"name" check:"value.size() > 0"`
//		Email string `json:"email"`
//	}
//
//	id, err := schemaid.IdentifierFor(schemaid.Type(User{}))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(id) // v1:3f9a...
//
// Identifiers carry an algorithm version tag ("v1:..."). Identifiers with
// different version tags are never equal; a version bump is the only
// sanctioned way for an unchanged schema's identifier to change.
//
// # Determinism and invariance
//
// By default identifiers are independent of model field declaration order,
// union member order, documentation text, and default values (default
// presence is tracked, the literal value is not). Engine options opt
// individual properties back into the identity when a consumer wants to
// track them.
//
// # Concurrency
//
// All computation is pure and synchronous. The process-wide identity cache
// is the only shared state; racing first computations of the same schema are
// resolved by idempotent overwrite, since both compute the same value.
package schemaid
