package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/schema-tools/schemaid/identity"
	"github.com/schema-tools/schemaid/report"
)

// EtcdOptions configures the etcd connection.
type EtcdOptions struct {
	// Endpoints are the etcd cluster endpoints (e.g., "localhost:2379").
	Endpoints []string

	// Namespace prefixes all registry keys. Defaults to "schemaid".
	Namespace string

	// TLS configuration for secure connections
	TLS *tls.Config

	// DialTimeout is the maximum time to wait for connection establishment.
	DialTimeout time.Duration

	// RequestTimeout bounds individual etcd operations.
	RequestTimeout time.Duration
}

// EtcdRegistry implements Registry on an etcd cluster. Records live under
// <namespace>/records/<name>; the identifier set under <namespace>/ids/.
//
// Thread-safety: all methods are safe for concurrent use.
type EtcdRegistry struct {
	client         *clientv3.Client
	namespace      string
	requestTimeout time.Duration
}

// NewEtcdRegistry creates an etcd-backed registry.
func NewEtcdRegistry(opts EtcdOptions) (*EtcdRegistry, error) {
	if len(opts.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}
	if opts.Namespace == "" {
		opts.Namespace = "schemaid"
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: opts.DialTimeout,
		TLS:         opts.TLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &EtcdRegistry{
		client:         cli,
		namespace:      opts.Namespace,
		requestTimeout: opts.RequestTimeout,
	}, nil
}

func (r *EtcdRegistry) recordKey(name string) string {
	return r.namespace + "/records/" + name
}

func (r *EtcdRegistry) idKey(id string) string {
	return r.namespace + "/ids/" + id
}

// Record stores the report under its schema name. A transaction guards the
// record key so the first writer wins; the identifier key is written
// unconditionally.
func (r *EtcdRegistry) Record(ctx context.Context, rep report.Report) error {
	if rep.Name == "" {
		return ErrUnnamed
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	key := r.recordKey(rep.Name)
	_, err = r.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, string(data))).
		Commit()
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	if _, err := r.client.Put(ctx, r.idKey(rep.ID), "1"); err != nil {
		return fmt.Errorf("failed to store identifier: %w", err)
	}
	return nil
}

// Seen reports whether the identifier has ever been recorded.
func (r *EtcdRegistry) Seen(ctx context.Context, id identity.Identifier) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	resp, err := r.client.Get(ctx, r.idKey(id.String()), clientv3.WithCountOnly())
	if err != nil {
		return false, fmt.Errorf("failed to check identifier: %w", err)
	}
	return resp.Count > 0, nil
}

// Lookup returns the record stored under a schema name.
func (r *EtcdRegistry) Lookup(ctx context.Context, name string) (report.Report, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	resp, err := r.client.Get(ctx, r.recordKey(name))
	if err != nil {
		return report.Report{}, false, fmt.Errorf("failed to fetch record: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return report.Report{}, false, nil
	}

	rep, err := decodeRecord(resp.Kvs[0].Value)
	if err != nil {
		return report.Report{}, false, err
	}
	return rep, true, nil
}

// List returns all stored records.
func (r *EtcdRegistry) List(ctx context.Context) ([]report.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	resp, err := r.client.Get(ctx, r.namespace+"/records/", clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]report.Report, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		rep, err := decodeRecord(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", string(kv.Key), err)
		}
		records = append(records, rep)
	}
	return records, nil
}

// Close closes the etcd connection.
func (r *EtcdRegistry) Close() error {
	return r.client.Close()
}
