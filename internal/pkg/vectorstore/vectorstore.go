// Package vectorstore is a thin client over the per-document vector index.
package vectorstore

import (
	"context"
	"errors"
)

// ErrIndexUnavailable reports that the vector index cannot be reached. It is
// a fatal precondition for ingestion; retrieval degrades to empty context.
var ErrIndexUnavailable = errors.New("vector index unavailable")

// Metadata travels with every stored vector.
type Metadata struct {
	Text       string
	PageNumber int
}

// Record is one upserted vector. ID is a content hash, so re-upserting
// identical content overwrites instead of duplicating.
type Record struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Match is one query result, ordered by descending similarity.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Index is the vector database contract. Namespaces isolate documents from
// one another; a query never crosses namespaces.
type Index interface {
	// Ping verifies connectivity by listing available indexes.
	Ping(ctx context.Context) error
	// Upsert writes records into the namespace, overwriting by id.
	Upsert(ctx context.Context, namespace string, records []Record) error
	// Query returns the topK nearest matches with metadata.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
	// DeleteNamespace removes every vector in the namespace.
	DeleteNamespace(ctx context.Context, namespace string) error
}

// Namespace derives the index namespace for a document's storage key. The
// transform is deterministic: ASCII code points pass through, everything
// else maps to a fixed placeholder so the result satisfies index naming
// constraints.
func Namespace(fileKey string) string {
	out := make([]byte, 0, len(fileKey))
	for _, r := range fileKey {
		if r < 128 {
			out = append(out, byte(r))
		} else {
			out = append(out, 'x')
		}
	}
	return string(out)
}
