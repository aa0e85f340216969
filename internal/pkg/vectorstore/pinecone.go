package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// upsertBatchSize bounds one upsert call; a full ingestion batches into as
// few calls as the limit allows.
const upsertBatchSize = 100

// Pinecone implements Index against a single named Pinecone index.
type Pinecone struct {
	client *pinecone.Client
	index  string

	mu   sync.Mutex
	host string // resolved lazily, cached
}

// NewPinecone builds the client from an explicit API key and index name.
func NewPinecone(apiKey, index string) (*Pinecone, error) {
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone client: %w", err)
	}
	return &Pinecone{client: client, index: index}, nil
}

// Ping lists available indexes and checks the configured one exists.
func (p *Pinecone) Ping(ctx context.Context) error {
	indexes, err := p.client.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	for _, idx := range indexes {
		if idx.Name == p.index {
			return nil
		}
	}
	return fmt.Errorf("%w: index %q not found", ErrIndexUnavailable, p.index)
}

func (p *Pinecone) resolveHost(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.host != "" {
		return p.host, nil
	}
	idx, err := p.client.DescribeIndex(ctx, p.index)
	if err != nil {
		return "", fmt.Errorf("%w: describe index: %v", ErrIndexUnavailable, err)
	}
	p.host = idx.Host
	return p.host, nil
}

func (p *Pinecone) connect(ctx context.Context, namespace string) (*pinecone.IndexConnection, error) {
	host, err := p.resolveHost(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := p.client.Index(pinecone.NewIndexConnParams{Host: host, Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrIndexUnavailable, err)
	}
	return conn, nil
}

// Upsert writes records into the namespace in batches, overwriting by id.
func (p *Pinecone) Upsert(ctx context.Context, namespace string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	conn, err := p.connect(ctx, namespace)
	if err != nil {
		return err
	}
	defer conn.Close()

	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		vectors := make([]*pinecone.Vector, 0, end-start)
		for _, rec := range records[start:end] {
			meta, err := structpb.NewStruct(map[string]interface{}{
				"text":       rec.Metadata.Text,
				"pageNumber": rec.Metadata.PageNumber,
			})
			if err != nil {
				return fmt.Errorf("encode metadata for %s: %w", rec.ID, err)
			}
			values := rec.Values
			vectors = append(vectors, &pinecone.Vector{
				Id:       rec.ID,
				Values:   &values,
				Metadata: meta,
			})
		}

		if _, err := conn.UpsertVectors(ctx, vectors); err != nil {
			return fmt.Errorf("%w: upsert: %v", ErrIndexUnavailable, err)
		}
	}
	return nil
}

// Query returns up to topK matches ordered by descending similarity.
func (p *Pinecone) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error) {
	conn, err := p.connect(ctx, namespace)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	res, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrIndexUnavailable, err)
	}

	matches := make([]Match, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m.Vector == nil {
			continue
		}
		match := Match{ID: m.Vector.Id, Score: m.Score}
		if fields := m.Vector.Metadata.GetFields(); fields != nil {
			match.Metadata.Text = fields["text"].GetStringValue()
			match.Metadata.PageNumber = int(fields["pageNumber"].GetNumberValue())
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// DeleteNamespace removes every vector stored for one document.
func (p *Pinecone) DeleteNamespace(ctx context.Context, namespace string) error {
	conn, err := p.connect(ctx, namespace)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.DeleteAllVectorsInNamespace(ctx); err != nil {
		return fmt.Errorf("%w: delete namespace: %v", ErrIndexUnavailable, err)
	}
	return nil
}
