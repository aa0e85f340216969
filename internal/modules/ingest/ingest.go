// Package ingest orchestrates the document ingestion pipeline: fetch the
// PDF, extract per-page text, chunk, embed, and upsert into the vector
// index. Ingestion is idempotent per document key and all-or-nothing: the
// index is only written after every embedding succeeded.
package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/pdfwise/core/internal/pkg/chunker"
	"github.com/pdfwise/core/internal/pkg/embeddings"
	"github.com/pdfwise/core/internal/pkg/pdftext"
	"github.com/pdfwise/core/internal/pkg/storage"
	"github.com/pdfwise/core/internal/pkg/vectorstore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrInFlight reports that an ingestion for the same file key is already
// running. Ingestions for different keys proceed in parallel.
var ErrInFlight = errors.New("ingestion already in flight for this key")

const (
	chunkConcurrency = 4
	embedConcurrency = 8
	lockTTL          = 10 * time.Minute
	lockKeyPrefix    = "pw:ingest:lock:"
)

// Summary reports what one ingestion produced.
type Summary struct {
	FileKey   string `json:"file_key"`
	Namespace string `json:"namespace"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
}

// Service wires the pipeline's collaborators. Each is injected so tests can
// substitute fakes.
type Service struct {
	store     storage.ObjectStore
	extractor pdftext.Extractor
	embedder  embeddings.Embedder
	index     vectorstore.Index
	locker    Locker
	log       *zap.Logger
}

func NewService(store storage.ObjectStore, extractor pdftext.Extractor, embedder embeddings.Embedder, index vectorstore.Index, locker Locker, log *zap.Logger) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		locker:    locker,
		log:       log,
	}
}

// Ingest runs the full pipeline for one file key. Safe to call repeatedly:
// chunk ids are content hashes, so unchanged content overwrites in place.
func (s *Service) Ingest(ctx context.Context, fileKey string) (*Summary, error) {
	lockKey := lockKeyPrefix + fileKey
	acquired, err := s.locker.Acquire(ctx, lockKey, lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrInFlight, fileKey)
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.log.Warn("release ingest lock failed", zap.String("file_key", fileKey), zap.Error(err))
		}
	}()

	// Fail fast before any expensive work.
	if err := s.index.Ping(ctx); err != nil {
		return nil, err
	}

	s.log.Info("downloading source pdf", zap.String("file_key", fileKey))
	data, err := s.store.Get(ctx, fileKey)
	if err != nil {
		return nil, err
	}

	pages, err := s.extractor.Extract(data)
	if err != nil {
		return nil, err
	}

	s.log.Info("splitting pdf into chunks", zap.String("file_key", fileKey), zap.Int("pages", len(pages)))
	chunks, err := splitPages(ctx, pages)
	if err != nil {
		return nil, err
	}

	s.log.Info("embedding chunks", zap.String("file_key", fileKey), zap.Int("chunks", len(chunks)))
	records, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	namespace := vectorstore.Namespace(fileKey)
	if err := s.index.Upsert(ctx, namespace, records); err != nil {
		return nil, err
	}

	s.log.Info("ingestion complete",
		zap.String("file_key", fileKey),
		zap.String("namespace", namespace),
		zap.Int("chunks", len(records)),
	)
	return &Summary{
		FileKey:   fileKey,
		Namespace: namespace,
		Pages:     len(pages),
		Chunks:    len(records),
	}, nil
}

// splitPages chunks every page. Pages are independent, so they run
// concurrently; output order follows page order regardless.
func splitPages(ctx context.Context, pages []pdftext.Page) ([]chunker.Chunk, error) {
	perPage := make([][]chunker.Chunk, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(chunkConcurrency)
	for i, page := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perPage[i] = chunker.Split(page.Text, page.Number)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []chunker.Chunk
	for _, cs := range perPage {
		all = append(all, cs...)
	}
	return all, nil
}

// embedChunks embeds every chunk with bounded concurrency. One failed
// embedding aborts the batch: a half-populated namespace would silently
// degrade retrieval quality.
func (s *Service) embedChunks(ctx context.Context, chunks []chunker.Chunk) ([]vectorstore.Record, error) {
	records := make([]vectorstore.Record, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, c := range chunks {
		g.Go(func() error {
			vec, err := s.embedder.Embed(ctx, c.Text)
			if err != nil {
				return err
			}
			records[i] = vectorstore.Record{
				ID:     contentHash(c.Text),
				Values: vec,
				Metadata: vectorstore.Metadata{
					Text:       c.Text,
					PageNumber: c.PageNumber,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// contentHash derives the chunk id from its content, making re-upserts of
// identical content overwrite instead of duplicate.
func contentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
