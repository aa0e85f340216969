// Package retrieval turns a user query into a bounded, page-attributed
// context block drawn from the document's vector namespace. Failures from
// the embedding service or the index degrade to empty context instead of
// failing the conversation turn.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdfwise/core/internal/pkg/chunker"
	"github.com/pdfwise/core/internal/pkg/embeddings"
	"github.com/pdfwise/core/internal/pkg/vectorstore"
	"go.uber.org/zap"
)

const (
	topK            = 5
	scoreThreshold  = 0.7
	maxContextBytes = 3000
)

// QueryType is the coarse shape of a question, used to pick fallback
// queries when direct retrieval comes back empty. Classification is a
// fixed keyword lookup so results stay deterministic.
type QueryType string

const (
	QueryComparison  QueryType = "comparison"
	QueryExplanation QueryType = "explanation"
	QueryList        QueryType = "list"
	QueryGeneric     QueryType = "generic"
)

var typeFallbacks = map[QueryType][]string{
	QueryComparison:  {"differences", "similarities", "comparison of"},
	QueryExplanation: {"explanation", "reasons", "causes"},
	QueryList:        {"list of", "types of", "examples of"},
}

var genericFallbacks = []string{"introduction", "summary", "main points", "key concepts"}

// Classify buckets a query by keyword. Order matters: comparison wins over
// explanation ("how do these differ" is a comparison).
func Classify(query string) QueryType {
	q := strings.ToLower(strings.TrimSpace(query))
	switch {
	case strings.Contains(q, "compare") || strings.Contains(q, "difference"):
		return QueryComparison
	case strings.HasPrefix(q, "why") || strings.HasPrefix(q, "how"):
		return QueryExplanation
	case strings.Contains(q, "list") || strings.Contains(q, "what are"):
		return QueryList
	default:
		return QueryGeneric
	}
}

type Service struct {
	embedder embeddings.Embedder
	index    vectorstore.Index
	log      *zap.Logger
}

func NewService(embedder embeddings.Embedder, index vectorstore.Index, log *zap.Logger) *Service {
	return &Service{embedder: embedder, index: index, log: log}
}

// GetContext embeds the query, searches the file's namespace, and formats
// the matches scoring above the similarity threshold into a single block
// capped at maxContextBytes. Returns "" when nothing relevant is found or
// when a collaborator fails; an ungrounded answer beats an error page.
func (s *Service) GetContext(ctx context.Context, query, fileKey string) string {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.log.Warn("query embedding failed, proceeding without context",
			zap.String("file_key", fileKey), zap.Error(err))
		return ""
	}

	matches, err := s.index.Query(ctx, vectorstore.Namespace(fileKey), vec, topK)
	if err != nil {
		s.log.Warn("vector query failed, proceeding without context",
			zap.String("file_key", fileKey), zap.Error(err))
		return ""
	}

	var parts []string
	for _, m := range matches {
		if m.Score <= scoreThreshold {
			continue
		}
		parts = append(parts, fmt.Sprintf("**(Page %d):** %s", m.Metadata.PageNumber, m.Metadata.Text))
	}
	if len(parts) == 0 {
		return ""
	}
	return chunker.TruncateBytes(strings.Join(parts, "\n\n"), maxContextBytes)
}

// GetDynamicContext is GetContext with a fallback ladder for queries that
// miss directly. Vague or pronoun-heavy questions often fail top-K
// similarity; canned broader queries recover usable context without an
// extra LLM round trip. Type-specific fallbacks run before generic ones,
// and the first non-empty result short-circuits the rest.
func (s *Service) GetDynamicContext(ctx context.Context, query, fileKey string) string {
	if out := s.GetContext(ctx, query, fileKey); out != "" {
		return out
	}

	qt := Classify(query)
	s.log.Info("direct retrieval empty, trying fallbacks",
		zap.String("file_key", fileKey), zap.String("query_type", string(qt)))

	for _, fq := range typeFallbacks[qt] {
		if ctx.Err() != nil {
			return ""
		}
		if out := s.GetContext(ctx, fq, fileKey); out != "" {
			return out
		}
	}
	for _, fq := range genericFallbacks {
		if ctx.Err() != nil {
			return ""
		}
		if out := s.GetContext(ctx, fq, fileKey); out != "" {
			return out
		}
	}
	return ""
}
