package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdfwise/core/internal/pkg/vectorstore"
	"go.uber.org/zap"
)

// scriptEmbedder returns a fixed vector and records every text it saw.
type scriptEmbedder struct {
	texts []string
	err   error
}

func (e *scriptEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

// scriptIndex maps query text (via the embedder call order) to canned
// matches. The nth Query call answers with results[n].
type scriptIndex struct {
	results [][]vectorstore.Match
	calls   int
	err     error
}

func (i *scriptIndex) Ping(context.Context) error { return nil }

func (i *scriptIndex) Upsert(context.Context, string, []vectorstore.Record) error { return nil }

func (i *scriptIndex) Query(context.Context, string, []float32, int) ([]vectorstore.Match, error) {
	if i.err != nil {
		return nil, i.err
	}
	var out []vectorstore.Match
	if i.calls < len(i.results) {
		out = i.results[i.calls]
	}
	i.calls++
	return out, nil
}

func (i *scriptIndex) DeleteNamespace(context.Context, string) error { return nil }

func match(score float64, page int, text string) vectorstore.Match {
	return vectorstore.Match{Score: float32(score), Metadata: vectorstore.Metadata{Text: text, PageNumber: page}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  QueryType
	}{
		{"Compare chapters 1 and 2", QueryComparison},
		{"what is the difference between TCP and UDP", QueryComparison},
		{"Why does the sky look blue?", QueryExplanation},
		{"How is the index built?", QueryExplanation},
		{"list the main theorems", QueryList},
		{"What are the prerequisites?", QueryList},
		{"Tell me about chapter 3", QueryGeneric},
		{"", QueryGeneric},
		// comparison keyword beats the "how" prefix
		{"how do these two approaches differences aside stack up, compare them", QueryComparison},
	}
	for _, tt := range tests {
		if got := Classify(tt.query); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestGetContextFormatsAndFilters(t *testing.T) {
	idx := &scriptIndex{results: [][]vectorstore.Match{{
		match(0.92, 3, "The capital of France is Paris."),
		match(0.71, 7, "France borders Spain."),
		match(0.70, 2, "exactly at threshold, excluded"),
		match(0.12, 9, "noise"),
	}}}
	svc := NewService(&scriptEmbedder{}, idx, zap.NewNop())

	got := svc.GetContext(context.Background(), "What is the capital of France?", "uploads/fr.pdf")
	want := "**(Page 3):** The capital of France is Paris.\n\n**(Page 7):** France borders Spain."
	if got != want {
		t.Errorf("GetContext = %q, want %q", got, want)
	}
}

func TestGetContextTruncates(t *testing.T) {
	long := strings.Repeat("a", 5000)
	idx := &scriptIndex{results: [][]vectorstore.Match{{match(0.9, 1, long)}}}
	svc := NewService(&scriptEmbedder{}, idx, zap.NewNop())

	got := svc.GetContext(context.Background(), "summary", "k")
	if len(got) > 3000 {
		t.Errorf("context is %d bytes, cap is 3000", len(got))
	}
	if !strings.HasPrefix(got, "**(Page 1):** ") {
		t.Errorf("truncation lost the page prefix: %q", got[:30])
	}
}

func TestGetContextEmptyOnNoSurvivors(t *testing.T) {
	idx := &scriptIndex{results: [][]vectorstore.Match{{match(0.4, 1, "weak"), match(0.2, 2, "weaker")}}}
	svc := NewService(&scriptEmbedder{}, idx, zap.NewNop())

	if got := svc.GetContext(context.Background(), "q", "k"); got != "" {
		t.Errorf("GetContext = %q, want empty", got)
	}
}

func TestGetContextDegradesOnEmbedderFailure(t *testing.T) {
	svc := NewService(&scriptEmbedder{err: errors.New("rate limited")}, &scriptIndex{}, zap.NewNop())
	if got := svc.GetContext(context.Background(), "q", "k"); got != "" {
		t.Errorf("GetContext = %q, want empty on embedder failure", got)
	}
}

func TestGetContextDegradesOnIndexFailure(t *testing.T) {
	svc := NewService(&scriptEmbedder{}, &scriptIndex{err: vectorstore.ErrIndexUnavailable}, zap.NewNop())
	if got := svc.GetContext(context.Background(), "q", "k"); got != "" {
		t.Errorf("GetContext = %q, want empty on index failure", got)
	}
}

func TestDynamicContextDirectHitSkipsFallbacks(t *testing.T) {
	em := &scriptEmbedder{}
	idx := &scriptIndex{results: [][]vectorstore.Match{{match(0.9, 1, "hit")}}}
	svc := NewService(em, idx, zap.NewNop())

	got := svc.GetDynamicContext(context.Background(), "compare A and B", "k")
	if got != "**(Page 1):** hit" {
		t.Errorf("GetDynamicContext = %q", got)
	}
	if len(em.texts) != 1 {
		t.Errorf("embedder called %d times, want 1", len(em.texts))
	}
}

func TestDynamicContextTypeFallbacksBeforeGeneric(t *testing.T) {
	em := &scriptEmbedder{}
	// Direct miss, first fallback ("differences") misses, second
	// ("similarities") hits. Generic ladder must never run.
	idx := &scriptIndex{results: [][]vectorstore.Match{
		nil,
		nil,
		{match(0.85, 4, "both use vectors")},
	}}
	svc := NewService(em, idx, zap.NewNop())

	got := svc.GetDynamicContext(context.Background(), "compare the two indexes", "k")
	if got != "**(Page 4):** both use vectors" {
		t.Errorf("GetDynamicContext = %q", got)
	}
	want := []string{"compare the two indexes", "differences", "similarities"}
	if len(em.texts) != len(want) {
		t.Fatalf("embedded queries %v, want %v", em.texts, want)
	}
	for i, q := range want {
		if em.texts[i] != q {
			t.Errorf("query %d = %q, want %q", i, em.texts[i], q)
		}
	}
}

func TestDynamicContextGenericLadder(t *testing.T) {
	em := &scriptEmbedder{}
	// Generic query type has no type-specific fallbacks; the ladder runs
	// directly and "summary" (second rung) hits.
	idx := &scriptIndex{results: [][]vectorstore.Match{
		nil,
		nil,
		{match(0.8, 2, "overview text")},
	}}
	svc := NewService(em, idx, zap.NewNop())

	got := svc.GetDynamicContext(context.Background(), "tell me more", "k")
	if got != "**(Page 2):** overview text" {
		t.Errorf("GetDynamicContext = %q", got)
	}
	want := []string{"tell me more", "introduction", "summary"}
	for i, q := range want {
		if em.texts[i] != q {
			t.Errorf("query %d = %q, want %q", i, em.texts[i], q)
		}
	}
	if len(em.texts) != len(want) {
		t.Errorf("embedder called %d times, want %d", len(em.texts), len(want))
	}
}

func TestDynamicContextExhaustedReturnsEmpty(t *testing.T) {
	em := &scriptEmbedder{}
	svc := NewService(em, &scriptIndex{}, zap.NewNop())

	if got := svc.GetDynamicContext(context.Background(), "why is this so", "k"); got != "" {
		t.Errorf("GetDynamicContext = %q, want empty", got)
	}
	// direct + 3 explanation fallbacks + 4 generic rungs
	if len(em.texts) != 8 {
		t.Errorf("embedder called %d times, want 8", len(em.texts))
	}
}
