package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitEmptyPage(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty string", in: ""},
		{name: "whitespace only", in: "   \t  "},
		{name: "newlines only", in: "\n\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Split(tt.in, 1); len(got) != 0 {
				t.Errorf("Split(%q) = %d chunks, want 0", tt.in, len(got))
			}
		})
	}
}

func TestSplitShortPage(t *testing.T) {
	chunks := Split("The capital of France is Paris.", 3)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "The capital of France is Paris." {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
	if chunks[0].PageNumber != 3 {
		t.Errorf("page = %d, want 3", chunks[0].PageNumber)
	}
}

func TestSplitRemovesNewlines(t *testing.T) {
	chunks := Split("line one\nline two\nline three", 1)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if strings.Contains(chunks[0].Text, "\n") {
		t.Errorf("chunk text still contains newline: %q", chunks[0].Text)
	}
	if chunks[0].Text != "line oneline twoline three" {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
}

func TestSplitLongPageBoundsAndOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	chunks := Split(b.String(), 7)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Text == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if n := utf8.RuneCountInString(c.Text); n > ChunkSize {
			t.Errorf("chunk %d has %d runes, exceeds %d", i, n, ChunkSize)
		}
		if c.PageNumber != 7 {
			t.Errorf("chunk %d page = %d, want 7", i, c.PageNumber)
		}
	}

	// Consecutive chunks share overlapping text.
	first, second := chunks[0], chunks[1]
	tail := first.Text[len(first.Text)-40:]
	if !strings.Contains(second.Text, tail) {
		t.Errorf("chunk 1 does not overlap chunk 0: tail %q not found", tail)
	}
}

func TestSplitUnbrokenText(t *testing.T) {
	// No separators at all: the hard rune-window cut must still bound chunks.
	long := strings.Repeat("a", 2500)
	chunks := Split(long, 1)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want >= 3", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		n := utf8.RuneCountInString(c.Text)
		if n > ChunkSize {
			t.Errorf("chunk has %d runes, exceeds %d", n, ChunkSize)
		}
		total += n
	}
	if total != 2500 {
		t.Errorf("total runes = %d, want 2500", total)
	}
}

func TestTruncateBytes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "shorter than limit", in: "hello", n: 10, want: "hello"},
		{name: "exact limit", in: "hello", n: 5, want: "hello"},
		{name: "ascii cut", in: "hello world", n: 5, want: "hello"},
		{name: "zero", in: "hello", n: 0, want: ""},
		{name: "negative", in: "hello", n: -1, want: ""},
		// "é" is 2 bytes; cutting at 3 would split the second é.
		{name: "multibyte boundary", in: "aéé", n: 4, want: "aé"},
		{name: "multibyte mid-rune", in: "日本語", n: 4, want: "日"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateBytes(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("TruncateBytes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result %q is not valid UTF-8", got)
			}
			if len(got) > tt.n && tt.n >= 0 {
				t.Errorf("result is %d bytes, exceeds %d", len(got), tt.n)
			}
		})
	}
}

func TestSplitChunkTextWithinByteCap(t *testing.T) {
	chunks := Split(strings.Repeat("日本語テキスト ", 5000), 2)
	for i, c := range chunks {
		if len(c.Text) > MaxChunkBytes {
			t.Errorf("chunk %d is %d bytes, exceeds %d", i, len(c.Text), MaxChunkBytes)
		}
		if !utf8.ValidString(c.Text) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
	}
}

func TestSplitParagraphsNotRecombined(t *testing.T) {
	// Two sentences well under the chunk size merge into one chunk.
	chunks := Split("First sentence. Second sentence.", 1)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "First sentence. Second sentence." {
		t.Errorf("chunk text = %q", chunks[0].Text)
	}
}
