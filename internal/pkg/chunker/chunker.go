package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// ChunkSize is the target chunk length in runes.
	ChunkSize = 1000
	// ChunkOverlap is how many trailing runes carry over into the next chunk.
	ChunkOverlap = 200
	// MaxChunkBytes caps stored chunk text. The vector index rejects
	// metadata larger than this.
	MaxChunkBytes = 36000
)

// Chunk is a bounded slice of a page's text, the unit of retrieval.
type Chunk struct {
	Text       string
	PageNumber int
}

// separators are tried in order: paragraph, sentence, word, then a hard
// rune-window cut as the last resort.
var separators = []string{"\n\n", ". ", " ", ""}

// Split breaks one page of extracted text into overlapping chunks tagged
// with the page number. Newlines are removed first so splitting operates on
// a single logical line; an empty page yields no chunks.
func Split(pageText string, pageNumber int) []Chunk {
	text := strings.NewReplacer("\n", "", "\r", "").Replace(pageText)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	pieces := splitRecursive(text, separators)

	chunks := make([]Chunk, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:       TruncateBytes(p, MaxChunkBytes),
			PageNumber: pageNumber,
		})
	}
	return chunks
}

// splitRecursive splits on the first separator present in text, merges the
// resulting fragments into chunks near ChunkSize, and recurses with finer
// separators on any fragment that is still too large.
func splitRecursive(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var finer []string
	for i, s := range seps {
		if s == "" || strings.Contains(text, s) {
			sep = s
			finer = seps[i+1:]
			break
		}
	}

	splits := splitKeepSep(text, sep)

	var out []string
	var small []string
	for _, s := range splits {
		if utf8.RuneCountInString(s) < ChunkSize {
			small = append(small, s)
			continue
		}
		if len(small) > 0 {
			out = append(out, mergeSplits(small)...)
			small = nil
		}
		if len(finer) == 0 {
			out = append(out, s)
		} else {
			out = append(out, splitRecursive(s, finer)...)
		}
	}
	if len(small) > 0 {
		out = append(out, mergeSplits(small)...)
	}
	return out
}

// splitKeepSep splits text on sep keeping the separator attached to the
// preceding fragment, so merging fragments reconstructs the source exactly.
// The empty separator cuts into fixed rune windows.
func splitKeepSep(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		out := make([]string, 0, len(runes)/ChunkSize+1)
		for i := 0; i < len(runes); i += ChunkSize {
			end := i + ChunkSize
			if end > len(runes) {
				end = len(runes)
			}
			out = append(out, string(runes[i:end]))
		}
		return out
	}
	return strings.SplitAfter(text, sep)
}

// mergeSplits packs consecutive fragments into chunks of at most ChunkSize
// runes, carrying ChunkOverlap runes of trailing fragments into the next
// chunk.
func mergeSplits(splits []string) []string {
	var out []string
	var window []string
	windowLen := 0

	for _, s := range splits {
		l := utf8.RuneCountInString(s)
		if windowLen+l > ChunkSize && windowLen > 0 {
			out = append(out, strings.Join(window, ""))
			for windowLen > ChunkOverlap || (windowLen+l > ChunkSize && windowLen > 0) {
				windowLen -= utf8.RuneCountInString(window[0])
				window = window[1:]
				if len(window) == 0 {
					break
				}
			}
		}
		window = append(window, s)
		windowLen += l
	}
	if len(window) > 0 {
		if joined := strings.Join(window, ""); strings.TrimSpace(joined) != "" {
			out = append(out, joined)
		}
	}
	return out
}

// TruncateBytes cuts s to at most n bytes without ever ending on a partial
// UTF-8 sequence: trailing bytes of a cut multi-byte character are dropped.
func TruncateBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r == utf8.RuneError && size == 1 {
			cut = cut[:len(cut)-1]
			continue
		}
		break
	}
	return cut
}
