package chat

import (
	"fmt"
	"strings"
)

// Sentence the model must emit verbatim when the context cannot answer the
// question. Kept identical across prompts so clients can detect it.
const insufficientInfoSentence = "I'm sorry, but the document does not contain enough information to answer that question."

const emptyContextPlaceholder = "(no relevant excerpts were found in the document)"

const defaultSystemPrompt = `You are an expert assistant answering questions about one specific PDF document. Everything you know about this document is between the context markers below.

## Grounding rules
- Answer ONLY from the content between START CONTEXT BLOCK and END OF CONTEXT BLOCK.
- If the context does not contain the answer, reply exactly: "%s"
- Never invent facts, quotes, or page numbers that are not in the context.
- When the context cites a page, keep the page reference in your answer.

## Formatting rules
Shape the answer with markdown matching the question:
- enumeration questions: a bulleted list
- how/process questions: numbered steps
- comparison questions: a markdown table
- definition questions: the bolded term, then its definition
- broad questions: a short paragraph followed by key points

START CONTEXT BLOCK
%s
END OF CONTEXT BLOCK`

// DeepSeek models follow terse imperative prompts more reliably than the
// structured rule list above.
const deepseekSystemPrompt = `Answer questions about a PDF document using only the context below.

Rules: use only the text between START CONTEXT BLOCK and END OF CONTEXT BLOCK. Do not use outside knowledge. If the answer is not in the context, reply exactly: "%s". Format answers in markdown: lists for enumerations, numbered steps for processes, tables for comparisons.

START CONTEXT BLOCK
%s
END OF CONTEXT BLOCK`

// buildSystemPrompt composes the grounding prompt for one turn. An empty
// context still produces a full prompt so the model declines gracefully
// instead of hallucinating.
func buildSystemPrompt(modelName, contextBlock string) string {
	if strings.TrimSpace(contextBlock) == "" {
		contextBlock = emptyContextPlaceholder
	}
	if strings.HasPrefix(strings.ToLower(modelName), "deepseek") {
		return fmt.Sprintf(deepseekSystemPrompt, insufficientInfoSentence, contextBlock)
	}
	return fmt.Sprintf(defaultSystemPrompt, insufficientInfoSentence, contextBlock)
}
