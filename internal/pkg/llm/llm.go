// Package llm holds the non-streaming generation clients used to produce
// study artifacts: chat completions with strict JSON output, and speech
// synthesis for podcast audio.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/pdfwise/core/internal/config"
)

// ErrMalformedResponse reports that the model returned output the caller
// could not parse. Batches built from such output are rejected wholesale;
// nothing is partially persisted.
var ErrMalformedResponse = errors.New("malformed response from model")

// Completer runs one non-streaming completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// Synthesizer turns text into spoken audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OpenAI implements Completer and Synthesizer over the OpenAI API.
type OpenAI struct {
	client   openaiclient.Client
	model    string
	ttsModel string
	voice    string
}

func NewOpenAI(apiKey, model string, tts config.TTSOptions) *OpenAI {
	return &OpenAI{
		client: openaiclient.NewClient(
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		),
		model:    model,
		ttsModel: tts.Model,
		voice:    tts.Voice,
	}
}

func (o *OpenAI) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openaiclient.SystemMessage(systemPrompt))
	}
	messages = append(messages, openaiclient.UserMessage(prompt))

	resp, err := o.client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model:    openaiclient.ChatModel(o.model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// Synthesize renders text as MP3 audio.
func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.Audio.Speech.New(ctx, openaiclient.AudioSpeechNewParams{
		Model:          openaiclient.SpeechModel(o.ttsModel),
		Voice:          openaiclient.AudioSpeechNewParamsVoice(o.voice),
		Input:          text,
		ResponseFormat: openaiclient.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// UnmarshalJSON decodes a model response into out, tolerating markdown
// fences and surrounding prose. Anything that still fails to parse maps to
// ErrMalformedResponse.
func UnmarshalJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
}

// TruncatePrompt caps text at maxRunes to keep prompts inside the model's
// input budget.
func TruncatePrompt(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
