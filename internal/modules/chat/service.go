// Package chat owns the conversation flow: chat lifecycle around one
// ingested PDF, message history, and the grounded streaming turn against a
// configurable model backend.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appcfg "github.com/pdfwise/core/internal/config"
	"github.com/pdfwise/core/internal/models"
	"github.com/pdfwise/core/internal/modules/ingest"
	"github.com/pdfwise/core/internal/modules/retrieval"
	"github.com/pdfwise/core/internal/pkg/storage"
	"github.com/pdfwise/core/internal/pkg/vectorstore"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const responseMaxOutputTokens = 1024

// streamFunc runs one streaming completion, invoking onDelta per text
// fragment and returning the accumulated text. Swappable in tests.
type streamFunc func(ctx context.Context, provider *appcfg.AIProvider, messages []jetapi.Message, onDelta func(string)) (string, error)

// messageStore persists and loads conversation turns. Respond writes
// through this seam so its persistence rules hold regardless of the
// backing database.
type messageStore interface {
	History(ctx context.Context, chatID string) ([]models.MessageModel, error)
	Append(ctx context.Context, msg *models.MessageModel) error
}

type gormMessages struct{ db *gorm.DB }

func (g gormMessages) History(ctx context.Context, chatID string) ([]models.MessageModel, error) {
	var messages []models.MessageModel
	err := g.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (g gormMessages) Append(ctx context.Context, msg *models.MessageModel) error {
	return g.db.WithContext(ctx).Create(msg).Error
}

type Service struct {
	db        *gorm.DB
	cfg       *appcfg.AppConfig
	ingester  *ingest.Service
	retriever *retrieval.Service
	index     vectorstore.Index
	store     storage.ObjectStore
	messages  messageStore
	stream    streamFunc
	log       *zap.Logger
}

func NewService(db *gorm.DB, cfg *appcfg.AppConfig, ingester *ingest.Service, retriever *retrieval.Service, index vectorstore.Index, store storage.ObjectStore, log *zap.Logger) *Service {
	return &Service{
		db:        db,
		cfg:       cfg,
		ingester:  ingester,
		retriever: retriever,
		index:     index,
		store:     store,
		messages:  gormMessages{db: db},
		stream:    streamLanguageModel,
		log:       log,
	}
}

// CreateChat ingests the uploaded PDF and, only once the namespace is
// populated, persists the chat row. A chat never exists without at least
// one completed ingestion attempt behind it.
func (s *Service) CreateChat(ctx context.Context, userID, fileKey, pdfName string) (*models.ChatModel, error) {
	if _, err := s.ingester.Ingest(ctx, fileKey); err != nil {
		return nil, err
	}

	chat := models.ChatModel{
		PDFName: pdfName,
		PDFURL:  s.store.URL(fileKey),
		FileKey: fileKey,
		UserID:  userID,
	}
	if err := s.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChat loads one chat scoped to its owner.
func (s *Service) GetChat(ctx context.Context, id, userID string) (*models.ChatModel, error) {
	var chat models.ChatModel
	err := s.db.WithContext(ctx).First(&chat, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// DeleteChat removes the chat row (children cascade) and tears down the
// vector namespace. A failed teardown is logged, not surfaced: orphaned
// vectors are unreachable once the row is gone.
func (s *Service) DeleteChat(ctx context.Context, chat *models.ChatModel) error {
	if err := s.db.WithContext(ctx).Delete(&models.ChatModel{}, "id = ?", chat.ID).Error; err != nil {
		return err
	}
	namespace := vectorstore.Namespace(chat.FileKey)
	if err := s.index.DeleteNamespace(context.WithoutCancel(ctx), namespace); err != nil {
		s.log.Warn("namespace teardown failed",
			zap.String("chat_id", chat.ID),
			zap.String("namespace", namespace),
			zap.Error(err),
		)
	}
	return nil
}

// ListMessages returns the chat's messages in conversation order.
func (s *Service) ListMessages(ctx context.Context, chatID string) ([]models.MessageModel, error) {
	return s.messages.History(ctx, chatID)
}

// Respond runs one conversation turn: persist the user message, retrieve
// grounding context, stream the model's answer through onDelta, and persist
// the assistant message only after a clean, non-empty completion. A
// cancelled stream persists nothing beyond the user message.
func (s *Service) Respond(ctx context.Context, chat *models.ChatModel, content, modelName string, onDelta func(string)) (string, error) {
	provider := s.selectProvider(modelName)
	if provider == nil {
		return "", fmt.Errorf("unknown model: %s", modelName)
	}

	history, err := s.ListMessages(ctx, chat.ID)
	if err != nil {
		return "", err
	}

	userMsg := models.MessageModel{ChatID: chat.ID, Content: content, Role: models.RoleUser}
	if err := s.messages.Append(ctx, &userMsg); err != nil {
		return "", err
	}

	contextBlock := s.retriever.GetDynamicContext(ctx, content, chat.FileKey)
	messages := buildMessages(provider.Name, contextBlock, history, content)

	full, err := s.stream(ctx, provider, messages, onDelta)
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		s.log.Info("stream cancelled, assistant message not persisted", zap.String("chat_id", chat.ID))
		return full, ctx.Err()
	}
	if strings.TrimSpace(full) == "" {
		return "", errors.New("empty response from model")
	}

	assistantMsg := models.MessageModel{ChatID: chat.ID, Content: full, Role: models.RoleSystem}
	if err := s.messages.Append(context.WithoutCancel(ctx), &assistantMsg); err != nil {
		return full, err
	}
	return full, nil
}

// selectProvider resolves the requested model name, defaulting to the
// first configured provider when the client does not choose.
func (s *Service) selectProvider(modelName string) *appcfg.AIProvider {
	if modelName == "" {
		if len(s.cfg.AI.Providers) == 0 {
			return nil
		}
		return &s.cfg.AI.Providers[0]
	}
	return s.cfg.Provider(modelName)
}

// buildMessages assembles the prompt: grounding system prompt, prior turns
// in order, then the new user message.
func buildMessages(modelName, contextBlock string, history []models.MessageModel, content string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, len(history)+2)
	messages = append(messages, &jetapi.SystemMessage{Content: buildSystemPrompt(modelName, contextBlock)})
	for _, m := range history {
		switch m.Role {
		case models.RoleUser:
			messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(m.Content)})
		case models.RoleSystem:
			messages = append(messages, &jetapi.AssistantMessage{Content: jetapi.ContentFromText(m.Content)})
		}
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(content)})
	return messages
}

// streamLanguageModel is the production streamFunc backed by the unified
// model API.
func streamLanguageModel(ctx context.Context, provider *appcfg.AIProvider, messages []jetapi.Message, onDelta func(string)) (string, error) {
	model, err := languageModel(provider)
	if err != nil {
		return "", err
	}

	resp, err := jetai.StreamText(
		ctx,
		messages,
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(responseMaxOutputTokens),
	)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for event := range resp.Stream {
		switch evt := event.(type) {
		case *jetapi.TextDeltaEvent:
			if evt.TextDelta == "" {
				continue
			}
			full.WriteString(evt.TextDelta)
			if onDelta != nil {
				onDelta(evt.TextDelta)
			}
		case *jetapi.ErrorEvent:
			if evt.Err == nil {
				return "", errors.New("model stream returned an unknown error")
			}
			return "", fmt.Errorf("%v", evt.Err)
		}
	}
	return full.String(), nil
}
