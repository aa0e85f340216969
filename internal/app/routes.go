package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/pdfwise/core/internal/middleware"
	"github.com/pdfwise/core/internal/modules/chat"
	"github.com/pdfwise/core/internal/modules/flashcards"
	"github.com/pdfwise/core/internal/modules/ingest"
	"github.com/pdfwise/core/internal/modules/mcq"
	"github.com/pdfwise/core/internal/modules/podcast"
	"github.com/pdfwise/core/internal/modules/retrieval"
	"github.com/pdfwise/core/internal/pkg/embeddings"
	"github.com/pdfwise/core/internal/pkg/llm"
	"github.com/pdfwise/core/internal/pkg/pdftext"
	pkgredis "github.com/pdfwise/core/internal/pkg/redis"
	"github.com/pdfwise/core/internal/pkg/response"
	"github.com/pdfwise/core/internal/pkg/storage"
	"github.com/pdfwise/core/internal/pkg/taskqueue"
	"github.com/pdfwise/core/internal/pkg/vectorstore"
)

func (a *App) registerRoutes(rc *pkgredis.Client) error {
	r := a.router
	cfg := a.cfg
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(rc.Raw()))
	r.Use(middleware.Idempotence(rc.Raw()))

	// Shared collaborators
	store, err := storage.NewS3(cfg.S3)
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	index, err := vectorstore.NewPinecone(cfg.Pinecone.APIKey, cfg.Pinecone.Index)
	if err != nil {
		return fmt.Errorf("pinecone: %w", err)
	}
	extractor := pdftext.NewReader()
	embedder := embeddings.NewOpenAI(cfg.AI.OpenAIAPIKey, cfg.AI.EmbeddingModel)
	generator := llm.NewOpenAI(cfg.AI.OpenAIAPIKey, cfg.AI.GenerationModel, cfg.AI.TTS)
	taskSvc := taskqueue.NewService(rc)

	ingestSvc := ingest.NewService(store, extractor, embedder, index, ingest.NewRedisLocker(rc), a.logger)
	retrievalSvc := retrieval.NewService(embedder, index, a.logger)
	chatSvc := chat.NewService(a.db, cfg, ingestSvc, retrievalSvc, index, store, a.logger)
	flashcardsSvc := flashcards.NewService(a.db, store, extractor, generator, a.logger)
	mcqSvc := mcq.NewService(a.db, store, extractor, generator, a.logger)
	podcastSvc := podcast.NewService(a.db, store, extractor, generator, generator, taskSvc, a.logger)

	r.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	chat.NewHandler(chatSvc).RegisterRoutes(api, authMW)
	flashcards.NewHandler(flashcardsSvc, chatSvc).RegisterRoutes(api, authMW)
	mcq.NewHandler(mcqSvc, chatSvc).RegisterRoutes(api, authMW)
	podcast.NewHandler(podcastSvc, chatSvc).RegisterRoutes(api, authMW)

	return nil
}
