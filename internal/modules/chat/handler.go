package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdfwise/core/internal/middleware"
	"github.com/pdfwise/core/internal/models"
	"github.com/pdfwise/core/internal/modules/ingest"
	"github.com/pdfwise/core/internal/pkg/pagination"
	"github.com/pdfwise/core/internal/pkg/pdftext"
	"github.com/pdfwise/core/internal/pkg/response"
	"github.com/pdfwise/core/internal/pkg/storage"
	"github.com/pdfwise/core/internal/pkg/vectorstore"
	"gorm.io/gorm"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/chats", authMW)
	g.POST("", h.createChat)
	g.GET("", h.listChats)
	g.GET("/:id", h.getChat)
	g.DELETE("/:id", h.deleteChat)
	g.GET("/:id/messages", h.listMessages)
	g.POST("/:id/messages", h.sendMessage)
}

// POST /chats
func (h *Handler) createChat(c *gin.Context) {
	var dto createChatDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	chat, err := h.svc.CreateChat(c.Request.Context(), middleware.CurrentUserID(c), dto.FileKey, dto.FileName)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrInFlight):
			response.Conflict(c, "this document is already being processed")
		case errors.Is(err, storage.ErrSourceNotFound):
			response.NotFoundMsg(c, "uploaded file not found")
		case errors.Is(err, pdftext.ErrExtraction):
			response.BadRequest(c, "could not extract text from the PDF")
		case errors.Is(err, vectorstore.ErrIndexUnavailable):
			response.BadGateway(c, "vector index is unavailable")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, chat)
}

// GET /chats
func (h *Handler) listChats(c *gin.Context) {
	q := pagination.FromContext(c)
	tx := h.svc.db.WithContext(c.Request.Context()).
		Model(&models.ChatModel{}).
		Where("user_id = ?", middleware.CurrentUserID(c)).
		Order("created_at DESC")

	var chats []models.ChatModel
	pag, err := pagination.Paginate(tx, q, &chats)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, chats, pag)
}

// GET /chats/:id
func (h *Handler) getChat(c *gin.Context) {
	chat, ok := h.loadOwnedChat(c)
	if !ok {
		return
	}
	response.OK(c, chat)
}

// DELETE /chats/:id
func (h *Handler) deleteChat(c *gin.Context) {
	chat, ok := h.loadOwnedChat(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteChat(c.Request.Context(), chat); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// GET /chats/:id/messages
func (h *Handler) listMessages(c *gin.Context) {
	chat, ok := h.loadOwnedChat(c)
	if !ok {
		return
	}
	messages, err := h.svc.ListMessages(c.Request.Context(), chat.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, messages)
}

// POST /chats/:id/messages  (SSE)
func (h *Handler) sendMessage(c *gin.Context) {
	chat, ok := h.loadOwnedChat(c)
	if !ok {
		return
	}
	var dto sendMessageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sendEvent := func(eventType, data string) {
		fmt.Fprintf(c.Writer, "data: %s\n\n", fmt.Sprintf(`{"type":%q,"data":%s}`, eventType, data))
		c.Writer.Flush()
	}

	_, err := h.svc.Respond(c.Request.Context(), chat, dto.Content, dto.Model, func(token string) {
		tokenJSON, _ := json.Marshal(token)
		sendEvent("token", string(tokenJSON))
	})
	if err != nil {
		if c.Request.Context().Err() != nil {
			// Client is gone, nothing left to write.
			return
		}
		errJSON, _ := json.Marshal(err.Error())
		sendEvent("error", string(errJSON))
		return
	}
	sendEvent("done", "null")
}

// loadOwnedChat resolves :id for the current user, writing the error
// response itself when the chat is missing or foreign.
func (h *Handler) loadOwnedChat(c *gin.Context) (*models.ChatModel, bool) {
	chat, err := h.svc.GetChat(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c)
		} else {
			response.InternalError(c, err)
		}
		return nil, false
	}
	return chat, true
}
