package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/models"
	"pdf-chat/internal/rag"
)

type ChatRequest struct {
	Question string `json:"question" binding:"required"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// Handler serves the chat endpoint. Ingestion must have completed before
// the router starts serving; the handler never mutates the index.
type Handler struct {
	rag *rag.RAG
}

func NewHandler(r *rag.RAG) *Handler {
	return &Handler{rag: r}
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer, err := h.rag.Answer(c.Request.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Msg("failed to answer question")
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrGenerationUnavailable) || errors.Is(err, models.ErrIndexUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ChatResponse{Answer: answer})
}

// Router builds the HTTP front end: POST /chat answers one question per
// request, GET /healthz reports liveness.
func Router(r *rag.RAG) *gin.Engine {
	h := NewHandler(r)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/chat", h.Chat)
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return engine
}
