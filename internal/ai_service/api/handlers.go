package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"FlousWise/internal/ai_service/service"
	"FlousWise/internal/faults"
	"FlousWise/internal/profile"
)

// HealthChecker 是各个依赖暴露给 /health 的探测函数。
type HealthChecker func(ctx context.Context) error

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	service  *service.Service
	profiles *profile.Service
	health   map[string]HealthChecker
}

// NewHandler 创建一个新的 Handler 实例。
func NewHandler(s *service.Service, profiles *profile.Service, health map[string]HealthChecker) *Handler {
	return &Handler{service: s, profiles: profiles, health: health}
}

// QueryRequest 定义了提问请求的 JSON 结构。
// ConversationID 缺省时开启新会话。
type QueryRequest struct {
	Question       string `json:"question" binding:"required"`
	ConversationID string `json:"conversationId"`
}

// Query 处理 POST /api/v1/chat/query。
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("userID")
	token := c.GetString("token")

	answer, err := h.service.Query(c.Request.Context(), userID, token, req.Question, req.ConversationID)
	if err != nil {
		h.writeQueryError(c, err)
		return
	}

	resp := gin.H{
		"conversationId": answer.ConversationID,
		"answer":         answer.Answer,
	}
	if answer.Degraded {
		resp["degraded"] = true
		resp["degradations"] = answer.Degradations
	}
	c.JSON(http.StatusOK, resp)
}

// writeQueryError 把管线错误类别映射为 HTTP 状态码。
func (h *Handler) writeQueryError(c *gin.Context, err error) {
	var (
		notFound   *faults.ProfileNotFound
		embErr     *faults.EmbeddingError
		genErr     *faults.GenerationError
		genTimeout *faults.GenerationTimeout
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "理财档案尚未建立，请先完成建档"})
	case errors.As(err, &embErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "无法处理该问题，请换一种问法"})
	case errors.As(err, &genErr), errors.As(err, &genTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI 服务暂时不可用，请稍后再试"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Conversations 处理 GET /api/v1/chat/conversations。
func (h *Handler) Conversations(c *gin.Context) {
	userID := c.GetString("userID")

	summaries, err := h.service.Conversations(c.Request.Context(), userID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// History 处理 GET /api/v1/chat/history/:conversationId。
func (h *Handler) History(c *gin.Context) {
	userID := c.GetString("userID")
	conversationID := c.Param("conversationId")

	messages, err := h.service.History(c.Request.Context(), userID, conversationID, 200)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversationId": conversationID, "messages": messages})
}

// InvalidateProfile 处理 POST /api/v1/profile/invalidate。
// Finance Service 在档案更新后调用它，丢弃本服务的缓存副本。
func (h *Handler) InvalidateProfile(c *gin.Context) {
	userID := c.GetString("userID")
	h.profiles.Invalidate(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"message": "缓存已失效"})
}

// Health 处理 GET /health，逐个探测依赖并汇总状态。
func (h *Handler) Health(c *gin.Context) {
	status := http.StatusOK
	deps := gin.H{}
	for name, check := range h.health {
		if err := check(c.Request.Context()); err != nil {
			deps[name] = gin.H{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			deps[name] = gin.H{"status": "up"}
		}
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "dependencies": deps})
}
