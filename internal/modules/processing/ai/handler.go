package ai

import (
	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/middleware"
	"github.com/nadi-health/core/internal/pkg/response"
)

type generateDTO struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	TopicID     string `json:"topicId"`
	Save        bool   `json:"save"`
}

type formatDTO struct {
	Content string `json:"content"`
}

type topicsDTO struct {
	Count int    `json:"count"`
	Focus string `json:"focus"`
}

type seoDTO struct {
	Title    string `json:"title"    binding:"required"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the generation endpoints; every route runs mw.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	g := rg.Group("/ai", mw...)
	g.POST("/generate", h.generate)
	g.POST("/format", h.format)
	g.POST("/topics", h.topics)
	g.POST("/seo", h.seo)
}

// generate POST /ai/generate
func (h *Handler) generate(c *gin.Context) {
	var dto generateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Title == "" && dto.TopicID == "" {
		response.BadRequest(c, "title or topicId is required")
		return
	}

	a, err := h.svc.Generate(c.Request.Context(),
		GenerateRequest{Title: dto.Title, Category: dto.Category, Description: dto.Description},
		GenerateOptions{TopicID: dto.TopicID, Save: dto.Save, Actor: middleware.CurrentUserName(c)},
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	if dto.Save || dto.TopicID != "" {
		response.Created(c, gin.H{"article": a})
		return
	}
	response.OK(c, gin.H{"article": a})
}

// format POST /ai/format
func (h *Handler) format(c *gin.Context) {
	var dto formatDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	blocks, err := h.svc.Bridge().FormatText(c.Request.Context(), dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"blocks": blocks})
}

// topics POST /ai/topics
func (h *Handler) topics(c *gin.Context) {
	var dto topicsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	items, err := h.svc.SuggestTopics(c.Request.Context(), dto.Count, dto.Focus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"topics": items})
}

// seo POST /ai/seo
func (h *Handler) seo(c *gin.Context) {
	var dto seoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	seo, err := h.svc.Bridge().SuggestSEO(c.Request.Context(), dto.Title, dto.Category, dto.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, seo)
}
