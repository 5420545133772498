package render

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/nadi-health/core/internal/pkg/response"
)

type Handler struct {
	articles *article.Service
}

func NewHandler(articles *article.Service) *Handler { return &Handler{articles: articles} }

// RegisterRoutes mounts the public read routes. The draft preview runs
// behind adminMW.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminMW ...gin.HandlerFunc) {
	rg.GET("/public/articles/:slug", h.publicArticle)

	g := rg.Group("/render")
	g.GET("/article/:slug", h.renderArticle)
	g.GET("/markdown/:slug", h.renderMarkdown)
	g.POST("/preview", append(adminMW, h.preview)...)
}

func (h *Handler) load(c *gin.Context) (*article.Article, bool) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		response.NotFound(c)
		return nil, false
	}
	a, err := h.articles.Get(c.Request.Context(), slug)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return a, true
}

// publicArticle GET /public/articles/:slug
func (h *Handler) publicArticle(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"article": a, "nodes": Nodes(a.Blocks)})
}

// renderArticle GET /render/article/:slug
func (h *Handler) renderArticle(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	h.writeHTML(c, HTML, a)
}

// renderMarkdown GET /render/markdown/:slug
func (h *Handler) renderMarkdown(c *gin.Context) {
	a, ok := h.load(c)
	if !ok {
		return
	}
	if c.Query("format") == "raw" {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, Markdown(a))
		return
	}
	h.writeHTML(c, MarkdownHTML, a)
}

// preview POST /render/preview returns the view nodes and the HTML of an
// unsaved article.
func (h *Handler) preview(c *gin.Context) {
	var a article.Article
	if err := c.ShouldBindJSON(&a); err != nil {
		if errors.Is(err, apperr.ErrSchemaViolation) {
			response.Error(c, err)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	if a.Blocks == nil {
		a.Blocks = block.Sequence{}
	}
	html, err := HTML(&a)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"nodes": Nodes(a.Blocks), "html": html})
}

func (h *Handler) writeHTML(c *gin.Context, render func(*article.Article) (string, error), a *article.Article) {
	out, err := render(a)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, out)
}
