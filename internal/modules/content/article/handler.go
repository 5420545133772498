package article

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/middleware"
	"github.com/nadi-health/core/internal/modules/content/block"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/nadi-health/core/internal/pkg/pagination"
	"github.com/nadi-health/core/internal/pkg/response"
)

const defaultLatest = 3

// Handler handles article HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the admin article routes behind adminMW and the
// public listing routes without it.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminMW ...gin.HandlerFunc) {
	public := rg.Group("/public/articles")
	public.GET("", h.page)
	public.GET("/latest", h.latest)

	a := rg.Group("/articles", adminMW...)
	a.GET("", h.list)
	a.GET("/:slug", h.get)
	a.POST("", h.create)
	a.PUT("", h.update)
	a.DELETE("", h.delete)

	a.POST("/:slug/blocks", h.insertBlock)
	a.PUT("/:slug/blocks/:index", h.replaceBlock)
	a.PATCH("/:slug/blocks/:index", h.updateBlock)
	a.DELETE("/:slug/blocks/:index", h.removeBlock)
	a.POST("/:slug/blocks/:index/move", h.moveBlock)
}

// page GET /public/articles
func (h *Handler) page(c *gin.Context) {
	items, pag, err := h.svc.Page(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// latest GET /public/articles/latest
func (h *Handler) latest(c *gin.Context) {
	var q LatestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if q.N <= 0 {
		q.N = defaultLatest
	}
	if q.N > pagination.MaxSize {
		q.N = pagination.MaxSize
	}
	items, err := h.svc.Latest(c.Request.Context(), q.N)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// list GET /articles
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// get GET /articles/:slug
func (h *Handler) get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detailResponse{Article: *a, BlockTypes: block.Types})
}

// create POST /articles
func (h *Handler) create(c *gin.Context) {
	var in Article
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.svc.Create(c.Request.Context(), in, middleware.CurrentUserName(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// update PUT /articles
func (h *Handler) update(c *gin.Context) {
	var in Article
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.svc.Update(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// delete DELETE /articles?slug=
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Query("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// insertBlock POST /articles/:slug/blocks
func (h *Handler) insertBlock(c *gin.Context) {
	var dto InsertBlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		bindError(c, err)
		return
	}

	var (
		b   block.Block
		err error
	)
	if len(dto.Block) > 0 {
		b, err = block.Parse(dto.Block)
	} else {
		b, err = block.NewEmpty(dto.Type)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	index := -1
	if dto.Index != nil {
		index = *dto.Index
	} else {
		current, err := h.svc.Get(ctx, c.Param("slug"))
		if err != nil {
			response.Error(c, err)
			return
		}
		index = len(current.Blocks)
	}

	a, err := h.svc.InsertBlock(ctx, c.Param("slug"), index, b)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// replaceBlock PUT /articles/:slug/blocks/:index
func (h *Handler) replaceBlock(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var b block.Block
	if err := c.ShouldBindJSON(&b); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.svc.ReplaceBlock(c.Request.Context(), c.Param("slug"), index, b)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// updateBlock PATCH /articles/:slug/blocks/:index
func (h *Handler) updateBlock(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.svc.UpdateBlock(c.Request.Context(), c.Param("slug"), index, fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// removeBlock DELETE /articles/:slug/blocks/:index
func (h *Handler) removeBlock(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	a, err := h.svc.RemoveBlock(c.Request.Context(), c.Param("slug"), index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

// moveBlock POST /articles/:slug/blocks/:index/move
func (h *Handler) moveBlock(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var dto MoveBlockDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		bindError(c, err)
		return
	}
	a, err := h.svc.MoveBlock(c.Request.Context(), c.Param("slug"), index, *dto.To)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, "index must be an integer")
		return 0, false
	}
	return index, true
}

// bindError keeps schema violations raised while decoding blocks distinct
// from plain malformed bodies.
func bindError(c *gin.Context, err error) {
	if errors.Is(err, apperr.ErrSchemaViolation) {
		response.Error(c, err)
		return
	}
	response.BadRequest(c, err.Error())
}
