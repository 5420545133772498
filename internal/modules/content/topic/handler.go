package topic

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/middleware"
	"github.com/nadi-health/core/internal/models"
	"github.com/nadi-health/core/internal/pkg/response"
)

type batchDTO struct {
	TopicIDs []string `json:"topicIds" binding:"required"`
	// Async returns immediately with a task id. It needs task records.
	Async bool `json:"async"`
}

type listQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending published"`
}

type Handler struct {
	svc         *Service
	runner      *Runner
	onBatchDone func(ctx context.Context)
}

func NewHandler(svc *Service, runner *Runner) *Handler {
	return &Handler{svc: svc, runner: runner}
}

// OnBatchDone registers fn to run once a batch has finished saving,
// including batches that complete after an async 202.
func (h *Handler) OnBatchDone(fn func(ctx context.Context)) *Handler {
	h.onBatchDone = fn
	return h
}

func (h *Handler) batchDone(ctx context.Context) {
	if h.onBatchDone != nil {
		h.onBatchDone(ctx)
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminMW ...gin.HandlerFunc) {
	t := rg.Group("/topics", adminMW...)
	t.GET("", h.list)
	t.GET("/:id", h.get)
	t.DELETE("/:id", h.delete)
	t.POST("/batch", h.batch)

	rg.GET("/tasks/:id", append(adminMW, h.task)...)
}

// list GET /topics
func (h *Handler) list(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	topics, err := h.svc.List(c.Request.Context(), models.TopicStatus(q.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, topics)
}

// get GET /topics/:id
func (h *Handler) get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, t)
}

// delete DELETE /topics/:id
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// batch POST /topics/batch
func (h *Handler) batch(c *gin.Context) {
	var dto batchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if dto.Async && !h.runner.Recording() {
		response.BadRequest(c, "async batches need redis task records")
		return
	}

	ctx := c.Request.Context()
	taskID, err := h.runner.Start(ctx, dto.TopicIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	actor := middleware.CurrentUserName(c)

	if dto.Async && taskID != "" {
		bg := context.WithoutCancel(ctx)
		go func() {
			_, _ = h.runner.Run(bg, taskID, dto.TopicIDs, actor)
			h.batchDone(bg)
		}()
		c.JSON(http.StatusAccepted, gin.H{"taskId": taskID})
		return
	}

	result, err := h.runner.Run(ctx, taskID, dto.TopicIDs, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.batchDone(ctx)
	response.OK(c, result)
}

// task GET /tasks/:id
func (h *Handler) task(c *gin.Context) {
	task, err := h.runner.Task(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}
