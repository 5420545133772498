package topic

import (
	"context"
	"errors"
	"strings"

	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/processing/ai"
	"github.com/nadi-health/core/internal/pkg/apperr"
	"github.com/nadi-health/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
)

// TaskTypeBatch tags batch generation task records.
const TaskTypeBatch = "topic-batch"

type ItemStatus string

const (
	ItemDone  ItemStatus = "done"
	ItemError ItemStatus = "error"
)

type BatchItem struct {
	TopicID string     `json:"topicId"`
	Title   string     `json:"title,omitempty"`
	Status  ItemStatus `json:"status"`
	Slug    string     `json:"slug,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type BatchResult struct {
	TaskID string      `json:"taskId,omitempty"`
	Total  int         `json:"total"`
	Done   int         `json:"done"`
	Failed int         `json:"failed"`
	Items  []BatchItem `json:"items"`
}

// ArticleGenerator writes, saves and publishes the article for a topic.
type ArticleGenerator interface {
	Generate(ctx context.Context, req ai.GenerateRequest, opts ai.GenerateOptions) (*article.Article, error)
}

// Recorder keeps batch progress visible to other requests.
type Recorder interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) (*taskqueue.Task, error)
	UpdateStatus(ctx context.Context, id string, status taskqueue.TaskStatus, result interface{}, errMsg string) error
	GetByID(ctx context.Context, id string) (*taskqueue.Task, error)
}

// Runner generates articles for topics one at a time.
type Runner struct {
	topics *Service
	gen    ArticleGenerator
	tasks  Recorder
	logger *zap.Logger
}

// NewRunner wires a batch runner. tasks may be nil, in which case progress
// is only reported in the returned result.
func NewRunner(topics *Service, gen ArticleGenerator, tasks Recorder, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{topics: topics, gen: gen, tasks: tasks, logger: logger}
}

// Recording reports whether task records are kept.
func (r *Runner) Recording() bool { return r.tasks != nil }

// Start creates the task record for a batch. It returns an empty id when
// recording is disabled or the record could not be created.
func (r *Runner) Start(ctx context.Context, ids []string) (string, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return "", apperr.Validation("topicIds", "at least one topic is required")
	}
	if r.tasks == nil {
		return "", nil
	}
	task, err := r.tasks.Enqueue(ctx, TaskTypeBatch, map[string]interface{}{"topicIds": ids})
	if err != nil {
		r.logger.Warn("create batch task record failed", zap.Error(err))
		return "", nil
	}
	return task.ID, nil
}

// Run processes ids sequentially. Each item ends done or error on its own
// and a failed item never stops the batch.
func (r *Runner) Run(ctx context.Context, taskID string, ids []string, actor string) (*BatchResult, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, apperr.Validation("topicIds", "at least one topic is required")
	}

	result := &BatchResult{TaskID: taskID, Total: len(ids), Items: make([]BatchItem, 0, len(ids))}
	r.record(ctx, taskID, taskqueue.TaskRunning, result, "")

	for _, id := range ids {
		item := r.runOne(ctx, id, actor)
		if item.Status == ItemDone {
			result.Done++
		} else {
			result.Failed++
			r.logger.Warn("batch item failed", zap.String("topic", id), zap.String("error", item.Error))
		}
		result.Items = append(result.Items, item)
		r.record(ctx, taskID, taskqueue.TaskRunning, result, "")
	}

	r.record(ctx, taskID, taskqueue.TaskCompleted, result, "")
	r.logger.Info("batch finished",
		zap.String("task", taskID), zap.Int("done", result.Done), zap.Int("failed", result.Failed))
	return result, nil
}

func (r *Runner) runOne(ctx context.Context, id, actor string) BatchItem {
	item := BatchItem{TopicID: id, Status: ItemError}
	if err := ctx.Err(); err != nil {
		item.Error = err.Error()
		return item
	}

	t, err := r.topics.Get(ctx, id)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Title = t.Title

	a, err := r.gen.Generate(ctx,
		ai.GenerateRequest{Title: t.Title, Category: t.Category, Description: t.Description},
		ai.GenerateOptions{TopicID: id, Save: true, Actor: actor},
	)
	if err != nil {
		item.Error = err.Error()
		if a != nil {
			item.Slug = a.Slug
		}
		return item
	}
	item.Status = ItemDone
	item.Slug = a.Slug
	return item
}

func (r *Runner) record(ctx context.Context, taskID string, status taskqueue.TaskStatus, result *BatchResult, errMsg string) {
	if r.tasks == nil || taskID == "" {
		return
	}
	if err := r.tasks.UpdateStatus(ctx, taskID, status, result, errMsg); err != nil {
		r.logger.Warn("update batch task record failed", zap.String("task", taskID), zap.Error(err))
	}
}

// Task returns a batch task record.
func (r *Runner) Task(ctx context.Context, id string) (*taskqueue.Task, error) {
	if r.tasks == nil {
		return nil, apperr.NotFound("task", id)
	}
	task, err := r.tasks.GetByID(ctx, id)
	if errors.Is(err, taskqueue.ErrTaskNotFound) {
		return nil, apperr.NotFound("task", id)
	}
	return task, err
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
