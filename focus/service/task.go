package service

import (
	"context"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/focus/store"
	"github.com/pkg/errors"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskStore 任务CRUD所需的数据访问
type TaskStore interface {
	CreateTask(ctx context.Context, task *entity.Task) error
	GetTaskByID(ctx context.Context, id int64) (*entity.Task, error)
	SaveTask(ctx context.Context, task *entity.Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasksByUser(ctx context.Context, userID int64) ([]*entity.Task, error)
}

type TaskService struct {
	store TaskStore
}

func NewTaskService(s TaskStore) *TaskService {
	return &TaskService{store: s}
}

// TaskUpsert 任务创建/更新入参
type TaskUpsert struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	EstimateMinutes int    `json:"estimateMinutes"`
	Completed       bool   `json:"completed"`
}

func (s *TaskService) Create(ctx context.Context, userID int64, in TaskUpsert) (*entity.Task, error) {
	if in.Title == "" {
		return nil, errors.New("任务标题不能为空")
	}
	task := &entity.Task{
		UserID:          userID,
		Title:           in.Title,
		Description:     in.Description,
		EstimateMinutes: in.EstimateMinutes,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, errors.WithMessagef(err, "创建任务失败")
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (*entity.Task, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListByUser(ctx context.Context, userID int64) ([]*entity.Task, error) {
	return s.store.ListTasksByUser(ctx, userID)
}

func (s *TaskService) Update(ctx context.Context, id int64, in TaskUpsert) (*entity.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		task.Title = in.Title
	}
	task.Description = in.Description
	task.EstimateMinutes = in.EstimateMinutes
	task.Completed = in.Completed
	if err := s.store.SaveTask(ctx, task); err != nil {
		return nil, errors.WithMessagef(err, "更新任务失败, task:%d", id)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteTask(ctx, id)
}
