package services

import (
	"context"

	model "progress-tracker.com/progress-tracker/internal/models"
	repository "progress-tracker.com/progress-tracker/internal/repositories"
)

// TaskService is the seam between the HTTP layer and storage. It delegates
// every call to the repository unchanged.
type TaskService struct {
	repo repository.TaskRepository
}

func NewTaskService(repo repository.TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, input model.CreateTaskInput) (*model.Task, error) {
	return s.repo.Create(ctx, input)
}

func (s *TaskService) ListTasks(ctx context.Context, filters model.TaskFilters, page model.Page) ([]model.Task, error) {
	return s.repo.FindAll(ctx, filters, page)
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, input model.UpdateTaskInput) (*model.Task, error) {
	return s.repo.Update(ctx, id, input)
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) CountTasks(ctx context.Context, filters model.TaskFilters) (int64, error) {
	return s.repo.Count(ctx, filters)
}

func (s *TaskService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
