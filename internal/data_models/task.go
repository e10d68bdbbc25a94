package dto

import model "progress-tracker.com/progress-tracker/internal/models"

type CreateTaskRequest struct {
	Title       *string `json:"title" validate:"required,min=1"`
	Description *string `json:"description" validate:"omitnil"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1"`
	Description *string `json:"description" validate:"omitnil"`
	Completed   *bool   `json:"completed" validate:"omitnil"`
}

type ListTasksQuery struct {
	Completed *bool  `query:"completed" validate:"omitnil"`
	Search    string `query:"search"`
	Limit     *int   `query:"limit" validate:"omitnil,min=1,max=100"`
	Offset    *int   `query:"offset" validate:"omitnil,min=0"`
}

type ListTasksResponse struct {
	Tasks []model.Task `json:"tasks"`
	Total int64        `json:"total"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (r CreateTaskRequest) ToInput() model.CreateTaskInput {
	var title string
	if r.Title != nil {
		title = *r.Title
	}
	return model.CreateTaskInput{
		Title:       title,
		Description: r.Description,
	}
}

func (r UpdateTaskRequest) ToInput() model.UpdateTaskInput {
	return model.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}

func (q ListTasksQuery) Filters() model.TaskFilters {
	return model.TaskFilters{
		Completed: q.Completed,
		Search:    q.Search,
	}
}

func (q ListTasksQuery) Page() model.Page {
	var p model.Page
	if q.Limit != nil {
		p.Limit = *q.Limit
	}
	if q.Offset != nil {
		p.Offset = *q.Offset
	}
	return p.Normalize()
}
