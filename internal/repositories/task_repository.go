package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	model "progress-tracker.com/progress-tracker/internal/models"
)

var (
	// ErrTaskNotFound is returned by FindByID and Update when no record has
	// the requested id.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidID marks an identifier the store cannot parse. It is not a
	// not-found condition.
	ErrInvalidID = errors.New("invalid task id")
)

type TaskRepository interface {
	Create(ctx context.Context, input model.CreateTaskInput) (*model.Task, error)
	FindAll(ctx context.Context, filters model.TaskFilters, page model.Page) ([]model.Task, error)
	FindByID(ctx context.Context, id string) (*model.Task, error)
	Update(ctx context.Context, id string, input model.UpdateTaskInput) (*model.Task, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filters model.TaskFilters) (int64, error)
	Ping(ctx context.Context) error
}

// NewTaskID returns a fresh 24-hex-character object id.
func NewTaskID() string {
	return primitive.NewObjectID().Hex()
}

func parseTaskID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return oid, nil
}
