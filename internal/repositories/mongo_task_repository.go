package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	model "progress-tracker.com/progress-tracker/internal/models"
)

const TasksCollection = "tasks"

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description,omitempty"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDocument) toTask() *model.Task {
	return &model.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type MongoTaskRepository struct {
	collection *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{collection: db.Collection(TasksCollection)}
}

// EnsureIndexes creates the indexes list queries rely on. It is idempotent.
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "completed", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) Create(ctx context.Context, input model.CreateTaskInput) (*model.Task, error) {
	now := model.Now()
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return doc.toTask(), nil
}

func (r *MongoTaskRepository) FindAll(ctx context.Context, filters model.TaskFilters, page model.Page) ([]model.Task, error) {
	page = page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, buildMongoFilter(filters), opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, *doc.toTask())
	}
	return tasks, nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	oid, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}

	var doc taskDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}

	return doc.toTask(), nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, id string, input model.UpdateTaskInput) (*model.Task, error) {
	oid, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, buildMongoUpdate(input, model.Now()), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}

	return doc.toTask(), nil
}

// buildMongoUpdate returns an update pipeline so updatedAt can be advanced
// past its stored value in the same round trip. Values are wrapped in
// $literal so strings starting with "$" are not read as field paths.
func buildMongoUpdate(input model.UpdateTaskInput, now time.Time) mongo.Pipeline {
	set := bson.D{}
	if input.Title != nil {
		set = append(set, bson.E{Key: "title", Value: bson.M{"$literal": *input.Title}})
	}
	if input.Description != nil {
		set = append(set, bson.E{Key: "description", Value: bson.M{"$literal": *input.Description}})
	}
	if input.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *input.Completed})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: bson.M{
		"$max": bson.A{now, bson.M{"$add": bson.A{"$updatedAt", 1}}},
	}})

	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseTaskID(id)
	if err != nil {
		return false, err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete task %s: %w", id, err)
	}

	return res.DeletedCount > 0, nil
}

func (r *MongoTaskRepository) Count(ctx context.Context, filters model.TaskFilters) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, buildMongoFilter(filters))
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *MongoTaskRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

func buildMongoFilter(filters model.TaskFilters) bson.M {
	query := bson.M{}

	if filters.Completed != nil {
		query["completed"] = *filters.Completed
	}

	if filters.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filters.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}

	return query
}
