package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	model "progress-tracker.com/progress-tracker/internal/models"
)

type taskRecord struct {
	ID          string    `gorm:"primaryKey;size:24"`
	Title       string    `gorm:"not null"`
	Description *string   `gorm:"type:text"`
	Completed   bool      `gorm:"not null;default:false;index:idx_tasks_completed"`
	CreatedAt   time.Time `gorm:"not null;index:idx_tasks_created_at;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func (r taskRecord) toTask() *model.Task {
	return &model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

// SQLiteTaskRepository keeps tasks in an embedded SQLite database. Ids are
// object ids so both stores accept and reject the same identifiers.
type SQLiteTaskRepository struct {
	db *gorm.DB
}

func NewSQLiteTaskRepository(db *gorm.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

func (r *SQLiteTaskRepository) Migrate() error {
	if err := r.db.AutoMigrate(&taskRecord{}); err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepository) Create(ctx context.Context, input model.CreateTaskInput) (*model.Task, error) {
	now := model.Now()
	record := &taskRecord{
		ID:          NewTaskID(),
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return record.toTask(), nil
}

func (r *SQLiteTaskRepository) FindAll(ctx context.Context, filters model.TaskFilters, page model.Page) ([]model.Task, error) {
	page = page.Normalize()

	var records []taskRecord
	err := r.filtered(ctx, filters).
		Order("created_at desc").
		Order("id desc").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, *rec.toTask())
	}
	return tasks, nil
}

func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	oid, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	id = oid.Hex()

	var record taskRecord
	err = r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}

	return record.toTask(), nil
}

func (r *SQLiteTaskRepository) Update(ctx context.Context, id string, input model.UpdateTaskInput) (*model.Task, error) {
	oid, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	id = oid.Hex()

	var updated *model.Task
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record taskRecord
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{
			"updated_at": model.NextUpdatedAt(record.UpdatedAt),
		}
		if input.Title != nil {
			changes["title"] = *input.Title
		}
		if input.Description != nil {
			changes["description"] = *input.Description
		}
		if input.Completed != nil {
			changes["completed"] = *input.Completed
		}

		if err := tx.Model(&record).Updates(changes).Error; err != nil {
			return err
		}
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			return err
		}

		updated = record.toTask()
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}

	return updated, nil
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseTaskID(id)
	if err != nil {
		return false, err
	}
	id = oid.Hex()

	res := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete task %s: %w", id, res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r *SQLiteTaskRepository) Count(ctx context.Context, filters model.TaskFilters) (int64, error) {
	var n int64
	if err := r.filtered(ctx, filters).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *SQLiteTaskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *SQLiteTaskRepository) filtered(ctx context.Context, filters model.TaskFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&taskRecord{})

	if filters.Completed != nil {
		query = query.Where("completed = ?", *filters.Completed)
	}

	if filters.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filters.Search)) + "%"
		query = query.Where(
			`(unicode_lower(title) LIKE ? ESCAPE '\' OR unicode_lower(COALESCE(description, '')) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}

	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
