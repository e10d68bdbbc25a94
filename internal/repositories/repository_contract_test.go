package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "progress-tracker.com/progress-tracker/internal/models"
)

func ptr[T any](v T) *T {
	return &v
}

// runRepositoryContract exercises the behavior every TaskRepository must
// share. newRepo must return an empty repository.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	ctx := context.Background()

	t.Run("create defaults", func(t *testing.T) {
		repo := newRepo(t)

		task, err := repo.Create(ctx, model.CreateTaskInput{Title: "A"})
		require.NoError(t, err)

		assert.Len(t, task.ID, 24)
		assert.Equal(t, "A", task.Title)
		assert.Nil(t, task.Description)
		assert.False(t, task.Completed)
		assert.True(t, task.CreatedAt.Equal(task.UpdatedAt))
	})

	t.Run("find by id returns what create returned", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, model.CreateTaskInput{Title: "B", Description: ptr("x")})
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, found)

		found, err = repo.FindByID(ctx, strings.ToUpper(created.ID))
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("find by id distinguishes missing from malformed", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.FindByID(ctx, NewTaskID())
		assert.ErrorIs(t, err, ErrTaskNotFound)

		_, err = repo.FindByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
		assert.False(t, errors.Is(err, ErrTaskNotFound))
	})

	t.Run("partial update", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, model.CreateTaskInput{Title: "Write docs", Description: ptr("api")})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, model.UpdateTaskInput{Completed: ptr(true)})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Write docs", updated.Title)
		assert.Equal(t, ptr("api"), updated.Description)
		assert.True(t, updated.Completed)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		again, err := repo.Update(ctx, created.ID, model.UpdateTaskInput{Title: ptr("Write more docs")})
		require.NoError(t, err)
		assert.Equal(t, "Write more docs", again.Title)
		assert.True(t, again.Completed)
		assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))

		found, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, again, found)
	})

	t.Run("update missing and malformed", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(ctx, NewTaskID(), model.UpdateTaskInput{Title: ptr("x")})
		assert.ErrorIs(t, err, ErrTaskNotFound)

		_, err = repo.Update(ctx, "zzz", model.UpdateTaskInput{Title: ptr("x")})
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("delete twice", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, model.CreateTaskInput{Title: "A"})
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = repo.FindByID(ctx, created.ID)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("completed filter and count", func(t *testing.T) {
		repo := newRepo(t)

		for i, title := range []string{"one", "two", "three", "four"} {
			task, err := repo.Create(ctx, model.CreateTaskInput{Title: title})
			require.NoError(t, err)
			if i%2 == 1 {
				_, err = repo.Update(ctx, task.ID, model.UpdateTaskInput{Completed: ptr(true)})
				require.NoError(t, err)
			}
		}

		filters := model.TaskFilters{Completed: ptr(true)}
		done, err := repo.FindAll(ctx, filters, model.Page{})
		require.NoError(t, err)
		require.Len(t, done, 2)
		for _, task := range done {
			assert.True(t, task.Completed)
		}

		n, err := repo.Count(ctx, filters)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		open, err := repo.Count(ctx, model.TaskFilters{Completed: ptr(false)})
		require.NoError(t, err)
		assert.EqualValues(t, 2, open)

		all, err := repo.Count(ctx, model.TaskFilters{})
		require.NoError(t, err)
		assert.EqualValues(t, 4, all)
	})

	t.Run("search is case insensitive over title and description", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Create(ctx, model.CreateTaskInput{Title: "Search engine"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreateTaskInput{Title: "Other", Description: ptr("needs research")})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreateTaskInput{Title: "Unrelated", Description: ptr("nothing here")})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreateTaskInput{Title: "No description"})
		require.NoError(t, err)

		filters := model.TaskFilters{Search: "Search"}
		found, err := repo.FindAll(ctx, filters, model.Page{})
		require.NoError(t, err)

		titles := make([]string, 0, len(found))
		for _, task := range found {
			titles = append(titles, task.Title)
		}
		assert.ElementsMatch(t, []string{"Search engine", "Other"}, titles)

		n, err := repo.Count(ctx, filters)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("search folds non-ASCII case", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Create(ctx, model.CreateTaskInput{Title: "ÜBERPRÜFUNG"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreateTaskInput{Title: "Ärger", Description: ptr("Größe prüfen")})
		require.NoError(t, err)

		for _, search := range []string{"ÜBERPRÜFUNG", "überprüfung", "PRÜF"} {
			found, err := repo.FindAll(ctx, model.TaskFilters{Search: search}, model.Page{})
			require.NoError(t, err)

			titles := make([]string, 0, len(found))
			for _, task := range found {
				titles = append(titles, task.Title)
			}
			if search == "PRÜF" {
				assert.ElementsMatch(t, []string{"ÜBERPRÜFUNG", "Ärger"}, titles, search)
			} else {
				assert.Equal(t, []string{"ÜBERPRÜFUNG"}, titles, search)
			}
		}

		n, err := repo.Count(ctx, model.TaskFilters{Search: "ärger"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("search treats input literally", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Create(ctx, model.CreateTaskInput{Title: "50% done"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreateTaskInput{Title: "500 done"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreateTaskInput{Title: "a.b"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.CreateTaskInput{Title: "axb"})
		require.NoError(t, err)

		found, err := repo.FindAll(ctx, model.TaskFilters{Search: "0%"}, model.Page{})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "50% done", found[0].Title)

		found, err = repo.FindAll(ctx, model.TaskFilters{Search: "a.b"}, model.Page{})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "a.b", found[0].Title)
	})

	t.Run("pagination newest first", func(t *testing.T) {
		repo := newRepo(t)

		var ids []string
		for _, title := range []string{"oldest", "middle", "newest"} {
			task, err := repo.Create(ctx, model.CreateTaskInput{Title: title})
			require.NoError(t, err)
			ids = append(ids, task.ID)
			time.Sleep(2 * time.Millisecond)
		}

		all, err := repo.FindAll(ctx, model.TaskFilters{}, model.Page{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "newest", all[0].Title)
		assert.Equal(t, "oldest", all[2].Title)

		page, err := repo.FindAll(ctx, model.TaskFilters{}, model.Page{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, ids[1], page[0].ID)
		assert.Equal(t, ids[0], page[1].ID)

		empty, err := repo.FindAll(ctx, model.TaskFilters{}, model.Page{Limit: 10, Offset: 5})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("default limit", func(t *testing.T) {
		repo := newRepo(t)

		for i := 0; i < model.DefaultListLimit+5; i++ {
			_, err := repo.Create(ctx, model.CreateTaskInput{Title: "bulk"})
			require.NoError(t, err)
		}

		tasks, err := repo.FindAll(ctx, model.TaskFilters{}, model.Page{})
		require.NoError(t, err)
		assert.Len(t, tasks, model.DefaultListLimit)

		n, err := repo.Count(ctx, model.TaskFilters{})
		require.NoError(t, err)
		assert.EqualValues(t, model.DefaultListLimit+5, n)
	})

	t.Run("ping", func(t *testing.T) {
		repo := newRepo(t)
		assert.NoError(t, repo.Ping(ctx))
	})
}
