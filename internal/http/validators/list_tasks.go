package validators

import (
	"errors"

	"github.com/labstack/echo/v4"

	dto "progress-tracker.com/progress-tracker/internal/data_models"
	apperrors "progress-tracker.com/progress-tracker/internal/errors"
)

// ValidateListTasksQuery parses the string-encoded query parameters. A
// parameter that is absent stays nil so it does not filter.
func ValidateListTasksQuery(c echo.Context, q *dto.ListTasksQuery) error {
	params := c.QueryParams()
	b := echo.QueryParamsBinder(c)

	if params.Has("completed") {
		var completed bool
		b.Bool("completed", &completed)
		q.Completed = &completed
	}
	if params.Has("limit") {
		var limit int
		b.Int("limit", &limit)
		q.Limit = &limit
	}
	if params.Has("offset") {
		var offset int
		b.Int("offset", &offset)
		q.Offset = &offset
	}
	b.String("search", &q.Search)

	if err := b.BindError(); err != nil {
		var bindErr *echo.BindingError
		if errors.As(err, &bindErr) {
			return apperrors.NewValidation(bindErr.Field + " has an invalid value")
		}
		return apperrors.ErrInvalidQuery
	}

	return c.Validate(q)
}
