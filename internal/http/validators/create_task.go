package validators

import (
	"github.com/labstack/echo/v4"

	dto "progress-tracker.com/progress-tracker/internal/data_models"
)

func ValidateCreateTaskRequest(c echo.Context, r *dto.CreateTaskRequest) error {
	if err := DecodeStrictJSON(c, r); err != nil {
		return err
	}
	return c.Validate(r)
}
