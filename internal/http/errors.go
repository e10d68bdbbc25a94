package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "progress-tracker.com/progress-tracker/internal/data_models"
	apperrors "progress-tracker.com/progress-tracker/internal/errors"
	"progress-tracker.com/progress-tracker/internal/logging"
)

// NewErrorHandler renders every error as {"statusCode","message"}. Only
// *apperrors.Exception and *echo.HTTPError messages reach the client.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := resolveError(err)
		if status >= http.StatusInternalServerError && !isException(err) {
			logging.Error(c.Request().Context(), logger, err, "HTTPErrorHandler")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.ErrorResponse{StatusCode: status, Message: message})
		}
		if err != nil {
			logging.Error(c.Request().Context(), logger, err, "HTTPErrorHandler")
		}
	}
}

func resolveError(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Internal != nil {
			var inner *echo.HTTPError
			if errors.As(httpErr.Internal, &inner) {
				httpErr = inner
			}
		}
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = fmt.Sprint(httpErr.Message)
		}
		return httpErr.Code, msg
	}

	return apperrors.StatusCode(err), apperrors.Message(err)
}

func isException(err error) bool {
	var appErr *apperrors.Exception
	return errors.As(err, &appErr)
}
