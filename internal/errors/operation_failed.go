package errors

import "net/http"

// Fixed messages returned when a task operation fails for any reason other
// than a missing record. The underlying cause is only logged.
var (
	ErrCreateFailed = &Exception{
		Message:    "Failed to create task",
		StatusCode: http.StatusInternalServerError,
	}
	ErrFetchTasksFailed = &Exception{
		Message:    "Failed to fetch tasks",
		StatusCode: http.StatusInternalServerError,
	}
	ErrFetchTaskFailed = &Exception{
		Message:    "Failed to fetch task",
		StatusCode: http.StatusInternalServerError,
	}
	ErrUpdateFailed = &Exception{
		Message:    "Failed to update task",
		StatusCode: http.StatusInternalServerError,
	}
	ErrDeleteFailed = &Exception{
		Message:    "Failed to delete task",
		StatusCode: http.StatusInternalServerError,
	}
)
