package errors

import "net/http"

var ErrInvalidQuery = &Exception{
	Message:    "invalid query parameters",
	StatusCode: http.StatusBadRequest,
}
