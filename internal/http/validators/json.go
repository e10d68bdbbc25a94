package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	apperrors "progress-tracker.com/progress-tracker/internal/errors"
)

// DecodeStrictJSON decodes the request body into dst, rejecting unknown
// fields, trailing data and anything that is not a single JSON object.
func DecodeStrictJSON(c echo.Context, dst interface{}) error {
	body := c.Request().Body
	if body == nil {
		return apperrors.ErrInvalidJSON
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return apperrors.ErrInvalidJSON
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return apperrors.NewValidation("request body must be a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return apperrors.ErrInvalidJSON
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return apperrors.ErrInvalidJSON
	}

	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.NewValidation(fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.String()))
	}

	const unknownPrefix = "json: unknown field "
	if msg := err.Error(); len(msg) > len(unknownPrefix) && msg[:len(unknownPrefix)] == unknownPrefix {
		return apperrors.NewValidation("property " + msg[len(unknownPrefix):] + " should not exist")
	}

	return apperrors.ErrInvalidJSON
}
