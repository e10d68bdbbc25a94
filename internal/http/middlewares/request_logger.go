package middleware

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"progress-tracker.com/progress-tracker/internal/redact"
)

type bodyRecorder struct {
	http.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *bodyRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// RequestLogger writes one line per request with its redacted bodies. Handler
// errors are committed through echo's error handler before logging. A request
// body that cannot be read fails the request without reaching the handler.
func RequestLogger(logger *slog.Logger, maxBodyBytes int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := req.Context()

			var (
				reqBody []byte
				readErr error
			)
			if req.Body != nil {
				reqBody, readErr = io.ReadAll(req.Body)
				if readErr == nil {
					req.Body = io.NopCloser(bytes.NewReader(reqBody))
				}
			}

			logger.DebugContext(ctx, "request received",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
			)

			res := c.Response()
			recorder := &bodyRecorder{ResponseWriter: res.Writer, body: new(bytes.Buffer)}
			res.Writer = recorder

			err := readErr
			if err == nil {
				err = next(c)
			}
			if err != nil {
				c.Error(err)
			}

			status := res.Status
			attrs := []any{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("ip", c.RealIP()),
				slog.String("requestId", res.Header().Get(echo.HeaderXRequestID)),
				slog.Int("status", status),
				slog.Int64("durationMs", time.Since(start).Milliseconds()),
				slog.Any("requestBody", SummarizeBody(reqBody, maxBodyBytes)),
				slog.Any("responseBody", SummarizeBody(recorder.body.Bytes(), maxBodyBytes)),
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.ErrorContext(ctx, "request errored", attrs...)
			case status >= http.StatusBadRequest:
				logger.WarnContext(ctx, "request failed", attrs...)
			default:
				logger.InfoContext(ctx, "request completed", attrs...)
			}

			return nil
		}
	}
}

// SummarizeBody returns the redacted JSON body, or a size summary when the
// body is too large or not JSON. Empty bodies yield nil.
func SummarizeBody(raw []byte, maxBytes int) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if len(raw) > maxBytes {
		return map[string]any{"truncated": true, "size": len(raw)}
	}
	body, ok := redact.Body(raw)
	if !ok {
		return map[string]any{"nonJSON": true, "size": len(raw)}
	}
	return body
}
