package api

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport логирует исходящие запросы: метод, путь, статус, время.
// Заголовки (и bearer токен) не логируются.
type LoggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewLoggingTransport wraps next; nil next means http.DefaultTransport
func NewLoggingTransport(next http.RoundTripper, logger *slog.Logger) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingTransport{next: next, logger: logger}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}

	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		t.logger.LogAttrs(req.Context(), slog.LevelWarn, "HTTP request failed", attrs...)
		return nil, err
	}

	// Уровень по статусу ответа
	level := slog.LevelDebug
	if resp.StatusCode >= 500 {
		level = slog.LevelError
	} else if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}

	attrs = append(attrs, slog.Int("status", resp.StatusCode))
	t.logger.LogAttrs(req.Context(), level, "HTTP request", attrs...)

	return resp, nil
}
