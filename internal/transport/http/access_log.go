package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"sueca-referee/internal/logging"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

const defaultCaptureLimit = 2048

// APILogMiddleware writes one JSON access line per request to the shared log
// sink. Disabled, it passes requests through untouched.
func APILogMiddleware(enabled bool) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	logger := slog.New(slog.NewJSONHandler(logging.Writer(), nil))
	return httplog.RequestLogger(logger, &httplog.Options{
		Level:              slog.LevelInfo,
		Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
		LogRequestBody:     func(*http.Request) bool { return false },
		LogResponseBody:    func(*http.Request) bool { return false },
		LogRequestHeaders:  []string{},
		LogResponseHeaders: []string{},
		LogExtraAttrs:      accessAttrs,
	})
}

func accessAttrs(req *http.Request, _ string, _ int) []slog.Attr {
	ctx := req.Context()
	attrs := []slog.Attr{
		slog.String("request_id", chimw.GetReqID(ctx)),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	}
	rc := chi.RouteContext(ctx)
	if rc == nil {
		return attrs
	}
	if pattern := rc.RoutePattern(); pattern != "" {
		attrs = append(attrs, slog.String("route", pattern))
	}
	if id := rc.URLParam("table_id"); id != "" {
		attrs = append(attrs, slog.String("table_id", id))
	}
	return attrs
}

// CardBodyLogger attaches the submitted body and the referee's answer to the
// access line, so a disputed card can be traced back to what the table sent.
func CardBodyLogger(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = defaultCaptureLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSSERequest(r) || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}
			in, _ := io.ReadAll(io.LimitReader(r.Body, int64(limit)+1))
			r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(in), r.Body), Closer: r.Body}

			rec := &bodyRecorder{ResponseWriter: w, limit: limit}
			next.ServeHTTP(rec, r)

			inTruncated := len(in) > limit
			if inTruncated {
				in = in[:limit]
			}
			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", loggableBody(in)),
				slog.Bool("request_body_truncated", inTruncated),
				slog.Any("response_body", loggableBody(rec.buf.Bytes())),
				slog.Bool("response_body_truncated", rec.truncated),
			)
		})
	}
}

// replayBody hands the handler the peeked prefix followed by the unread rest.
type replayBody struct {
	io.Reader
	io.Closer
}

type bodyRecorder struct {
	http.ResponseWriter
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	switch {
	case room <= 0:
		b.truncated = b.truncated || len(p) > 0
	case len(p) > room:
		b.buf.Write(p[:room])
		b.truncated = true
	default:
		b.buf.Write(p)
	}
	return b.ResponseWriter.Write(p)
}

func (b *bodyRecorder) Flush() {
	if f, ok := b.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// loggableBody keeps JSON bodies structured in the log line.
func loggableBody(b []byte) any {
	if len(b) == 0 {
		return ""
	}
	var v any
	if json.Unmarshal(b, &v) != nil {
		return string(b)
	}
	return v
}
