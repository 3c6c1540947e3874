package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"neon-tycoon/internal/logging"
	"neon-tycoon/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

type sessionContextKey struct{}

func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return s, ok
}

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				attrs := []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
				if s, ok := SessionFromContext(req.Context()); ok {
					attrs = append(attrs, slog.String("username", s.Username()))
				}
				return attrs
			},
		},
	)
}

// BodyCaptureMiddleware adds request and response bodies, cut at limit
// bytes, to the request log. Credential fields are masked.
func BodyCaptureMiddleware(limit int) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(in))

			out := &clippedBody{limit: limit}
			next.ServeHTTP(teeWriter{ResponseWriter: w, copy: out}, r)

			req := clippedBody{limit: limit}
			_, _ = req.Write(in)
			httplog.SetAttrs(r.Context(),
				slog.Any("request_body", req.value()),
				slog.Bool("request_body_truncated", req.cut),
				slog.Any("response_body", out.value()),
				slog.Bool("response_body_truncated", out.cut),
			)
		})
	}
}

var (
	maskedFields = map[string]bool{"password": true, "token": true}
	// maskedRaw matches credential values in bodies that do not decode,
	// including a value cut off at the capture limit.
	maskedRaw = regexp.MustCompile(`(?i)("(?:password|token)"\s*:\s*")(?:[^"\\]|\\.)*("?)`)
)

// clippedBody keeps the first limit bytes written to it.
type clippedBody struct {
	buf   bytes.Buffer
	limit int
	cut   bool
}

func (c *clippedBody) Write(p []byte) (int, error) {
	room := c.limit - c.buf.Len()
	if len(p) > room {
		c.cut = true
		p = p[:max(room, 0)]
	}
	c.buf.Write(p)
	return len(p), nil
}

// value decodes the body as JSON when it can, masking credentials.
func (c *clippedBody) value() any {
	if c.buf.Len() == 0 {
		return ""
	}
	var out any
	if err := json.Unmarshal(c.buf.Bytes(), &out); err != nil {
		return maskedRaw.ReplaceAllString(c.buf.String(), "${1}***${2}")
	}
	if obj, ok := out.(map[string]any); ok {
		for k := range obj {
			if maskedFields[strings.ToLower(k)] {
				obj[k] = "***"
			}
		}
	}
	return out
}

type teeWriter struct {
	http.ResponseWriter
	copy *clippedBody
}

func (t teeWriter) Write(p []byte) (int, error) {
	_, _ = t.copy.Write(p)
	return t.ResponseWriter.Write(p)
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// SessionAuthMiddleware resolves the bearer login token to a live session.
func SessionAuthMiddleware(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := mgr.Lookup(bearerToken(r))
			if err != nil {
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), sessionContextKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminAuthMiddleware admits the operator key or the token of a live admin
// session. With no key configured only admin sessions get through.
func AdminAuthMiddleware(adminKey string, mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CheckAdminAuth(r, adminKey) && !isAdminSession(r, mgr) {
				WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CheckAdminAuth(r *http.Request, adminKey string) bool {
	if adminKey == "" {
		return false
	}
	if v := r.Header.Get("X-Admin-Key"); v == adminKey {
		return true
	}
	return bearerToken(r) == adminKey
}

func isAdminSession(r *http.Request, mgr *session.Manager) bool {
	if mgr == nil {
		return false
	}
	s, err := mgr.Lookup(bearerToken(r))
	if err != nil {
		return false
	}
	return s.IsAdmin()
}

// ParseLimit reads ?limit=, leaving range checks to the service.
func ParseLimit(r *http.Request) (int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
