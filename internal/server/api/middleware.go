package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
)

var tokenSchemes = []string{"Bearer ", "JWT "}

// Authenticate attaches the actor of a valid access token to the request
// context. Missing or invalid tokens leave the request anonymous; handlers
// decide whether they need a login.
func Authenticate(secret []byte, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := bearerToken(r.Header.Get("Authorization"))
			if !found {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(token, secret)
			if err != nil {
				log.Debug(r.Context(), "ignoring invalid access token",
					"error", err,
					"request_id", middleware.GetReqID(r.Context()),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithActor(r.Context(), auth.Actor{UserID: claims.UserID, Staff: claims.Staff})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	for _, scheme := range tokenSchemes {
		if token, found := strings.CutPrefix(header, scheme); found && token != "" {
			return strings.TrimSpace(token), true
		}
	}
	return "", false
}

// Instrument counts requests and observes their latency.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTP(r.Method, strconv.Itoa(status), start)
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
