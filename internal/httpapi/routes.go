package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/ninja-squad-backend/internal/hub"
	"github.com/DoyleJ11/ninja-squad-backend/internal/matchmaking"
	"github.com/DoyleJ11/ninja-squad-backend/internal/ws"
)

// SetupRoutes builds the router. hist may be nil when no database is
// configured; /history is not served then.
func SetupRoutes(h *hub.Hub, mm *matchmaking.Matchmaker, hist History, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/queue", Queue(mm))
	r.Get("/sessions", Sessions(h))
	r.Get("/sessions/{id}", Session(h))
	r.Get("/ws", ws.Handler(h, mm, log))
	if hist != nil {
		r.Get("/history", HistoryList(hist))
	}
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	log = log.With(zap.String("component", "http"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
