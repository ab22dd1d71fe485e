package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/ninja-squad-backend/internal/hub"
	"github.com/DoyleJ11/ninja-squad-backend/internal/matchmaking"
	"github.com/DoyleJ11/ninja-squad-backend/internal/session"
	"github.com/DoyleJ11/ninja-squad-backend/internal/store"
)

type History interface {
	Recent(ctx context.Context, limit int) ([]store.SessionRecord, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Queue(mm *matchmaking.Matchmaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := mm.Snapshot(r.Context())
		if err != nil {
			http.Error(w, "matchmaker unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func Sessions(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live, err := h.Sessions(r.Context())
		if err != nil {
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
			return
		}
		out := make([]session.Snapshot, 0, len(live))
		for _, s := range live {
			out = append(out, s.Snapshot())
		}
		sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
		writeJSON(w, http.StatusOK, out)
	}
}

func Session(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := h.Session(chi.URLParam(r, "id"))
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, s.Snapshot())
	}
}

func HistoryList(hist History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 || limit > 100 {
			limit = 20
		}
		recs, err := hist.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
