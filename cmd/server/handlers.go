package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hperssn/microdesk/internal/config"
	"github.com/hperssn/microdesk/internal/domain"
	"github.com/hperssn/microdesk/internal/export"
	"github.com/hperssn/microdesk/internal/http"
	"github.com/hperssn/microdesk/internal/runner"
	"github.com/hperssn/microdesk/internal/workout"
)

func newRouter(manager *runner.Manager, catalog *workout.Catalog, staticDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/workouts", listWorkouts(catalog))

	r.Route("/session", func(r chi.Router) {
		r.Post("/", startSession(manager))
		r.Get("/", getSession(manager))
		r.Post("/pause", sessionAction(manager.Pause))
		r.Post("/resume", sessionAction(manager.Resume))
		r.Post("/toggle", sessionAction(manager.TogglePause))
		r.Post("/skip", skipPhase(manager))
		r.Post("/stop", stopSession(manager))
		r.Get("/events", httpapi.StreamSessionEvents(manager))
	})

	r.Get("/sessions", listSessions(manager))
	r.Post("/sessions/retry", retryPending(manager))
	r.Get("/export", exportDay(manager))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	})
	fs := http.FileServer(http.Dir(staticDir))
	r.Handle("/static/*", http.StripPrefix("/static/", fs))

	return r
}

func listWorkouts(c *workout.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, c.List(), http.StatusOK)
	}
}

func startSession(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			WorkoutID string `json:"workoutId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.WorkoutID == "" {
			respondError(w, "workoutId is required", http.StatusBadRequest)
			return
		}

		snap, err := m.Start(r.Context(), req.WorkoutID)
		if err != nil {
			respondError(w, err.Error(), errorStatus(err))
			return
		}
		respondJSON(w, snap, http.StatusCreated)
	}
}

func getSession(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := m.Snapshot()
		if !ok {
			respondError(w, runner.ErrSessionNotFound.Error(), http.StatusNotFound)
			return
		}
		respondJSON(w, snap, http.StatusOK)
	}
}

func sessionAction(action func() (runner.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := action()
		if err != nil {
			respondError(w, err.Error(), errorStatus(err))
			return
		}
		respondJSON(w, snap, http.StatusOK)
	}
}

func skipPhase(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := m.Skip(r.Context())
		if err != nil {
			respondError(w, err.Error(), errorStatus(err))
			return
		}
		respondJSON(w, snap, http.StatusOK)
	}
}

func stopSession(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := m.Stop(r.Context())
		if err != nil {
			if rec == nil {
				respondError(w, err.Error(), errorStatus(err))
				return
			}
			// Stopped, but the record is waiting for a retry.
			respondJSON(w, map[string]any{"session": rec, "error": err.Error()}, http.StatusAccepted)
			return
		}
		respondJSON(w, map[string]any{"session": rec}, http.StatusOK)
	}
}

func listSessions(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := dateParam(r, m)
		sessions, err := m.SessionsByDate(r.Context(), date)
		if err != nil {
			respondError(w, err.Error(), errorStatus(err))
			return
		}
		respondJSON(w, map[string]any{
			"date":     date,
			"sessions": sessions,
			"pending":  len(m.Pending()),
		}, http.StatusOK)
	}
}

func retryPending(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saved, err := m.RetryPending(r.Context())
		resp := map[string]any{
			"saved":   saved,
			"pending": len(m.Pending()),
		}
		if err != nil {
			resp["error"] = err.Error()
			respondJSON(w, resp, http.StatusServiceUnavailable)
			return
		}
		respondJSON(w, resp, http.StatusOK)
	}
}

func exportDay(m *runner.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := dateParam(r, m)
		doc, err := m.Export(r.Context(), date)
		if err != nil {
			respondError(w, err.Error(), errorStatus(err))
			return
		}

		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(config.AppName, date)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(doc); err != nil {
			log.Printf("failed to write export: %v", err)
		}
	}
}

func dateParam(r *http.Request, m *runner.Manager) string {
	if date := r.URL.Query().Get("date"); date != "" {
		return date
	}
	return m.Today()
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, workout.ErrWorkoutNotFound),
		errors.Is(err, runner.ErrSessionNotFound),
		errors.Is(err, export.ErrNothingToExport):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrSessionExists),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, runner.ErrInvalidDate):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
