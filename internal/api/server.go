// Package api provides the HTTP server for Questline. Every learner
// endpoint requires a bearer token that resolves to an external identity;
// learner records are created on first sight of a new identity.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/questline-app/questline/internal/app/progression"
	"github.com/questline-app/questline/internal/app/quiz"
	"github.com/questline-app/questline/internal/app/srs"
	"github.com/questline-app/questline/internal/domain"
)

// TokenVerifier resolves a bearer token to an external learner identity.
type TokenVerifier interface {
	Verify(token string) (externalID string, err error)
}

// StaticTokens verifies against a fixed token-to-identity table, the way
// a single-tenant deployment configures auth in its config file.
type StaticTokens map[string]string

func (t StaticTokens) Verify(token string) (string, error) {
	if ext, ok := t[token]; ok {
		return ext, nil
	}
	return "", domain.ErrUnauthorized
}

// Server is the Questline HTTP API server.
type Server struct {
	progression *progression.Service
	srs         *srs.Scheduler
	quiz        *quiz.Scorer

	verifier       TokenVerifier
	allowAnonymous bool
	metricsEnabled bool
	version        string
}

// NewServer creates a new API server over the three engine services.
func NewServer(p *progression.Service, sc *srs.Scheduler, q *quiz.Scorer, verifier TokenVerifier, version string) *Server {
	return &Server{progression: p, srs: sc, quiz: q, verifier: verifier, version: version}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// AllowAnonymous maps requests without credentials to the "local"
// identity instead of rejecting them. Intended for single-user setups.
func (s *Server) AllowAnonymous() { s.allowAnonymous = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
	})

	// Public read-only routes
	r.Get("/api/leaderboard", s.handleLeaderboard)

	// Learner routes: authentication happens before any mutation
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/api/learners/sync", s.handleSync)
		r.Get("/api/state", s.handleState)
		r.Get("/api/progress", s.handleProgress)
		r.Get("/api/progress/calendar", s.handleCalendar)
		r.Get("/api/badges", s.handleBadges)

		r.Get("/api/weeks/{weekID}/tasks", s.handleWeekTasks)
		r.Post("/api/tasks/{taskID}/complete", s.handleCompleteTask)
		r.Post("/api/tasks/{taskID}/uncomplete", s.handleUncompleteTask)

		r.Post("/api/quests/{questID}/start", s.handleStartQuest)

		r.Get("/api/quizzes/{quizID}", s.handleQuizQuestions)
		r.Post("/api/quizzes/{quizID}/submit", s.handleSubmitQuiz)

		r.Get("/api/reviews/daily", s.handleDailyReview)
		r.Get("/api/reviews/stats", s.handleReviewStats)
		r.Post("/api/reviews", s.handleAddReview)
		r.Post("/api/reviews/{reviewID}/result", s.handleReviewResult)

		r.Get("/api/shop", s.handleShopCatalog)
		r.Post("/api/shop/buy", s.handleBuyItem)
		r.Post("/api/streak-freeze/use", s.handleUseStreakFreeze)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Authentication ─────────────────────────────────────────────────────────

type ctxKey int

const (
	learnerIDKey ctxKey = iota
	externalIDKey
)

// authMiddleware resolves the bearer token to a learner and stores the
// learner id in the request context. Missing or unknown credentials stop
// the request with 401 before any handler runs.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		externalID, err := s.resolveIdentity(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		learner, err := s.progression.EnsureLearner(externalID, "")
		if err != nil {
			writeDomainError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), learnerIDKey, learner.ID)
		ctx = context.WithValue(ctx, externalIDKey, externalID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveIdentity(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if s.allowAnonymous {
			return "local", nil
		}
		return "", domain.ErrUnauthorized
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", domain.ErrUnauthorized
	}
	return s.verifier.Verify(token)
}

func learnerID(r *http.Request) string {
	id, _ := r.Context().Value(learnerIDKey).(string)
	return id
}

func externalID(r *http.Request) string {
	id, _ := r.Context().Value(externalIDKey).(string)
	return id
}

// ─── Responses ──────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps a domain sentinel to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrLearnerNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrQuestNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrReviewNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrHeartsFull),
		errors.Is(err, domain.ErrQuestAlreadyActive),
		errors.Is(err, domain.ErrNoStreakFreeze):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientGold):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
