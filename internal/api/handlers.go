package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/questline-app/questline/internal/domain"
)

// decodeBody decodes the request body into v, answering 400 itself on
// malformed JSON. Callers bail out when it returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// ─── Learner ────────────────────────────────────────────────────────────────

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	learner, err := s.progression.EnsureLearner(externalID(r), req.Username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	state, err := s.progression.GetState(learner.ID, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.progression.GetState(learnerID(r), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	summary, err := s.progression.GetProgress(learnerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	days, err := s.progression.GetCalendar(learnerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	grants, err := s.progression.Badges(learnerID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": grants})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.progression.Leaderboard(limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ─── Tasks & Quests ─────────────────────────────────────────────────────────

func (s *Server) handleWeekTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.progression.WeekTasks(learnerID(r), chi.URLParam(r, "weekID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.progression.CompleteTask(learnerID(r), chi.URLParam(r, "taskID"), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUncompleteTask(w http.ResponseWriter, r *http.Request) {
	res, err := s.progression.UncompleteTask(learnerID(r), chi.URLParam(r, "taskID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStartQuest(w http.ResponseWriter, r *http.Request) {
	status, err := s.progression.StartQuest(learnerID(r), chi.URLParam(r, "questID"), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ─── Quizzes ────────────────────────────────────────────────────────────────

func (s *Server) handleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	q, questions, err := s.quiz.Questions(chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quiz": q, "questions": questions})
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []domain.Answer `json:"answers"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.quiz.SubmitQuiz(learnerID(r), chi.URLParam(r, "quizID"), req.Answers, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Reviews ────────────────────────────────────────────────────────────────

func (s *Server) handleDailyReview(w http.ResponseWriter, r *http.Request) {
	batch, err := s.srs.DailyReview(learnerID(r), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.srs.GetStats(learnerID(r), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"question_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.QuestionID == "" {
		writeDomainError(w, domain.ErrInvalidReference)
		return
	}
	if err := s.srs.AddToReview(learnerID(r), req.QuestionID, time.Now().UTC()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"added": true})
}

func (s *Server) handleReviewResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Correct bool `json:"correct"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	outcome, err := s.srs.SubmitReview(learnerID(r), chi.URLParam(r, "reviewID"), req.Correct, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// ─── Shop ───────────────────────────────────────────────────────────────────

func (s *Server) handleShopCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.progression.Catalog()})
}

func (s *Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"item_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.progression.BuyItem(learnerID(r), req.ItemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUseStreakFreeze(w http.ResponseWriter, r *http.Request) {
	remaining, err := s.progression.UseStreakFreeze(learnerID(r), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"remaining": remaining})
}
