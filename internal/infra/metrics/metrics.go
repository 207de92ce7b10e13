// Package metrics provides Prometheus metrics for Questline: counters
// for the progression engine, the review scheduler, quizzes, and the
// shop economy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Progression ────────────────────────────────────────────────────────────

// TasksCompleted tracks first-time task completions.
var TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "tasks_completed_total",
	Help:      "Total first-time task completions.",
})

// TasksUncompleted tracks reversed completions.
var TasksUncompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "tasks_uncompleted_total",
	Help:      "Total reversed task completions.",
})

// LevelUps tracks learner level-ups from any XP source.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "level_ups_total",
	Help:      "Total learner level-ups.",
})

// QuestsCompleted tracks defeated quest bosses.
var QuestsCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "quests_completed_total",
	Help:      "Total quest bosses defeated.",
})

// ─── Reviews & Quizzes ──────────────────────────────────────────────────────

// Reviews tracks graded reviews by result (correct, incorrect).
var Reviews = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "reviews_total",
	Help:      "Total graded reviews by result.",
}, []string{"result"})

// ReviewsMastered tracks review items retired from rotation.
var ReviewsMastered = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "reviews_mastered_total",
	Help:      "Total review items mastered.",
})

// Quizzes tracks graded quiz submissions.
var Quizzes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "quizzes_submitted_total",
	Help:      "Total graded quiz submissions.",
})

// ─── Economy ────────────────────────────────────────────────────────────────

// Purchases tracks shop purchases by item.
var Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "questline",
	Name:      "shop_purchases_total",
	Help:      "Total shop purchases by item.",
}, []string{"item"})
