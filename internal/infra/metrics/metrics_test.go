package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCountersRegistered(t *testing.T) {
	// promauto registers with the default registry automatically.
	// Touch each metric, then verify it shows up in a gather.
	TasksCompleted.Inc()
	TasksUncompleted.Inc()
	LevelUps.Inc()
	QuestsCompleted.Inc()
	Reviews.WithLabelValues("correct").Inc()
	Reviews.WithLabelValues("incorrect").Inc()
	ReviewsMastered.Inc()
	Quizzes.Inc()
	Purchases.WithLabelValues("streak_freeze").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	expected := []string{
		"questline_tasks_completed_total",
		"questline_tasks_uncompleted_total",
		"questline_level_ups_total",
		"questline_quests_completed_total",
		"questline_reviews_total",
		"questline_reviews_mastered_total",
		"questline_quizzes_submitted_total",
		"questline_shop_purchases_total",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	questlineMetrics := 0
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "questline_") {
			questlineMetrics++
		}
	}
	if questlineMetrics < 8 {
		t.Errorf("expected at least 8 questline_ metric families, got %d", questlineMetrics)
	}
}
