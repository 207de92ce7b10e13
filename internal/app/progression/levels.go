// Package progression implements the Questline progression engine:
// the level curve, streak tracking, task completion rewards, boss quests,
// badge grants, and the gold economy. Pure formulas live at package level;
// everything that touches the store hangs off Service and runs inside one
// store transaction per operation.
package progression

import "math"

// Level curve constants. XPForLevel(n) is the XP span of level n, not a
// cumulative total; LevelFromXP walks the spans.
const (
	XPBase     = 100
	XPExponent = 1.2
)

// XPForLevel returns the XP required to clear the given level:
// floor(100 * level^1.2).
func XPForLevel(level int) int64 {
	if level < 1 {
		return 0
	}
	return int64(math.Floor(XPBase * math.Pow(float64(level), XPExponent)))
}

// LevelFromXP returns the level reached with a cumulative XP total.
// Starting at level 1, each level's span is subtracted while the remainder
// covers it. Inverse-consistent with XPForLevel: the returned level L is
// the unique one whose cumulative spans for 1..L-1 fit inside xp while
// adding level L's span would not.
func LevelFromXP(xp int64) int {
	level := 1
	remaining := xp
	for remaining >= XPForLevel(level) {
		remaining -= XPForLevel(level)
		level++
	}
	return level
}

// ─── Difficulty Multipliers ─────────────────────────────────────────────────

// difficultyMultiplier maps a task/question difficulty tag to its reward
// multiplier. Unknown tags fall back to 1.0.
var difficultyMultiplier = map[string]float64{
	"trivial": 0.5,
	"easy":    0.5,
	"normal":  1.0,
	"medium":  1.0,
	"hard":    1.5,
	"boss":    2.0,
}

// MultiplierFor returns the reward multiplier for a difficulty tag.
func MultiplierFor(difficulty string) float64 {
	if m, ok := difficultyMultiplier[difficulty]; ok {
		return m
	}
	return 1.0
}

// ScaledReward applies the difficulty multiplier to a base reward,
// truncating toward zero.
func ScaledReward(base int64, difficulty string) int64 {
	return int64(math.Floor(float64(base) * MultiplierFor(difficulty)))
}
