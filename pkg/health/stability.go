package health

import (
	"math"
	"strings"

	"github.com/mfreeman451/toolwatch/pkg/models"
)

const (
	flappingMinChanges = 5
	flappingMinDays    = 30
	recentChangeDays   = 7
	stableScoreFloor   = 70

	longStreakDays  = 30
	longStreakBonus = 10

	midStreakDays  = 14
	midStreakBonus = 5

	shortStreakDays    = 3
	shortStreakPenalty = 10
)

// Classify turns one endpoint's chronologically ordered snapshots for a
// trailing window into stability metrics. Gaps in the calendar simply
// produce fewer entries; the math divides by the entries actually present.
// Returns nil when there are no usable snapshots, which callers must treat
// as "insufficient data" rather than an error. The caller is expected to
// have filtered out possible-fake rows already.
func Classify(endpointID string, snaps []models.Snapshot) *Metrics {
	if len(snaps) == 0 {
		return nil
	}

	history := make([]Point, 0, len(snaps))
	for i := range snaps {
		history = append(history, Point{
			Day:   snaps[i].Day,
			Level: Evaluate(&snaps[i]).Level,
		})
	}

	n := len(history)
	current := history[n-1].Level

	changes := 0
	for i := 1; i < n; i++ {
		if history[i].Level != history[i-1].Level {
			changes++
		}
	}

	// Trailing run of the current level; counts the final entry itself.
	streak := 1
	for i := n - 2; i >= 0 && history[i].Level == current; i-- {
		streak++
	}

	lastChange := history[n-streak].Day

	var previous *Level
	if streak < n {
		prev := history[n-streak-1].Level
		previous = &prev
	}

	score := stabilityScore(changes, n, streak)
	class := classify(current, previous, changes, n, streak, score)

	gap := DiagnoseGap(&snaps[len(snaps)-1])
	recovery := TrackRecovery(current, previous, &streak)

	m := &Metrics{
		EndpointID:            endpointID,
		Current:               current,
		Previous:              previous,
		Score:                 score,
		Classification:        class,
		HealthChangeCount:     changes,
		ConsecutiveDaysStable: streak,
		LastHealthChange:      lastChange,
		Gap:                   gap,
		Recovery:              recovery,
	}

	m.Actionable, m.ActionReason = actionability(m)

	return m
}

func stabilityScore(changes, n, streak int) int {
	score := 100 - 100*float64(changes)/float64(n)

	switch {
	case streak >= longStreakDays:
		score += longStreakBonus
	case streak >= midStreakDays:
		score += midStreakBonus
	}

	if streak < shortStreakDays {
		score -= shortStreakPenalty
	}

	score = math.Max(0, math.Min(100, score))

	return int(math.Round(score))
}

// classify applies the behavioral rules in precedence order; the first
// match wins. Flapping is only ever considered once a month of data exists.
func classify(current Level, previous *Level, changes, n, streak, score int) Classification {
	switch {
	case changes >= flappingMinChanges && n >= flappingMinDays:
		return ClassFlapping
	case previous != nil && current > *previous && streak < recentChangeDays:
		return ClassRecovering
	case previous != nil && current < *previous && streak < recentChangeDays:
		return ClassDegrading
	case current == LevelFully && score >= stableScoreFloor:
		return ClassStableHealthy
	case (current == LevelUnhealthy || current == LevelInactive) && score >= stableScoreFloor:
		return ClassStableUnhealthy
	case current == LevelFully:
		return ClassStableHealthy
	default:
		return ClassStableUnhealthy
	}
}

// actionability folds the classification, gap diagnosis and recovery state
// into a single verdict. Reasons concatenate in that fixed order.
func actionability(m *Metrics) (bool, string) {
	var reasons []string

	switch m.Classification {
	case ClassStableUnhealthy:
		reasons = append(reasons, "endpoint has been consistently unhealthy over the evaluation window")
	case ClassDegrading:
		reasons = append(reasons, "endpoint health degraded recently and has not stabilized")
	}

	if !m.Gap.Expected {
		reasons = append(reasons, m.Gap.Explanation)
	}

	if m.Recovery.Stuck {
		reasons = append(reasons, m.Recovery.Explanation)
	}

	if len(reasons) == 0 {
		return false, ""
	}

	return true, strings.Join(reasons, "; ")
}
