// Package health derives per-endpoint health, stability, gap and recovery
// results from daily tool-reporting snapshots. Everything here is a pure
// function of already-fetched data; nothing is cached or persisted.
package health

import (
	"encoding/json"
	"fmt"
	"time"
)

// Level is a per-snapshot health level. The numeric values are a strict
// rank: a transition to a higher value is an improvement, to a lower value
// a degradation.
type Level int

const (
	LevelInactive Level = iota
	LevelUnhealthy
	LevelPartially
	LevelFully
)

func (l Level) String() string {
	switch l {
	case LevelInactive:
		return "inactive"
	case LevelUnhealthy:
		return "unhealthy"
	case LevelPartially:
		return "partially"
	case LevelFully:
		return "fully"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MarshalJSON renders the level as its string name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// Result is the health derived from a single snapshot.
type Result struct {
	Level Level   `json:"level"`
	Score float64 `json:"score"`
}

// Classification is the 5-way behavioral classification of an endpoint's
// health history over a trailing window.
type Classification string

const (
	ClassFlapping        Classification = "FLAPPING"
	ClassRecovering      Classification = "RECOVERING"
	ClassDegrading       Classification = "DEGRADING"
	ClassStableHealthy   Classification = "STABLE_HEALTHY"
	ClassStableUnhealthy Classification = "STABLE_UNHEALTHY"
)

// GapClassification explains why r7 is or is not reporting for an endpoint.
type GapClassification string

const (
	GapR7Present             GapClassification = "R7_PRESENT"
	GapExpectedRecentOffline GapClassification = "EXPECTED_RECENT_OFFLINE"
	GapExpectedInactive      GapClassification = "EXPECTED_INACTIVE"
	GapInvestigateR7Issue    GapClassification = "INVESTIGATE_R7_ISSUE"
	GapExpectedOffline       GapClassification = "EXPECTED_OFFLINE"
)

// GapDiagnosis is the result of diagnosing an endpoint's latest snapshot.
// Expected=false is the strongest actionable signal: other tools prove the
// endpoint is live while r7 stays silent.
type GapDiagnosis struct {
	Classification GapClassification `json:"classification"`
	Expected       bool              `json:"expected"`
	Explanation    string            `json:"explanation"`
}

// RecoveryStage is the lifecycle state of an endpoint whose health recently
// changed.
type RecoveryStage string

const (
	RecoveryNotApplicable  RecoveryStage = "NOT_APPLICABLE"
	RecoveryFullyRecovered RecoveryStage = "FULLY_RECOVERED"
	RecoveryNormal         RecoveryStage = "NORMAL_RECOVERY"
	RecoveryStuck          RecoveryStage = "STUCK_RECOVERY"
	RecoveryNotRecovering  RecoveryStage = "NOT_RECOVERING"
)

// RecoveryState is the recovery lifecycle result for one endpoint.
type RecoveryState struct {
	Stage       RecoveryStage `json:"stage"`
	Stuck       bool          `json:"stuck"`
	Explanation string        `json:"explanation,omitempty"`
}

// Point pairs a snapshot day with the health level derived from it.
type Point struct {
	Day   time.Time `json:"day"`
	Level Level     `json:"level"`
}

// Metrics combines every derived result for one endpoint over one
// evaluation window. A nil *Metrics means "insufficient data", which is a
// valid, displayable state rather than an error.
type Metrics struct {
	EndpointID            string         `json:"endpoint_id"`
	Current               Level          `json:"current_health"`
	Previous              *Level         `json:"previous_health,omitempty"`
	Score                 int            `json:"stability_score"`
	Classification        Classification `json:"classification"`
	HealthChangeCount     int            `json:"health_change_count"`
	ConsecutiveDaysStable int            `json:"consecutive_days_stable"`
	LastHealthChange      time.Time      `json:"last_health_change"`
	Gap                   GapDiagnosis   `json:"gap"`
	Recovery              RecoveryState  `json:"recovery"`
	Actionable            bool           `json:"actionable"`
	ActionReason          string         `json:"action_reason,omitempty"`
}
