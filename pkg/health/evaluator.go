package health

import (
	"github.com/mfreeman451/toolwatch/pkg/models"
)

const (
	// GracePeriodDays is the tolerance within which a tool still counts as
	// healthy without reporting today.
	GracePeriodDays = 3

	// InactiveAfterDays is the management-tool lag beyond which an endpoint
	// is considered inactive unless another tool proves otherwise.
	InactiveAfterDays = 15
)

// Evaluate derives the health level and fractional score for a single
// snapshot. An inactive endpoint scores 0 regardless of its found flags.
// vm is never counted toward health.
func Evaluate(s *models.Snapshot) Result {
	if !isActive(s) {
		return Result{Level: LevelInactive, Score: 0}
	}

	healthyTools := 0

	if toolHealthy(s.R7Found, s.R7LagDays) {
		healthyTools++
	}

	if toolHealthy(s.AMFound, s.AMLagDays) {
		healthyTools++
	}

	if toolHealthy(s.DFFound, s.DFLagDays) {
		healthyTools++
	}

	switch healthyTools {
	case 3:
		return Result{Level: LevelFully, Score: 1.0}
	case 0:
		return Result{Level: LevelUnhealthy, Score: 0.0}
	default:
		return Result{Level: LevelPartially, Score: float64(healthyTools) / 3}
	}
}

// isActive reports whether the endpoint shows any current sign of life.
// Environments without the management tool still count as active when any
// of the other tools is found.
func isActive(s *models.Snapshot) bool {
	if lagWithin(s.ITLagDays, InactiveAfterDays) {
		return true
	}

	return s.R7Found || s.AMFound || s.DFFound
}

func toolHealthy(found bool, lag *int) bool {
	return found || lagWithin(lag, GracePeriodDays)
}

// lagWithin treats an unknown lag as "not within": nil is distinct from 0.
func lagWithin(lag *int, limit int) bool {
	return lag != nil && *lag <= limit
}
