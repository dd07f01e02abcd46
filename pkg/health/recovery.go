package health

import (
	"fmt"
)

// stuckAfterDays is the longest an improving endpoint may sit below full
// health before the recovery counts as stuck. The boundary itself is still
// normal; only strictly greater triggers stuck.
const stuckAfterDays = 3

// TrackRecovery derives the recovery lifecycle state from the current and
// previous health levels and the days elapsed since the last change.
// Without a previous level or a known elapsed count there is nothing to
// track.
func TrackRecovery(current Level, previous *Level, elapsedDays *int) RecoveryState {
	if previous == nil || elapsedDays == nil {
		return RecoveryState{
			Stage:       RecoveryNotApplicable,
			Explanation: "no recent health change to track",
		}
	}

	elapsed := *elapsedDays

	switch {
	case current > *previous && current == LevelFully:
		return RecoveryState{
			Stage:       RecoveryFullyRecovered,
			Explanation: fmt.Sprintf("recovered to full health %d day(s) ago", elapsed),
		}
	case current > *previous && elapsed > stuckAfterDays:
		return RecoveryState{
			Stage:       RecoveryStuck,
			Stuck:       true,
			Explanation: fmt.Sprintf("improving but stalled below full health for %d day(s)", elapsed),
		}
	case current > *previous:
		return RecoveryState{
			Stage:       RecoveryNormal,
			Explanation: fmt.Sprintf("improving for %d day(s)", elapsed),
		}
	case current < *previous:
		return RecoveryState{
			Stage:       RecoveryNotRecovering,
			Stuck:       true,
			Explanation: fmt.Sprintf("health degraded %d day(s) ago and has not recovered", elapsed),
		}
	case current != LevelFully && elapsed > stuckAfterDays:
		return RecoveryState{
			Stage:       RecoveryNotRecovering,
			Stuck:       true,
			Explanation: fmt.Sprintf("unchanged below full health for %d day(s)", elapsed),
		}
	default:
		return RecoveryState{
			Stage:       RecoveryNotApplicable,
			Explanation: "no recovery in progress",
		}
	}
}
