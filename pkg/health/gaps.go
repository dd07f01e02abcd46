package health

import (
	"github.com/mfreeman451/toolwatch/pkg/models"
)

// r7RemovalLagDays is how long the r7 console keeps a recently offline
// endpoint before dropping it, so absence inside this window is expected.
const r7RemovalLagDays = 15

// DiagnoseGap explains why r7 is not reporting on an endpoint's latest
// snapshot. Exactly one classification is produced for every snapshot.
// Liveness proven by another tool (am or df) wins over the inactive check:
// a silent management tool does not excuse a missing agent on a machine
// that is demonstrably up.
func DiagnoseGap(s *models.Snapshot) GapDiagnosis {
	otherToolsLive := s.AMFound || s.DFFound

	switch {
	case s.R7Found:
		return GapDiagnosis{
			Classification: GapR7Present,
			Expected:       true,
			Explanation:    "r7 is reporting for this endpoint",
		}
	case s.ITFound && lagBelow(s.ITLagDays, r7RemovalLagDays):
		return GapDiagnosis{
			Classification: GapExpectedRecentOffline,
			Expected:       true,
			Explanation:    "endpoint went offline recently; r7 removal lags true offline state by up to 15 days",
		}
	case (!s.ITFound || lagAbove(s.ITLagDays, r7RemovalLagDays)) && !otherToolsLive:
		return GapDiagnosis{
			Classification: GapExpectedInactive,
			Expected:       true,
			Explanation:    "endpoint appears inactive; no tool has reported recently",
		}
	case otherToolsLive:
		return GapDiagnosis{
			Classification: GapInvestigateR7Issue,
			Expected:       false,
			Explanation:    "other tools are reporting but r7 is not; investigate the r7 agent on this endpoint",
		}
	default:
		return GapDiagnosis{
			Classification: GapExpectedOffline,
			Expected:       true,
			Explanation:    "endpoint appears offline; r7 absence is expected",
		}
	}
}

func lagBelow(lag *int, limit int) bool {
	return lag != nil && *lag < limit
}

func lagAbove(lag *int, limit int) bool {
	return lag != nil && *lag > limit
}
