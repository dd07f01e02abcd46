package health

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfreeman451/toolwatch/pkg/models"
)

func TestDiagnoseGap(t *testing.T) {
	tests := []struct {
		name         string
		snapshot     models.Snapshot
		want         GapClassification
		wantExpected bool
	}{
		{
			name:         "r7_reporting",
			snapshot:     models.Snapshot{R7Found: true},
			want:         GapR7Present,
			wantExpected: true,
		},
		{
			name:         "recent_offline_within_removal_lag",
			snapshot:     models.Snapshot{ITFound: true, ITLagDays: intp(10)},
			want:         GapExpectedRecentOffline,
			wantExpected: true,
		},
		{
			name:         "no_management_tool_and_nothing_else",
			snapshot:     models.Snapshot{},
			want:         GapExpectedInactive,
			wantExpected: true,
		},
		{
			name:         "management_lag_too_old_and_nothing_else",
			snapshot:     models.Snapshot{ITFound: true, ITLagDays: intp(20)},
			want:         GapExpectedInactive,
			wantExpected: true,
		},
		{
			name: "stale_management_but_other_tools_live",
			// itLag over the removal window does not excuse r7 when am
			// proves the endpoint is up.
			snapshot:     models.Snapshot{ITFound: true, ITLagDays: intp(20), AMFound: true},
			want:         GapInvestigateR7Issue,
			wantExpected: false,
		},
		{
			name:         "no_management_tool_but_defender_live",
			snapshot:     models.Snapshot{DFFound: true},
			want:         GapInvestigateR7Issue,
			wantExpected: false,
		},
		{
			name: "management_present_with_unknown_lag",
			// Unknown lag is neither "recent" nor "too old"; with no other
			// tool the absence is just an offline endpoint.
			snapshot:     models.Snapshot{ITFound: true},
			want:         GapExpectedOffline,
			wantExpected: true,
		},
		{
			name:         "boundary_lag_is_offline_not_inactive",
			snapshot:     models.Snapshot{ITFound: true, ITLagDays: intp(15)},
			want:         GapExpectedOffline,
			wantExpected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiagnoseGap(&tt.snapshot)

			assert.Equal(t, tt.want, got.Classification)
			assert.Equal(t, tt.wantExpected, got.Expected)
			assert.NotEmpty(t, got.Explanation)
		})
	}
}

func TestDiagnoseGapIsTotal(t *testing.T) {
	// Every flag/lag combination yields exactly one classification, and
	// R7_PRESENT appears iff r7 is found.
	lags := []*int{nil, intp(0), intp(5), intp(15), intp(20)}
	bools := []bool{false, true}

	for _, r7 := range bools {
		for _, it := range bools {
			for _, am := range bools {
				for _, df := range bools {
					for _, lag := range lags {
						s := models.Snapshot{
							R7Found:   r7,
							ITFound:   it,
							AMFound:   am,
							DFFound:   df,
							ITLagDays: lag,
						}

						got := DiagnoseGap(&s)

						assert.NotEmpty(t, got.Classification)
						assert.Equal(t, r7, got.Classification == GapR7Present)
						assert.Equal(t, got.Classification != GapInvestigateR7Issue, got.Expected)
					}
				}
			}
		}
	}
}
