package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/toolwatch/pkg/db"
	"github.com/mfreeman451/toolwatch/pkg/models"
)

func TestDayFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{
			name:     "dashed_date",
			filename: "coverage_2026-08-30.csv",
			want:     "2026-08-30",
		},
		{
			name:     "compact_date",
			filename: "coverage-20260830.csv",
			want:     "2026-08-30",
		},
		{
			name:     "date_mid_name",
			filename: "weekly 2026-01-02 export.csv",
			want:     "2026-01-02",
		},
		{
			name:     "no_date",
			filename: "coverage.csv",
			wantErr:  true,
		},
		{
			name:     "invalid_date",
			filename: "coverage_20261340.csv",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := DayFromFilename(tt.filename)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoDayInName)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, day.Format("2006-01-02"))
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "t", "yes", "Y", "1"} {
		assert.True(t, parseBool(v), "%q", v)
	}

	for _, v := range []string{"", "false", "0", "no", "n/a", "unknown"} {
		assert.False(t, parseBool(v), "%q", v)
	}
}

func TestParseLag(t *testing.T) {
	assert.Nil(t, parseLag(""))
	assert.Nil(t, parseLag("n/a"))
	assert.Nil(t, parseLag("-1"))

	require.NotNil(t, parseLag("0"))
	assert.Equal(t, 0, *parseLag("0"))
	assert.Equal(t, 12, *parseLag("12"))
}

const sampleCSV = `Hostname,FQDN,Environment,Rapid7,Rapid7 Lag Days,AntiMalware,AntiMalware Lag Days,Defender,Defender Lag Days,Intune,Intune Lag Days,VMware,Possible Fake,OS Family,Device Type,Email,IP Address
WKS-001,wks-001.corp.example.com,prod,TRUE,0,yes,2,false,,1,5,0,false,Windows,Desktop,user@example.com,10.0.0.5
,orphan.corp.example.com,prod,true,,,,,,,,,,,,
SRV-009,srv-009.corp.example.com,prod,0,,no,,false,,1,0,true,true,Windows,Server,,
`

func TestImportReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	var (
		endpoints []models.Endpoint
		snapshots []models.Snapshot
	)

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().UpsertEndpoint(gomock.Any()).DoAndReturn(func(e *models.Endpoint) error {
		endpoints = append(endpoints, *e)
		return nil
	}).Times(2)
	mockDB.EXPECT().InsertSnapshot(gomock.Any()).DoAndReturn(func(s *models.Snapshot) error {
		snapshots = append(snapshots, *s)
		return nil
	}).Times(2)

	summary, err := New(mockDB).ImportReader(strings.NewReader(sampleCSV), day)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, day, summary.Day)

	require.Len(t, endpoints, 2)
	assert.Equal(t, "WKS-001", endpoints[0].ID)
	assert.Equal(t, "wks-001.corp.example.com", endpoints[0].DisplayName)
	assert.Equal(t, "prod", endpoints[0].Environment)

	require.Len(t, snapshots, 2)

	wks := snapshots[0]
	assert.Equal(t, "WKS-001", wks.EndpointID)
	assert.Equal(t, day, wks.Day)
	assert.True(t, wks.R7Found)
	assert.True(t, wks.AMFound)
	assert.False(t, wks.DFFound)
	require.NotNil(t, wks.R7LagDays)
	assert.Equal(t, 0, *wks.R7LagDays)
	require.NotNil(t, wks.AMLagDays)
	assert.Equal(t, 2, *wks.AMLagDays)
	assert.Nil(t, wks.DFLagDays)
	require.NotNil(t, wks.ITLagDays)
	assert.Equal(t, 5, *wks.ITLagDays)
	assert.False(t, wks.PossibleFake)
	assert.Equal(t, "Windows", wks.OSFamily)
	assert.Equal(t, "Desktop", wks.DeviceType)
	assert.Equal(t, "user@example.com", wks.Email)
	assert.Equal(t, "10.0.0.5", wks.IPAddress)

	srv := snapshots[1]
	assert.Equal(t, "SRV-009", srv.EndpointID)
	assert.False(t, srv.R7Found)
	assert.True(t, srv.VMFound)
	assert.True(t, srv.PossibleFake)
}

func TestImportReaderNoHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := New(db.NewMockService(ctrl)).ImportReader(strings.NewReader(""), time.Now())

	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestImportReaderMissingHostnameColumn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	csv := "FQDN,Rapid7\nwks.example.com,true\n"

	_, err := New(db.NewMockService(ctrl)).ImportReader(strings.NewReader(csv), time.Now())

	assert.ErrorIs(t, err, ErrNoHostname)
}
