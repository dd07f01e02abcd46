package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreeman451/toolwatch/pkg/db"
	"github.com/mfreeman451/toolwatch/pkg/models"
)

func intp(n int) *int { return &n }

func doRequest(t *testing.T, s *APIServer, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	return rec
}

func TestGetStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().CountEndpoints(db.EndpointFilter{}).Return(42, nil)
	mockDB.EXPECT().LatestSnapshotDate().Return(&day, nil)

	rec := doRequest(t, NewAPIServer(mockDB),
		httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))

	assert.Equal(t, 42, status.TotalEndpoints)
	require.NotNil(t, status.LatestSnapshot)
	assert.Equal(t, day, *status.LatestSnapshot)
}

func TestGetEndpointsPagination(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	wantFilter := db.EndpointFilter{
		Query:       "wks",
		Environment: "prod",
		Limit:       10,
		Offset:      20,
	}

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().ListEndpoints(wantFilter).Return([]models.Endpoint{{ID: "wks-021"}}, nil)
	mockDB.EXPECT().CountEndpoints(wantFilter).Return(57, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/endpoints?q=wks&environment=prod&limit=10&offset=20", nil)

	rec := doRequest(t, NewAPIServer(mockDB), req)

	require.Equal(t, http.StatusOK, rec.Code)

	var page EndpointPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))

	assert.Equal(t, 57, page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 20, page.Offset)
	require.Len(t, page.Endpoints, 1)
	assert.Equal(t, "wks-021", page.Endpoints[0].ID)
}

func TestGetEndpointNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().GetEndpoint("ghost").Return(nil, db.ErrEndpointNotFound)

	rec := doRequest(t, NewAPIServer(mockDB),
		httptest.NewRequest(http.MethodGet, "/api/endpoints/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEndpointStabilityInsufficientData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().LatestSnapshotDate().Return(nil, nil)

	rec := doRequest(t, NewAPIServer(mockDB),
		httptest.NewRequest(http.MethodGet, "/api/endpoints/wks-001/stability", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.InsufficientData)
	assert.Nil(t, resp.Metrics)
}

func TestGetEndpointStability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	snaps := []models.Snapshot{
		{
			EndpointID: "wks-001",
			Day:        day,
			ITLagDays:  intp(0),
			R7Found:    true,
			AMFound:    true,
			DFFound:    true,
		},
	}

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().LatestSnapshotDate().Return(&day, nil)
	mockDB.EXPECT().SnapshotsForEndpoint("wks-001", gomock.Any(), day).Return(snaps, nil)

	rec := doRequest(t, NewAPIServer(mockDB),
		httptest.NewRequest(http.MethodGet, "/api/endpoints/wks-001/stability?days=7", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.InsufficientData)
	assert.Equal(t, 7, resp.WindowDays)
	require.NotNil(t, resp.Metrics)
}

func TestExportFleetCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	rows := []models.Snapshot{
		{
			EndpointID: "wks-001",
			Day:        day,
			ITLagDays:  intp(0),
			R7Found:    true,
			AMFound:    true,
			DFFound:    true,
		},
	}

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().LatestSnapshotDate().Return(&day, nil)
	mockDB.EXPECT().EndpointsActiveOn(day, "").Return([]string{"wks-001"}, nil)
	mockDB.EXPECT().SnapshotsInRange([]string{"wks-001"}, gomock.Any(), day).Return(rows, nil)

	rec := doRequest(t, NewAPIServer(mockDB),
		httptest.NewRequest(http.MethodGet, "/api/fleet/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "endpoint_id,classification,stability_score"))
	assert.True(t, strings.HasPrefix(lines[1], "wks-001,STABLE_HEALTHY,"))
}

func TestImportCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().UpsertEndpoint(gomock.Any()).Return(nil)
	mockDB.EXPECT().InsertSnapshot(gomock.Any()).Return(nil)

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "coverage_2026-08-30.csv")
	require.NoError(t, err)

	_, err = part.Write([]byte("Hostname,Rapid7\nWKS-001,true\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := doRequest(t, NewAPIServer(mockDB), req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.ImportSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, "2026-08-30", summary.Day.Format("2006-01-02"))
}

func TestImportCSVNoDateInFilename(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "coverage.csv")
	require.NoError(t, err)

	_, err = part.Write([]byte("Hostname,Rapid7\nWKS-001,true\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := doRequest(t, NewAPIServer(db.NewMockService(ctrl)), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
