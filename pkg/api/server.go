// Package api exposes the toolwatch HTTP surface: endpoint listings,
// stability results, fleet summaries, CSV export and CSV import.
package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/mfreeman451/toolwatch/pkg/db"
	"github.com/mfreeman451/toolwatch/pkg/health"
	httpx "github.com/mfreeman451/toolwatch/pkg/http"
	"github.com/mfreeman451/toolwatch/pkg/ingest"
	"github.com/mfreeman451/toolwatch/pkg/models"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000

	// maxImportMemory bounds the in-memory part of a multipart upload.
	maxImportMemory = 32 << 20
)

// APIServer routes HTTP requests onto the store and the health engine.
type APIServer struct {
	db       db.Service
	fleet    *health.Fleet
	importer *ingest.Importer
	router   *mux.Router
}

// NewAPIServer wires the HTTP surface over a snapshot store. Imports are
// rate limited to one per second with a small burst.
func NewAPIServer(d db.Service) *APIServer {
	s := &APIServer{
		db:       d,
		fleet:    health.NewFleet(d),
		importer: ingest.New(d),
		router:   mux.NewRouter(),
	}
	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware)

	s.router.HandleFunc("/api/status", s.getStatus).Methods("GET")

	s.router.HandleFunc("/api/endpoints", s.getEndpoints).Methods("GET")
	s.router.HandleFunc("/api/endpoints/{id}", s.getEndpoint).Methods("GET")
	s.router.HandleFunc("/api/endpoints/{id}/snapshots", s.getEndpointSnapshots).Methods("GET")
	s.router.HandleFunc("/api/endpoints/{id}/stability", s.getEndpointStability).Methods("GET")

	s.router.HandleFunc("/api/fleet/overview", s.getFleetOverview).Methods("GET")
	s.router.HandleFunc("/api/fleet/export", s.exportFleet).Methods("GET")

	importLimiter := rate.NewLimiter(rate.Limit(1), 3)
	s.router.Handle("/api/import",
		httpx.RateLimit(importLimiter, http.HandlerFunc(s.importCSV))).Methods("POST")
}

// Router exposes the handler for embedding in an http.Server.
func (s *APIServer) Router() http.Handler {
	return s.router
}

// Start serves the API on addr.
func (s *APIServer) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *APIServer) getStatus(w http.ResponseWriter, _ *http.Request) {
	total, err := s.db.CountEndpoints(db.EndpointFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	latest, err := s.db.LatestSnapshotDate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, SystemStatus{
		TotalEndpoints: total,
		LatestSnapshot: latest,
	})
}

func (s *APIServer) getEndpoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := intParam(q.Get("limit"), defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := db.EndpointFilter{
		Query:       q.Get("q"),
		Environment: q.Get("environment"),
		Limit:       limit,
		Offset:      intParam(q.Get("offset"), 0),
	}

	endpoints, err := s.db.ListEndpoints(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	total, err := s.db.CountEndpoints(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if endpoints == nil {
		endpoints = []models.Endpoint{}
	}

	writeJSON(w, EndpointPage{
		Endpoints: endpoints,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

func (s *APIServer) getEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint, err := s.db.GetEndpoint(mux.Vars(r)["id"])
	if errors.Is(err, db.ErrEndpointNotFound) {
		http.Error(w, "Endpoint not found", http.StatusNotFound)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, endpoint)
}

func (s *APIServer) getEndpointSnapshots(w http.ResponseWriter, r *http.Request) {
	endpointID := mux.Vars(r)["id"]
	days := intParam(r.URL.Query().Get("days"), health.DefaultWindowDays)

	latest, err := s.db.LatestSnapshotDate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if latest == nil {
		writeJSON(w, []models.Snapshot{})
		return
	}

	start := latest.AddDate(0, 0, -(days - 1))

	snaps, err := s.db.SnapshotsForEndpoint(endpointID, start, *latest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if snaps == nil {
		snaps = []models.Snapshot{}
	}

	writeJSON(w, snaps)
}

func (s *APIServer) getEndpointStability(w http.ResponseWriter, r *http.Request) {
	endpointID := mux.Vars(r)["id"]
	days := intParam(r.URL.Query().Get("days"), health.DefaultWindowDays)

	metrics, err := s.fleet.EndpointStability(endpointID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := StabilityResponse{
		EndpointID: endpointID,
		WindowDays: days,
	}

	if metrics == nil {
		resp.InsufficientData = true
	} else {
		resp.Metrics = metrics
	}

	writeJSON(w, resp)
}

func fleetOptions(r *http.Request) health.Options {
	q := r.URL.Query()

	return health.Options{
		WindowDays:         intParam(q.Get("days"), health.DefaultWindowDays),
		Environment:        q.Get("environment"),
		WindowsDesktopOnly: parseFlag(q.Get("windows_desktop")),
	}
}

func (s *APIServer) getFleetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.fleet.Summarize(fleetOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, overview)
}

// exportFleet streams the per-endpoint stability results as CSV.
func (s *APIServer) exportFleet(w http.ResponseWriter, r *http.Request) {
	results, err := s.fleet.WindowMetrics(fleetOptions(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="stability.csv"`)

	cw := csv.NewWriter(w)

	header := []string{
		"endpoint_id", "classification", "stability_score",
		"current_health", "previous_health",
		"consecutive_days_stable", "health_change_count", "last_health_change",
		"gap_classification", "gap_expected",
		"recovery_stage", "recovery_stuck",
		"actionable", "action_reason",
	}

	if err := cw.Write(header); err != nil {
		log.Printf("Error writing export header: %v", err)
		return
	}

	for i := range results {
		m := &results[i]

		previous := ""
		if m.Previous != nil {
			previous = m.Previous.String()
		}

		row := []string{
			m.EndpointID,
			string(m.Classification),
			strconv.Itoa(m.Score),
			m.Current.String(),
			previous,
			strconv.Itoa(m.ConsecutiveDaysStable),
			strconv.Itoa(m.HealthChangeCount),
			m.LastHealthChange.Format("2006-01-02"),
			string(m.Gap.Classification),
			strconv.FormatBool(m.Gap.Expected),
			string(m.Recovery.Stage),
			strconv.FormatBool(m.Recovery.Stuck),
			strconv.FormatBool(m.Actionable),
			m.ActionReason,
		}

		if err := cw.Write(row); err != nil {
			log.Printf("Error writing export row: %v", err)
			return
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		log.Printf("Error flushing export: %v", err)
	}
}

func (s *APIServer) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportMemory); err != nil {
		http.Error(w, "expected multipart form upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing 'file' form field", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("failed to close upload: %v", err)
		}
	}()

	day, err := ingest.DayFromFilename(header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := s.importer.ImportReader(file, day)
	if err != nil {
		if errors.Is(err, ingest.ErrNoHeader) || errors.Is(err, ingest.ErrNoHostname) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeError(w, http.StatusInternalServerError, err)

		return
	}

	writeJSON(w, summary)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	log.Printf("request failed: %v", err)
	http.Error(w, http.StatusText(code), code)
}

func intParam(v string, fallback int) int {
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}

	return n
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(v)

	return err == nil && b
}
