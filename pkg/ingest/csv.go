// Package ingest maps externally produced CSV reports onto endpoint and
// snapshot records, one row at a time. Rows without an endpoint identifier
// never reach storage or the health engine.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mfreeman451/toolwatch/pkg/db"
	"github.com/mfreeman451/toolwatch/pkg/models"
)

var (
	ErrNoHeader      = errors.New("csv file has no header row")
	ErrNoHostname    = errors.New("header has no hostname column")
	ErrNoDayInName   = errors.New("no snapshot date found in filename")
	errFailedToRead  = errors.New("failed to read csv")
	errFailedToStore = errors.New("failed to store row")
)

// columnAliases maps normalized external header names onto canonical
// snapshot fields. Reports from different exports disagree on naming, so
// several spellings map to the same field.
var columnAliases = map[string]string{
	"hostname":     "hostname",
	"devicename":   "hostname",
	"computername": "hostname",
	"fqdn":         "display_name",
	"displayname":  "display_name",
	"environment":  "environment",
	"env":          "environment",

	"rapid7":        "r7_found",
	"r7":            "r7_found",
	"rapid7lagdays": "r7_lag_days",
	"r7lagdays":     "r7_lag_days",

	"antimalware":        "am_found",
	"am":                 "am_found",
	"antimalwarelagdays": "am_lag_days",
	"amlagdays":          "am_lag_days",

	"defender":        "df_found",
	"df":              "df_found",
	"defenderlagdays": "df_lag_days",
	"dflagdays":       "df_lag_days",

	"intune":        "it_found",
	"it":            "it_found",
	"intunelagdays": "it_lag_days",
	"itlagdays":     "it_lag_days",

	"vmware":         "vm_found",
	"vm":             "vm_found",
	"possiblefake":   "possible_fake",
	"osfamily":       "os_family",
	"devicetype":     "device_type",
	"email":          "email",
	"ipaddress":      "ip_address",
	"ip":             "ip_address",
	"vmpowerstate":   "vm_power_state",
	"rapid7agentid":  "r7_agent_id",
	"r7agentid":      "r7_agent_id",
	"intunedeviceid": "it_device_id",
	"itdeviceid":     "it_device_id",
}

// filenameDayPatterns match a date token in upload filenames, e.g.
// "coverage_2026-08-30.csv" or "coverage-20260830.csv".
var filenameDayPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
	regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`),
}

// Importer writes imported rows through the snapshot store.
type Importer struct {
	db db.Service
}

// New creates an Importer over the given store.
func New(d db.Service) *Importer {
	return &Importer{db: d}
}

// ImportFile imports one CSV report, deriving the snapshot day from the
// filename.
func (imp *Importer) ImportFile(path string) (*models.ImportSummary, error) {
	day, err := DayFromFilename(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close %s: %v", path, err)
		}
	}()

	return imp.ImportReader(f, day)
}

// ImportReader imports CSV rows for one snapshot day. Rows missing the
// endpoint identifier are counted as skipped, not errors.
func (imp *Importer) ImportReader(r io.Reader, day time.Time) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToRead, err)
	}

	columns := mapHeader(header)
	if _, ok := columns["hostname"]; !ok {
		return nil, ErrNoHostname
	}

	summary := &models.ImportSummary{Day: models.DateOnly(day)}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", errFailedToRead, err)
		}

		summary.Rows++

		if err := imp.importRow(columns, record, summary.Day); err != nil {
			if errors.Is(err, errMissingHostname) {
				summary.Skipped++
				continue
			}

			return nil, err
		}

		summary.Imported++
	}

	return summary, nil
}

var errMissingHostname = errors.New("row has no endpoint identifier")

func (imp *Importer) importRow(columns map[string]int, record []string, day time.Time) error {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[idx])
	}

	hostname := field("hostname")
	if hostname == "" {
		return errMissingHostname
	}

	now := time.Now().UTC()

	endpoint := &models.Endpoint{
		ID:          hostname,
		DisplayName: field("display_name"),
		Environment: field("environment"),
		FirstSeen:   now,
		LastSeen:    now,
	}

	if err := imp.db.UpsertEndpoint(endpoint); err != nil {
		return fmt.Errorf("%w: %w", errFailedToStore, err)
	}

	snapshot := &models.Snapshot{
		EndpointID:   hostname,
		Day:          day,
		R7Found:      parseBool(field("r7_found")),
		AMFound:      parseBool(field("am_found")),
		DFFound:      parseBool(field("df_found")),
		ITFound:      parseBool(field("it_found")),
		VMFound:      parseBool(field("vm_found")),
		R7LagDays:    parseLag(field("r7_lag_days")),
		AMLagDays:    parseLag(field("am_lag_days")),
		DFLagDays:    parseLag(field("df_lag_days")),
		ITLagDays:    parseLag(field("it_lag_days")),
		PossibleFake: parseBool(field("possible_fake")),
		OSFamily:     field("os_family"),
		DeviceType:   field("device_type"),
		Email:        field("email"),
		IPAddress:    field("ip_address"),
		VMPowerState: field("vm_power_state"),
		R7AgentID:    field("r7_agent_id"),
		ITDeviceID:   field("it_device_id"),
	}

	if err := imp.db.InsertSnapshot(snapshot); err != nil {
		return fmt.Errorf("%w: %w", errFailedToStore, err)
	}

	return nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int, len(header))

	for i, name := range header {
		normalized := normalizeHeader(name)

		if canonical, ok := columnAliases[normalized]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}

	return columns
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		default:
			return r
		}
	}, name)
}

// parseBool accepts the boolean-ish strings the upstream exports produce.
// Anything unrecognized is false.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}

// parseLag treats empty or non-numeric values as unknown, which is not the
// same as a lag of 0.
func parseLag(v string) *int {
	if v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil
	}

	return &n
}

// DayFromFilename extracts the snapshot calendar date from an upload
// filename. Both 2006-01-02 and 20060102 tokens are accepted.
func DayFromFilename(name string) (time.Time, error) {
	for _, pattern := range filenameDayPatterns {
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}

		day, err := time.ParseInLocation("2006-01-02",
			fmt.Sprintf("%s-%s-%s", match[1], match[2], match[3]), time.UTC)
		if err != nil {
			continue
		}

		return day, nil
	}

	return time.Time{}, fmt.Errorf("%w: %s", ErrNoDayInName, name)
}
