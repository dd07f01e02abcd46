package health

import (
	"fmt"
	"math"
	"time"

	"github.com/mfreeman451/toolwatch/pkg/db"
	"github.com/mfreeman451/toolwatch/pkg/models"
)

// DefaultWindowDays is the trailing evaluation window used when a caller
// does not ask for one.
const DefaultWindowDays = 30

// Options narrows a fleet summary. The zero value evaluates every
// non-fake endpoint active on the latest snapshot day over the default
// window.
type Options struct {
	WindowDays  int    `json:"window_days"`
	Environment string `json:"environment,omitempty"`

	// WindowsDesktopOnly restricts the analysis to desktop/laptop Windows
	// endpoints, judged from each endpoint's latest snapshot.
	WindowsDesktopOnly bool `json:"windows_desktop_only,omitempty"`
}

// EndpointAction names one endpoint that needs attention and why.
type EndpointAction struct {
	EndpointID     string         `json:"endpoint_id"`
	Classification Classification `json:"classification"`
	Reason         string         `json:"reason"`
}

// FleetOverview is the fleet-wide fold of per-endpoint metrics. With no
// snapshots stored at all it carries all-zero counts and a nil date.
type FleetOverview struct {
	SnapshotDate     *time.Time             `json:"snapshot_date,omitempty"`
	WindowDays       int                    `json:"window_days"`
	Endpoints        int                    `json:"endpoints"`
	Classifications  map[Classification]int `json:"classifications"`
	Actionable       int                    `json:"actionable"`
	NotActionable    int                    `json:"not_actionable"`
	AverageScore     int                    `json:"average_score"`
	InsufficientData int                    `json:"insufficient_data"`
	NeedsAction      []EndpointAction       `json:"needs_action,omitempty"`
}

// Fleet runs the per-endpoint algorithms over every endpoint active on the
// latest snapshot day. Fetching is two-phase: one bulk query grouped by
// endpoint, then pure per-endpoint computation over the grouped rows.
type Fleet struct {
	db db.Service
}

// NewFleet creates a fleet aggregator over the given store.
func NewFleet(d db.Service) *Fleet {
	return &Fleet{db: d}
}

// window is the result of the bulk fetch phase: everything the pure
// per-endpoint compute phase needs, already grouped by endpoint id.
type window struct {
	day     time.Time
	ids     []string
	grouped map[string][]models.Snapshot
}

// fetchWindow runs the fetch phase. A nil window with a nil error means no
// snapshot has ever been stored.
func (f *Fleet) fetchWindow(opts Options) (*window, error) {
	latest, err := f.db.LatestSnapshotDate()
	if err != nil {
		return nil, fmt.Errorf("latest snapshot date: %w", err)
	}

	if latest == nil {
		return nil, nil
	}

	day := *latest

	ids, err := f.db.EndpointsActiveOn(day, opts.Environment)
	if err != nil {
		return nil, fmt.Errorf("endpoints active on %s: %w", day.Format("2006-01-02"), err)
	}

	start := day.AddDate(0, 0, -(opts.WindowDays - 1))

	rows, err := f.db.SnapshotsInRange(ids, start, day)
	if err != nil {
		return nil, fmt.Errorf("snapshots in range: %w", err)
	}

	return &window{day: day, ids: ids, grouped: groupByEndpoint(rows)}, nil
}

// Summarize computes the fleet overview for a trailing window.
func (f *Fleet) Summarize(opts Options) (*FleetOverview, error) {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}

	overview := &FleetOverview{
		WindowDays:      opts.WindowDays,
		Classifications: emptyClassCounts(),
	}

	win, err := f.fetchWindow(opts)
	if err != nil {
		return nil, err
	}

	if win == nil {
		return overview, nil
	}

	day := win.day
	overview.SnapshotDate = &day

	scoreSum := 0
	scored := 0

	// ids arrive sorted from the store, which keeps the fold and the
	// needs-action list deterministic across identical inputs.
	for _, id := range win.ids {
		snaps := win.grouped[id]

		if opts.WindowsDesktopOnly && !latestIsWindowsDesktop(snaps) {
			continue
		}

		m := Classify(id, snaps)
		if m == nil {
			overview.InsufficientData++
			continue
		}

		overview.Endpoints++
		overview.Classifications[m.Classification]++

		scoreSum += m.Score
		scored++

		if m.Actionable {
			overview.Actionable++
			overview.NeedsAction = append(overview.NeedsAction, EndpointAction{
				EndpointID:     id,
				Classification: m.Classification,
				Reason:         m.ActionReason,
			})
		} else {
			overview.NotActionable++
		}
	}

	if scored > 0 {
		overview.AverageScore = int(math.Round(float64(scoreSum) / float64(scored)))
	}

	return overview, nil
}

// WindowMetrics returns per-endpoint metrics for every endpoint active on
// the latest snapshot day, ordered by endpoint id. Endpoints with no
// usable snapshots in the window are omitted.
func (f *Fleet) WindowMetrics(opts Options) ([]Metrics, error) {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}

	win, err := f.fetchWindow(opts)
	if err != nil || win == nil {
		return nil, err
	}

	var results []Metrics

	for _, id := range win.ids {
		snaps := win.grouped[id]

		if opts.WindowsDesktopOnly && !latestIsWindowsDesktop(snaps) {
			continue
		}

		if m := Classify(id, snaps); m != nil {
			results = append(results, *m)
		}
	}

	return results, nil
}

// EndpointStability classifies a single endpoint over a trailing window
// anchored at the latest stored snapshot day. A nil result with a nil
// error means there is not enough data yet.
func (f *Fleet) EndpointStability(endpointID string, windowDays int) (*Metrics, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	latest, err := f.db.LatestSnapshotDate()
	if err != nil {
		return nil, fmt.Errorf("latest snapshot date: %w", err)
	}

	if latest == nil {
		return nil, nil
	}

	start := latest.AddDate(0, 0, -(windowDays - 1))

	snaps, err := f.db.SnapshotsForEndpoint(endpointID, start, *latest)
	if err != nil {
		return nil, fmt.Errorf("snapshots for %s: %w", endpointID, err)
	}

	return Classify(endpointID, snaps), nil
}

func emptyClassCounts() map[Classification]int {
	return map[Classification]int{
		ClassFlapping:        0,
		ClassRecovering:      0,
		ClassDegrading:       0,
		ClassStableHealthy:   0,
		ClassStableUnhealthy: 0,
	}
}

// groupByEndpoint splits the bulk fetch into per-endpoint slices,
// preserving the store's chronological ordering within each group.
func groupByEndpoint(rows []models.Snapshot) map[string][]models.Snapshot {
	grouped := make(map[string][]models.Snapshot)

	for _, row := range rows {
		grouped[row.EndpointID] = append(grouped[row.EndpointID], row)
	}

	return grouped
}

func latestIsWindowsDesktop(snaps []models.Snapshot) bool {
	if len(snaps) == 0 {
		return false
	}

	return snaps[len(snaps)-1].WindowsDesktop()
}
