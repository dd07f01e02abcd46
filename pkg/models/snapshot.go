package models

import (
	"strings"
	"time"
)

// Endpoint identifies one monitored machine. The ID is assigned on first
// sighting in an import and never changes; later imports may update the
// display name or environment tag. Endpoints are never deleted, even when
// they stop appearing in snapshots.
type Endpoint struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	Environment string    `json:"environment,omitempty"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// Snapshot is one day's raw tool-reporting facts for one endpoint.
// Lag fields count days since the tool last reported; 0 means "reported
// today" and nil means unknown/never, which is not the same as 0.
type Snapshot struct {
	ID         int64     `json:"-"`
	EndpointID string    `json:"endpoint_id"`
	Day        time.Time `json:"day"`

	R7Found bool `json:"r7_found"`
	AMFound bool `json:"am_found"`
	DFFound bool `json:"df_found"`
	ITFound bool `json:"it_found"`
	// VMFound is recorded for reference but never enters health math.
	VMFound bool `json:"vm_found"`

	R7LagDays *int `json:"r7_lag_days,omitempty"`
	AMLagDays *int `json:"am_lag_days,omitempty"`
	DFLagDays *int `json:"df_lag_days,omitempty"`
	ITLagDays *int `json:"it_lag_days,omitempty"`

	// PossibleFake marks synthetic/test endpoints, excluded from analysis.
	PossibleFake bool   `json:"possible_fake"`
	OSFamily     string `json:"os_family,omitempty"`
	DeviceType   string `json:"device_type,omitempty"`

	Email        string `json:"email,omitempty"`
	IPAddress    string `json:"ip_address,omitempty"`
	VMPowerState string `json:"vm_power_state,omitempty"`
	R7AgentID    string `json:"r7_agent_id,omitempty"`
	ITDeviceID   string `json:"it_device_id,omitempty"`
}

// WindowsDesktop reports whether the snapshot describes a desktop or laptop
// Windows endpoint, used by consumers that exclude servers from analysis.
func (s *Snapshot) WindowsDesktop() bool {
	return strings.EqualFold(s.OSFamily, "windows") &&
		!strings.EqualFold(s.DeviceType, "server")
}

// DateOnly truncates t to midnight UTC. Snapshot days carry no time
// component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ImportSummary reports the outcome of one CSV import.
type ImportSummary struct {
	Day      time.Time `json:"day"`
	Rows     int       `json:"rows"`
	Imported int       `json:"imported"`
	Skipped  int       `json:"skipped"`
}
