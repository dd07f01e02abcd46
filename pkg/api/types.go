package api

import (
	"time"

	"github.com/mfreeman451/toolwatch/pkg/models"
)

// SystemStatus is the summary answered on /api/status.
type SystemStatus struct {
	TotalEndpoints int        `json:"total_endpoints"`
	LatestSnapshot *time.Time `json:"latest_snapshot,omitempty"`
}

// EndpointPage is one page of an endpoint listing.
type EndpointPage struct {
	Endpoints []models.Endpoint `json:"endpoints"`
	Total     int               `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// StabilityResponse wraps per-endpoint stability metrics. Metrics is null
// when the window holds no usable snapshots; that is a displayable state,
// not an error.
type StabilityResponse struct {
	EndpointID       string      `json:"endpoint_id"`
	WindowDays       int         `json:"window_days"`
	InsufficientData bool        `json:"insufficient_data"`
	Metrics          interface{} `json:"metrics,omitempty"`
}
