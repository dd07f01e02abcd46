// Package db pkg/db/interfaces.go
package db

import (
	"time"

	"github.com/mfreeman451/toolwatch/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/mfreeman451/toolwatch/pkg/db Service

// EndpointFilter narrows endpoint listings. Query matches a substring of
// the endpoint id or display name; Environment matches exactly.
type EndpointFilter struct {
	Query       string
	Environment string
	Limit       int
	Offset      int
}

// Service represents all snapshot-store operations. Snapshots are
// append-only; when duplicate rows exist for one (endpoint, day) pair the
// latest-inserted row is authoritative, with ties broken by surrogate id.
type Service interface {
	Close() error

	// Endpoint identity operations.

	UpsertEndpoint(e *models.Endpoint) error
	GetEndpoint(endpointID string) (*models.Endpoint, error)
	ListEndpoints(filter EndpointFilter) ([]models.Endpoint, error)
	CountEndpoints(filter EndpointFilter) (int, error)

	// Snapshot operations.

	InsertSnapshot(s *models.Snapshot) error
	LatestSnapshotDate() (*time.Time, error)
	EndpointsActiveOn(day time.Time, environment string) ([]string, error)
	SnapshotsInRange(endpointIDs []string, start, end time.Time) ([]models.Snapshot, error)
	SnapshotsForEndpoint(endpointID string, start, end time.Time) ([]models.Snapshot, error)
}
