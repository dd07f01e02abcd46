// Package db pkg/db/db.go provides SQLite storage for toolwatch endpoints
// and daily tool-reporting snapshots.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mfreeman451/toolwatch/pkg/models"
)

const (
	// dayFormat is how snapshot days are stored; date only, no time.
	dayFormat = "2006-01-02"

	// SQL statements for database initialization.
	createTablesSQL = `
	-- Endpoint identity. Rows persist indefinitely; imports only ever
	-- update the display name, environment and last_seen.
	CREATE TABLE IF NOT EXISTS endpoints (
		endpoint_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		environment TEXT NOT NULL DEFAULT '',
		first_seen TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_seen TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- Daily snapshots, append-only. The surrogate id breaks ties between
	-- duplicate (endpoint, day) rows: the highest id wins.
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		endpoint_id TEXT NOT NULL,
		snapshot_day TEXT NOT NULL,
		r7_found BOOLEAN NOT NULL DEFAULT 0,
		am_found BOOLEAN NOT NULL DEFAULT 0,
		df_found BOOLEAN NOT NULL DEFAULT 0,
		it_found BOOLEAN NOT NULL DEFAULT 0,
		vm_found BOOLEAN NOT NULL DEFAULT 0,
		r7_lag_days INTEGER,
		am_lag_days INTEGER,
		df_lag_days INTEGER,
		it_lag_days INTEGER,
		possible_fake BOOLEAN NOT NULL DEFAULT 0,
		os_family TEXT NOT NULL DEFAULT '',
		device_type TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		vm_power_state TEXT NOT NULL DEFAULT '',
		r7_agent_id TEXT NOT NULL DEFAULT '',
		it_device_id TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (endpoint_id) REFERENCES endpoints(endpoint_id)
	);

	-- Indexes for better query performance
	CREATE INDEX IF NOT EXISTS idx_snapshots_endpoint_day
		ON snapshots(endpoint_id, snapshot_day);
	CREATE INDEX IF NOT EXISTS idx_snapshots_day
		ON snapshots(snapshot_day);
	CREATE INDEX IF NOT EXISTS idx_endpoints_environment
		ON endpoints(environment);

	-- Enable WAL mode for better concurrent access
	PRAGMA journal_mode=WAL;
	PRAGMA foreign_keys=ON;
	`

	// authoritativeRows selects the latest-inserted snapshot per
	// (endpoint, day) pair.
	authoritativeRows = `SELECT MAX(id) FROM snapshots GROUP BY endpoint_id, snapshot_day`

	snapshotColumns = `id, endpoint_id, snapshot_day,
		r7_found, am_found, df_found, it_found, vm_found,
		r7_lag_days, am_lag_days, df_lag_days, it_lag_days,
		possible_fake, os_family, device_type,
		email, ip_address, vm_power_state, r7_agent_id, it_device_id`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes the schema.
func New(dbPath string) (Service, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{sqlDB}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// UpsertEndpoint inserts the endpoint on first sighting or updates its
// display name, environment and last_seen. The identifier itself never
// changes.
func (db *DB) UpsertEndpoint(e *models.Endpoint) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}
	defer rollbackOnError(tx, err)

	err = db.updateExistingEndpoint(tx, e)
	if errors.Is(err, sql.ErrNoRows) {
		err = db.insertNewEndpoint(tx, e)
	}

	if err != nil {
		return fmt.Errorf("%w endpoint: %w", ErrFailedToUpdate, err)
	}

	return tx.Commit()
}

func (*DB) updateExistingEndpoint(tx *sql.Tx, e *models.Endpoint) error {
	result, err := tx.Exec(`
        UPDATE endpoints
        SET display_name = ?,
            environment = ?,
            last_seen = ?
        WHERE endpoint_id = ?
    `, e.DisplayName, e.Environment, e.LastSeen, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update endpoint: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (*DB) insertNewEndpoint(tx *sql.Tx, e *models.Endpoint) error {
	_, err := tx.Exec(`
        INSERT INTO endpoints (endpoint_id, display_name, environment, first_seen, last_seen)
        VALUES (?, ?, ?, ?, ?)
    `, e.ID, e.DisplayName, e.Environment, e.FirstSeen, e.LastSeen)

	if err != nil {
		return fmt.Errorf("%w endpoint: %w", ErrFailedToInsert, err)
	}

	return nil
}

func rollbackOnError(tx *sql.Tx, err error) {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error rolling back transaction: %v", rbErr)
		}
	}
}

// GetEndpoint retrieves one endpoint identity record.
func (db *DB) GetEndpoint(endpointID string) (*models.Endpoint, error) {
	const query = `
        SELECT endpoint_id, display_name, environment, first_seen, last_seen
        FROM endpoints
        WHERE endpoint_id = ?
    `

	var e models.Endpoint
	err := db.QueryRow(query, endpointID).Scan(
		&e.ID,
		&e.DisplayName,
		&e.Environment,
		&e.FirstSeen,
		&e.LastSeen,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotFound, endpointID)
	}

	if err != nil {
		return nil, fmt.Errorf("%w endpoint: %w", ErrFailedToQuery, err)
	}

	return &e, nil
}

func endpointFilterClause(filter EndpointFilter) (string, []interface{}) {
	var clauses []string

	var args []interface{}

	if filter.Query != "" {
		clauses = append(clauses, "(endpoint_id LIKE ? OR display_name LIKE ?)")
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}

	if filter.Environment != "" {
		clauses = append(clauses, "environment = ?")
		args = append(args, filter.Environment)
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListEndpoints returns a page of endpoint identities matching the filter,
// ordered by id for stable pagination.
func (db *DB) ListEndpoints(filter EndpointFilter) ([]models.Endpoint, error) {
	where, args := endpointFilterClause(filter)

	query := `
        SELECT endpoint_id, display_name, environment, first_seen, last_seen
        FROM endpoints` + where + `
        ORDER BY endpoint_id
        LIMIT ? OFFSET ?
    `

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	args = append(args, limit, filter.Offset)

	rows, err := db.Query(query, args...) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w endpoints: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var endpoints []models.Endpoint

	for rows.Next() {
		var e models.Endpoint

		if err := rows.Scan(&e.ID, &e.DisplayName, &e.Environment, &e.FirstSeen, &e.LastSeen); err != nil {
			return nil, fmt.Errorf("%w endpoint row: %w", ErrFailedToScan, err)
		}

		endpoints = append(endpoints, e)
	}

	return endpoints, nil
}

// CountEndpoints returns the total matching the filter, for pagination.
func (db *DB) CountEndpoints(filter EndpointFilter) (int, error) {
	where, args := endpointFilterClause(filter)

	var count int

	err := db.QueryRow("SELECT COUNT(*) FROM endpoints"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w endpoint count: %w", ErrFailedToQuery, err)
	}

	return count, nil
}

// InsertSnapshot appends one daily snapshot row. Snapshots are never
// edited or deleted after creation.
func (db *DB) InsertSnapshot(s *models.Snapshot) error {
	const insertSQL = `
		INSERT INTO snapshots
			(endpoint_id, snapshot_day,
			 r7_found, am_found, df_found, it_found, vm_found,
			 r7_lag_days, am_lag_days, df_lag_days, it_lag_days,
			 possible_fake, os_family, device_type,
			 email, ip_address, vm_power_state, r7_agent_id, it_device_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(insertSQL,
		s.EndpointID,
		models.DateOnly(s.Day).Format(dayFormat),
		s.R7Found, s.AMFound, s.DFFound, s.ITFound, s.VMFound,
		nullableInt(s.R7LagDays), nullableInt(s.AMLagDays),
		nullableInt(s.DFLagDays), nullableInt(s.ITLagDays),
		s.PossibleFake, s.OSFamily, s.DeviceType,
		s.Email, s.IPAddress, s.VMPowerState, s.R7AgentID, s.ITDeviceID)

	if err != nil {
		return fmt.Errorf("%w snapshot: %w", ErrFailedToInsert, err)
	}

	return nil
}

// LatestSnapshotDate returns the most recent snapshot day present, or nil
// when no snapshot has ever been stored.
func (db *DB) LatestSnapshotDate() (*time.Time, error) {
	var day sql.NullString

	err := db.QueryRow("SELECT MAX(snapshot_day) FROM snapshots").Scan(&day)
	if err != nil {
		return nil, fmt.Errorf("%w latest snapshot day: %w", ErrFailedToQuery, err)
	}

	if !day.Valid {
		return nil, nil
	}

	parsed, err := time.ParseInLocation(dayFormat, day.String, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w latest snapshot day: %w", ErrFailedToScan, err)
	}

	return &parsed, nil
}

// EndpointsActiveOn returns the sorted ids of endpoints with an
// authoritative snapshot on the given day, excluding possible-fake rows and
// optionally restricted to one environment.
func (db *DB) EndpointsActiveOn(day time.Time, environment string) ([]string, error) {
	query := `
        SELECT DISTINCT s.endpoint_id
        FROM snapshots s
        JOIN endpoints e ON e.endpoint_id = s.endpoint_id
        WHERE s.snapshot_day = ?
        AND s.possible_fake = 0
        AND s.id IN (` + authoritativeRows + `)
    `

	args := []interface{}{models.DateOnly(day).Format(dayFormat)}

	if environment != "" {
		query += " AND e.environment = ?"

		args = append(args, environment)
	}

	query += " ORDER BY s.endpoint_id"

	rows, err := db.Query(query, args...) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w active endpoints: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w endpoint id: %w", ErrFailedToScan, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// SnapshotsInRange bulk-fetches the authoritative snapshots for many
// endpoints across a date range, ordered by endpoint then day so callers
// can group with a single pass.
func (db *DB) SnapshotsInRange(endpointIDs []string, start, end time.Time) ([]models.Snapshot, error) {
	if len(endpointIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(endpointIDs)), ",")

	query := `
        SELECT ` + snapshotColumns + `
        FROM snapshots
        WHERE endpoint_id IN (` + placeholders + `)
        AND snapshot_day BETWEEN ? AND ?
        AND id IN (` + authoritativeRows + `)
        ORDER BY endpoint_id, snapshot_day
    `

	args := make([]interface{}, 0, len(endpointIDs)+2)
	for _, id := range endpointIDs {
		args = append(args, id)
	}

	args = append(args,
		models.DateOnly(start).Format(dayFormat),
		models.DateOnly(end).Format(dayFormat))

	return db.querySnapshots(query, args...)
}

// SnapshotsForEndpoint fetches one endpoint's authoritative snapshots in a
// date range, chronologically ascending.
func (db *DB) SnapshotsForEndpoint(endpointID string, start, end time.Time) ([]models.Snapshot, error) {
	query := `
        SELECT ` + snapshotColumns + `
        FROM snapshots
        WHERE endpoint_id = ?
        AND snapshot_day BETWEEN ? AND ?
        AND id IN (` + authoritativeRows + `)
        ORDER BY snapshot_day
    `

	return db.querySnapshots(query, endpointID,
		models.DateOnly(start).Format(dayFormat),
		models.DateOnly(end).Format(dayFormat))
}

func (db *DB) querySnapshots(query string, args ...interface{}) ([]models.Snapshot, error) {
	rows, err := db.Query(query, args...) //nolint:rowserrcheck // rows.Close() is deferred
	if err != nil {
		return nil, fmt.Errorf("%w snapshots: %w", ErrFailedToQuery, err)
	}
	defer closeRows(rows)

	var snapshots []models.Snapshot

	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, *s)
	}

	return snapshots, nil
}

func scanSnapshot(rows *sql.Rows) (*models.Snapshot, error) {
	var (
		s   models.Snapshot
		day string

		r7Lag, amLag, dfLag, itLag sql.NullInt64
	)

	err := rows.Scan(
		&s.ID, &s.EndpointID, &day,
		&s.R7Found, &s.AMFound, &s.DFFound, &s.ITFound, &s.VMFound,
		&r7Lag, &amLag, &dfLag, &itLag,
		&s.PossibleFake, &s.OSFamily, &s.DeviceType,
		&s.Email, &s.IPAddress, &s.VMPowerState, &s.R7AgentID, &s.ITDeviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w snapshot row: %w", ErrFailedToScan, err)
	}

	s.Day, err = time.ParseInLocation(dayFormat, day, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w snapshot day: %w", ErrFailedToScan, err)
	}

	s.R7LagDays = intPtr(r7Lag)
	s.AMLagDays = intPtr(amLag)
	s.DFLagDays = intPtr(dfLag)
	s.ITLagDays = intPtr(itLag)

	return &s, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}

	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}

	n := int(v.Int64)

	return &n
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}
