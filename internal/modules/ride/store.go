// README: Ride ledger backed by PostgreSQL; conditional status updates plus audit events.
package ride

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridehub/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const rideColumns = `id, rider_id, driver_id, passengers, trip_from, trip_to, fare, status, created_at, updated_at`

func (s *Store) Create(ctx context.Context, r *Ride) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO rides (
			id, rider_id, driver_id, passengers, trip_from, trip_to, fare,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(r.ID),
		string(r.RiderID),
		idPtr(r.DriverID),
		r.Passengers,
		r.From,
		r.To,
		r.Fare,
		string(r.Status),
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		// Two creates by the same rider can both pass the service's active
		// check; the partial unique index stops the second insert, which
		// surfaces as the same lost-race conflict.
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	// The first audit entry is written with the ride itself so the history
	// is never empty.
	_, err = tx.Exec(ctx, `
		INSERT INTO ride_status_events (ride_id, status, created_at)
		VALUES ($1, $2, $3)`,
		string(r.ID), string(r.Status), r.CreatedAt,
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	history, err := s.loadHistory(ctx, []types.ID{r.ID})
	if err != nil {
		return nil, err
	}
	r.StatusHistory = history[r.ID]
	return r, nil
}

// UpdateStatus performs the compare-and-swap transition: the row is updated
// only if its status still equals from, and the audit entry is appended in
// the same transaction. Returns false when another writer won the race.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, driverID *types.ID, at time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE rides
		SET status = $1,
		    driver_id = COALESCE($2, driver_id),
		    updated_at = $3
		WHERE id = $4 AND status = $5`,
		string(to),
		idPtr(driverID),
		at,
		string(id),
		string(from),
	)
	if err != nil {
		// The busy-driver unique index can fire when two accepts by the
		// same driver race on different rides; treat it like a lost CAS.
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ride_status_events (ride_id, status, created_at)
		VALUES ($1, $2, $3)`,
		string(id), string(to), at,
	)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) HasActiveByRider(ctx context.Context, riderID types.ID) (bool, error) {
	return s.exists(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM rides
			WHERE rider_id = $1 AND status = ANY($2)
		)`, string(riderID), statusStrings(riderActiveStatuses))
}

func (s *Store) HasActiveByDriver(ctx context.Context, driverID types.ID) (bool, error) {
	return s.exists(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM rides
			WHERE driver_id = $1 AND status = ANY($2)
		)`, string(driverID), statusStrings(driverBusyStatuses))
}

func (s *Store) ListPending(ctx context.Context) ([]*Ride, error) {
	return s.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE status = $1 ORDER BY created_at DESC`, string(StatusPending))
}

func (s *Store) ListByRider(ctx context.Context, riderID types.ID) ([]*Ride, error) {
	return s.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE rider_id = $1 ORDER BY created_at DESC`, string(riderID))
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]*Ride, error) {
	return s.list(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC`, string(driverID))
}

func (s *Store) ListAll(ctx context.Context) ([]*Ride, error) {
	return s.list(ctx, `SELECT `+rideColumns+` FROM rides ORDER BY created_at DESC`)
}

// SumCompletedFares totals the fares of a driver's completed rides.
func (s *Store) SumCompletedFares(ctx context.Context, driverID types.ID) (float64, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(fare), 0) FROM rides
		WHERE driver_id = $1 AND status = $2`,
		string(driverID), string(StatusCompleted),
	)
	var total float64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Non-nil so empty results encode as [] rather than a missing field.
	rides := make([]*Ride, 0)
	var ids []types.ID
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rides) == 0 {
		return rides, nil
	}

	history, err := s.loadHistory(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range rides {
		r.StatusHistory = history[r.ID]
	}
	return rides, nil
}

// loadHistory fetches audit entries for a batch of rides in insertion order.
func (s *Store) loadHistory(ctx context.Context, ids []types.ID) (map[types.ID][]StatusChange, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `
		SELECT ride_id, status, created_at
		FROM ride_status_events
		WHERE ride_id = ANY($1)
		ORDER BY id`, raw,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[types.ID][]StatusChange, len(ids))
	for rows.Next() {
		var rideID, status string
		var at time.Time
		if err := rows.Scan(&rideID, &status, &at); err != nil {
			return nil, err
		}
		out[types.ID(rideID)] = append(out[types.ID(rideID)], StatusChange{Status: Status(status), Timestamp: at})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	var driverID *string
	err := row.Scan(
		&r.ID, &r.RiderID, &driverID, &r.Passengers, &r.From, &r.To,
		&r.Fare, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if driverID != nil {
		d := types.ID(*driverID)
		r.DriverID = &d
	}
	return &r, nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
