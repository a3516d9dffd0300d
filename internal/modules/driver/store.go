// README: Driver profile store backed by PostgreSQL, with a Redis cache for display reads.
package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"ridehub/internal/types"
)

type Store struct {
	db       *pgxpool.Pool
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewStore builds the profile store. cache may be nil, in which case
// cached reads always hit Postgres.
func NewStore(db *pgxpool.Pool, cache *redis.Client, cacheTTL time.Duration) *Store {
	return &Store{db: db, cache: cache, cacheTTL: cacheTTL}
}

const profileColumns = `id, account_id, approval_status, active_status, vehicle_license, vehicle_capacity, created_at, updated_at`

func (s *Store) Create(ctx context.Context, p *Profile) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO driver_profiles (
			id, account_id, approval_status, active_status,
			vehicle_license, vehicle_capacity, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(p.ID), string(p.AccountID), string(p.ApprovalStatus), string(p.ActiveStatus),
		p.VehicleLicense, p.VehicleCapacity, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *Store) GetByAccount(ctx context.Context, accountID types.ID) (*Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM driver_profiles WHERE account_id = $1`, string(accountID))
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Store) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.Query(ctx, `SELECT `+profileColumns+` FROM driver_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Non-nil so empty results encode as [] rather than a missing field.
	profiles := make([]*Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Update writes the full profile row and drops any cached snapshot so the
// next availability read sees the change.
func (s *Store) Update(ctx context.Context, p *Profile) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE driver_profiles
		SET approval_status = $1, active_status = $2, vehicle_license = $3,
		    vehicle_capacity = $4, updated_at = $5
		WHERE account_id = $6`,
		string(p.ApprovalStatus), string(p.ActiveStatus), p.VehicleLicense,
		p.VehicleCapacity, p.UpdatedAt, string(p.AccountID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	s.invalidateProfile(ctx, p.AccountID)
	return nil
}

// CachedProfile reads a profile, serving from Redis while the TTL holds.
// Only display paths use it: matching decisions must call GetByAccount, as
// a concurrent reader can repopulate the cache with a pre-write row after
// the invalidation and reads here may be stale for up to the TTL.
func (s *Store) CachedProfile(ctx context.Context, accountID types.ID) (*Profile, error) {
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, profileKey(accountID)).Result(); err == nil {
			var p Profile
			if json.Unmarshal([]byte(val), &p) == nil {
				return &p, nil
			}
		}
	}

	p, err := s.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(p); err == nil {
			_ = s.cache.Set(ctx, profileKey(accountID), raw, s.cacheTTL).Err()
		}
	}
	return p, nil
}

func (s *Store) invalidateProfile(ctx context.Context, accountID types.ID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, profileKey(accountID)).Err()
}

func profileKey(accountID types.ID) string {
	return fmt.Sprintf("driver:profile:%s", string(accountID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID, &p.AccountID, &p.ApprovalStatus, &p.ActiveStatus,
		&p.VehicleLicense, &p.VehicleCapacity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
