// README: Driver profile service: application, approval workflow, availability.
package driver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ridehub/internal/modules/ride"
	"ridehub/internal/types"
)

var (
	ErrNotFound      = errors.New("driver not found")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("driver profile already exists")
	ErrBadRequest    = errors.New("bad request")
)

// Earnings reports a driver's completed fare total. Implemented by the
// ride module.
type Earnings interface {
	CompletedFareTotal(ctx context.Context, driverID types.ID) (float64, error)
}

type Service struct {
	store    *Store
	accounts ride.Accounts
	earnings Earnings
	log      *logrus.Logger
}

func NewService(store *Store, accounts ride.Accounts, earnings Earnings, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: store, accounts: accounts, earnings: earnings, log: log}
}

// BindEarnings attaches the fare reporter after construction. The ride
// service consumes this service's snapshots, so the back-link is closed
// once both exist.
func (s *Service) BindEarnings(e Earnings) {
	s.earnings = e
}

type ApplyCommand struct {
	Actor           types.Identity
	VehicleLicense  string
	VehicleCapacity int
}

type UpdateVehicleCommand struct {
	AccountID       types.ID
	Actor           types.Identity
	VehicleLicense  *string
	VehicleCapacity *int
}

// ProfileView is a profile plus derived data for the detail endpoint.
type ProfileView struct {
	Profile       *Profile `json:"profile"`
	TotalEarnings float64  `json:"totalEarnings"`
}

// Apply registers a driver profile for the calling driver-role account.
// The profile starts pending and offline.
func (s *Service) Apply(ctx context.Context, cmd ApplyCommand) (*Profile, error) {
	if cmd.Actor.Role != types.RoleDriver {
		return nil, ErrForbidden
	}
	license := strings.ToUpper(strings.TrimSpace(cmd.VehicleLicense))
	if license == "" || cmd.VehicleCapacity < 1 {
		return nil, ErrBadRequest
	}

	if _, err := s.store.GetByAccount(ctx, cmd.Actor.UserID); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	p := &Profile{
		ID:              types.NewID(),
		AccountID:       cmd.Actor.UserID,
		ApprovalStatus:  ApprovalPending,
		ActiveStatus:    ActiveOffline,
		VehicleLicense:  license,
		VehicleCapacity: cmd.VehicleCapacity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"account_id": p.AccountID}).Info("driver application received")
	return p, nil
}

// Get returns the profile with lifetime earnings, owner-or-admin only.
// Display-only, so the TTL-cached read is fine here.
func (s *Service) Get(ctx context.Context, accountID types.ID, actor types.Identity) (*ProfileView, error) {
	if actor.Role != types.RoleAdmin && actor.UserID != accountID {
		return nil, ErrForbidden
	}
	p, err := s.store.CachedProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var total float64
	if s.earnings != nil {
		total, err = s.earnings.CompletedFareTotal(ctx, accountID)
		if err != nil {
			return nil, err
		}
	}
	return &ProfileView{Profile: p, TotalEarnings: total}, nil
}

func (s *Service) List(ctx context.Context, actor types.Identity) ([]*Profile, error) {
	if actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.store.List(ctx)
}

// UpdateVehicle edits vehicle details, owner or admin.
func (s *Service) UpdateVehicle(ctx context.Context, cmd UpdateVehicleCommand) (*Profile, error) {
	if cmd.Actor.Role != types.RoleAdmin && cmd.Actor.UserID != cmd.AccountID {
		return nil, ErrForbidden
	}
	p, err := s.store.GetByAccount(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if cmd.VehicleLicense != nil {
		license := strings.ToUpper(strings.TrimSpace(*cmd.VehicleLicense))
		if license == "" {
			return nil, ErrBadRequest
		}
		p.VehicleLicense = license
	}
	if cmd.VehicleCapacity != nil {
		if *cmd.VehicleCapacity < 1 {
			return nil, ErrBadRequest
		}
		p.VehicleCapacity = *cmd.VehicleCapacity
	}
	return s.save(ctx, p)
}

// Approve moves a profile to approved. Admin-only.
func (s *Service) Approve(ctx context.Context, accountID types.ID, actor types.Identity) (*Profile, error) {
	return s.setApproval(ctx, accountID, actor, ApprovalApproved)
}

// RejectApplication declines a driver application. Admin-only.
func (s *Service) RejectApplication(ctx context.Context, accountID types.ID, actor types.Identity) (*Profile, error) {
	return s.setApproval(ctx, accountID, actor, ApprovalRejected)
}

// Suspend takes an active driver off the platform. The profile is also
// forced offline so stale availability cannot linger.
func (s *Service) Suspend(ctx context.Context, accountID types.ID, actor types.Identity) (*Profile, error) {
	return s.setApproval(ctx, accountID, actor, ApprovalSuspended)
}

func (s *Service) setApproval(ctx context.Context, accountID types.ID, actor types.Identity, status ApprovalStatus) (*Profile, error) {
	if actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	p, err := s.store.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus == status {
		return nil, ErrBadRequest
	}
	p.ApprovalStatus = status
	if status == ApprovalSuspended {
		p.ActiveStatus = ActiveOffline
	}
	updated, err := s.save(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"account_id": accountID, "approval": status}).Info("driver approval update")
	return updated, nil
}

// SetActiveStatus flips the online/offline flag. Owner-only, and only for
// approved drivers.
func (s *Service) SetActiveStatus(ctx context.Context, accountID types.ID, actor types.Identity, status ActiveStatus) (*Profile, error) {
	if actor.UserID != accountID {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrBadRequest
	}
	p, err := s.store.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus != ApprovalApproved {
		return nil, ErrBadRequest
	}
	p.ActiveStatus = status
	return s.save(ctx, p)
}

// Snapshot implements the ride module's DriverDirectory collaborator.
// Matching decisions hang off these fields, so the profile row is read
// directly; the Redis cache serves display reads only.
func (s *Service) Snapshot(ctx context.Context, accountID types.ID) (ride.Snapshot, error) {
	p, err := s.store.GetByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ride.Snapshot{}, ride.ErrNotFound
		}
		return ride.Snapshot{}, err
	}
	acct, err := s.accounts.AccountInfo(ctx, accountID)
	if err != nil {
		return ride.Snapshot{}, err
	}
	return ride.Snapshot{
		AccountID:       accountID,
		ApprovalStatus:  string(p.ApprovalStatus),
		ActiveStatus:    string(p.ActiveStatus),
		VehicleCapacity: p.VehicleCapacity,
		Blocked:         acct.Blocked,
	}, nil
}

func (s *Service) save(ctx context.Context, p *Profile) (*Profile, error) {
	p.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
