// README: Ride lifecycle engine: creation preconditions, matching gate, and transitions.
package ride

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ridehub/internal/observability"
	"ridehub/internal/types"
)

var (
	ErrNotFound          = errors.New("ride not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("ride state conflict")
	ErrCapacityExceeded  = errors.New("vehicle capacity exceeded")
	ErrBadRequest        = errors.New("bad request")
)

// AccountInfo is what the lifecycle engine needs to know about an account.
type AccountInfo struct {
	Role    types.Role
	Blocked bool
}

// Accounts resolves a subject id to its role and blocked flag. Implemented
// by the user module.
type Accounts interface {
	AccountInfo(ctx context.Context, id types.ID) (AccountInfo, error)
}

// Snapshot is a driver's availability as read from the driver directory.
// Consulted read-only, re-fetched at every matching decision.
type Snapshot struct {
	AccountID       types.ID
	ApprovalStatus  string
	ActiveStatus    string
	VehicleCapacity int
	Blocked         bool
}

const (
	ApprovalApproved = "approved"
	ActiveOnline     = "online"
)

// DriverDirectory resolves a driver account id to its availability snapshot.
// Implemented by the driver module.
type DriverDirectory interface {
	Snapshot(ctx context.Context, accountID types.ID) (Snapshot, error)
}

type Service struct {
	store     *Store
	accounts  Accounts
	directory DriverDirectory
	log       *logrus.Logger
}

func NewService(store *Store, accounts Accounts, directory DriverDirectory, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: store, accounts: accounts, directory: directory, log: log}
}

type CreateCommand struct {
	Actor      types.Identity
	Passengers int
	From       string
	To         string
	Fare       float64
}

type AcceptCommand struct {
	RideID types.ID
	Actor  types.Identity
}

type RejectCommand struct {
	RideID types.ID
	Actor  types.Identity
}

type CancelCommand struct {
	RideID types.ID
	Actor  types.Identity
}

type TransitionCommand struct {
	RideID types.ID
	To     Status
	Actor  types.Identity
}

// Create inserts a pending ride for the calling rider. A rider may hold at
// most one ride in a non-terminal status.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.Passengers < 1 || cmd.Fare < 0 {
		return nil, ErrBadRequest
	}
	if strings.TrimSpace(cmd.From) == "" || strings.TrimSpace(cmd.To) == "" {
		return nil, ErrBadRequest
	}
	if cmd.Actor.Role != types.RoleRider {
		return nil, ErrForbidden
	}

	// Role and blocked flag are re-derived from the account record, not
	// trusted from the credential alone.
	acct, err := s.accounts.AccountInfo(ctx, cmd.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if acct.Role != types.RoleRider || acct.Blocked {
		return nil, ErrForbidden
	}

	active, err := s.store.HasActiveByRider(ctx, cmd.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrConflict
	}

	now := time.Now()
	r := &Ride{
		ID:            types.NewID(),
		RiderID:       cmd.Actor.UserID,
		Passengers:    cmd.Passengers,
		From:          strings.TrimSpace(cmd.From),
		To:            strings.TrimSpace(cmd.To),
		Fare:          cmd.Fare,
		Status:        StatusPending,
		StatusHistory: []StatusChange{{Status: StatusPending, Timestamp: now}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	observability.RidesCreatedTotal.Inc()
	s.log.WithFields(logrus.Fields{"ride_id": r.ID, "rider_id": r.RiderID}).Info("ride created")
	return r, nil
}

// AvailableRides lists pending rides for driver browsing, newest first.
func (s *Service) AvailableRides(ctx context.Context, actor types.Identity) ([]*Ride, error) {
	if actor.Role != types.RoleDriver {
		return nil, ErrForbidden
	}
	acct, err := s.accounts.AccountInfo(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if acct.Blocked {
		return nil, ErrForbidden
	}
	return s.store.ListPending(ctx)
}

// Accept binds the calling driver to a pending ride. Every eligibility
// condition is re-checked at the moment of acceptance; the final write is
// conditional on the ride still being pending.
func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) (*Ride, error) {
	if cmd.Actor.Role != types.RoleDriver {
		return nil, ErrForbidden
	}

	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}

	snap, err := s.directory.Snapshot(ctx, cmd.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if snap.Blocked {
		return nil, ErrForbidden
	}
	if snap.ApprovalStatus != ApprovalApproved {
		return nil, ErrForbidden
	}
	if snap.ActiveStatus != ActiveOnline {
		return nil, ErrForbidden
	}
	if snap.VehicleCapacity < r.Passengers {
		return nil, ErrCapacityExceeded
	}
	if r.Status != StatusPending {
		return nil, ErrConflict
	}

	busy, err := s.store.HasActiveByDriver(ctx, cmd.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrConflict
	}

	updated, err := s.transition(ctx, r, StatusAccepted, &cmd.Actor.UserID)
	if err != nil {
		return nil, err
	}
	observability.RidesAcceptedTotal.Inc()
	s.log.WithFields(logrus.Fields{"ride_id": r.ID, "driver_id": cmd.Actor.UserID}).Info("ride accepted")
	return updated, nil
}

// Reject lets a driver decline a pending, unassigned ride. Distinct from a
// rider cancelling: the request is closed because no driver will take it.
func (s *Service) Reject(ctx context.Context, cmd RejectCommand) (*Ride, error) {
	if cmd.Actor.Role != types.RoleDriver {
		return nil, ErrForbidden
	}
	acct, err := s.accounts.AccountInfo(ctx, cmd.Actor.UserID)
	if err != nil {
		return nil, err
	}
	if acct.Blocked {
		return nil, ErrForbidden
	}

	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != nil {
		return nil, ErrForbidden
	}
	if r.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, r, StatusRejected, nil)
}

// Cancel lets the owning rider withdraw a ride while it is still pending.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Ride, error) {
	if cmd.Actor.Role != types.RoleRider {
		return nil, ErrForbidden
	}
	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.RiderID != cmd.Actor.UserID {
		return nil, ErrForbidden
	}
	if r.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	return s.transition(ctx, r, StatusCancelled, nil)
}

// RequestTransition is the generic entry point for status updates. Riders
// may only cancel their own pending ride; drivers may only advance rides
// they are bound to.
func (s *Service) RequestTransition(ctx context.Context, cmd TransitionCommand) (*Ride, error) {
	if !cmd.To.Valid() {
		return nil, ErrBadRequest
	}

	r, err := s.store.Get(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}

	switch cmd.Actor.Role {
	case types.RoleRider:
		if r.RiderID != cmd.Actor.UserID {
			return nil, ErrForbidden
		}
		if cmd.To != StatusCancelled {
			return nil, ErrForbidden
		}
	case types.RoleDriver:
		if r.DriverID == nil || *r.DriverID != cmd.Actor.UserID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if !CanTransition(r.Status, cmd.To) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.transition(ctx, r, cmd.To, nil)
	if err != nil {
		return nil, err
	}
	if cmd.To == StatusCompleted {
		observability.RidesCompletedTotal.Inc()
	}
	return updated, nil
}

// Get returns a ride to a participant or an admin.
func (s *Service) Get(ctx context.Context, rideID types.ID, actor types.Identity) (*Ride, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !s.isParticipant(r, actor) && actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return r, nil
}

// ListMine returns the caller's own rides (rider or driver view).
func (s *Service) ListMine(ctx context.Context, actor types.Identity) ([]*Ride, error) {
	switch actor.Role {
	case types.RoleRider:
		return s.store.ListByRider(ctx, actor.UserID)
	case types.RoleDriver:
		return s.store.ListByDriver(ctx, actor.UserID)
	default:
		return nil, ErrForbidden
	}
}

// ListAll is the admin view of every ride.
func (s *Service) ListAll(ctx context.Context, actor types.Identity) ([]*Ride, error) {
	if actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.store.ListAll(ctx)
}

// ListByDriver returns a driver's ride history, self-or-admin only.
func (s *Service) ListByDriver(ctx context.Context, driverID types.ID, actor types.Identity) ([]*Ride, error) {
	if actor.Role != types.RoleAdmin && (actor.Role != types.RoleDriver || actor.UserID != driverID) {
		return nil, ErrForbidden
	}
	return s.store.ListByDriver(ctx, driverID)
}

// ListByRider returns a rider's ride history, self-or-admin only.
func (s *Service) ListByRider(ctx context.Context, riderID types.ID, actor types.Identity) ([]*Ride, error) {
	if actor.Role != types.RoleAdmin && (actor.Role != types.RoleRider || actor.UserID != riderID) {
		return nil, ErrForbidden
	}
	return s.store.ListByRider(ctx, riderID)
}

// CompletedFareTotal reports a driver's lifetime earnings from completed
// rides. Consumed by the driver module.
func (s *Service) CompletedFareTotal(ctx context.Context, driverID types.ID) (float64, error) {
	return s.store.SumCompletedFares(ctx, driverID)
}

// transition applies one conditional status change. The caller has already
// authorized the actor and validated domain preconditions; this is the
// single place the compare-and-swap write happens.
func (s *Service) transition(ctx context.Context, r *Ride, to Status, bindDriver *types.ID) (*Ride, error) {
	if !CanTransition(r.Status, to) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, to, bindDriver, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		observability.TransitionConflictsTotal.Inc()
		s.log.WithFields(logrus.Fields{"ride_id": r.ID, "from": r.Status, "to": to}).Warn("transition lost race")
		return nil, ErrConflict
	}
	return s.store.Get(ctx, r.ID)
}

func (s *Service) isParticipant(r *Ride, actor types.Identity) bool {
	if r.RiderID == actor.UserID {
		return true
	}
	return r.DriverID != nil && *r.DriverID == actor.UserID
}
