// README: Account service: registration, credentials, moderation, and lookups.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"ridehub/internal/modules/ride"
	"ridehub/internal/types"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBadRequest         = errors.New("bad request")
)

type Service struct {
	store *Store
	log   *logrus.Logger
}

func NewService(store *Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{store: store, log: log}
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Role     types.Role
}

type UpdateCommand struct {
	ID    types.ID
	Actor types.Identity
	Name  *string
	Email *string
	Role  *types.Role
}

// Register creates a rider or driver account. Admin accounts are never
// self-issued.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	name := strings.TrimSpace(cmd.Name)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if name == "" || email == "" || len(cmd.Password) < 6 {
		return nil, ErrBadRequest
	}

	role := cmd.Role
	if role == "" {
		role = types.RoleRider
	}
	if !role.Valid() {
		return nil, ErrBadRequest
	}
	if role == types.RoleAdmin {
		return nil, ErrForbidden
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:           types.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return u, nil
}

// Authenticate checks email+password and returns the account for token
// issuance. Blocked accounts cannot log in.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Blocked {
		return nil, ErrForbidden
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id types.ID, actor types.Identity) (*User, error) {
	if actor.Role != types.RoleAdmin && actor.UserID != id {
		return nil, ErrForbidden
	}
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, actor types.Identity) ([]*User, error) {
	if actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.store.List(ctx)
}

// Update edits profile fields. Role changes are admin-only; email changes
// keep the uniqueness constraint.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*User, error) {
	if cmd.Actor.Role != types.RoleAdmin && cmd.Actor.UserID != cmd.ID {
		return nil, ErrForbidden
	}
	if cmd.Role != nil && cmd.Actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}

	u, err := s.store.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, ErrBadRequest
		}
		u.Name = name
	}
	if cmd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*cmd.Email))
		if email == "" {
			return nil, ErrBadRequest
		}
		if existing, err := s.store.GetByEmail(ctx, email); err == nil && existing.ID != u.ID {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		u.Email = email
	}
	if cmd.Role != nil {
		if !cmd.Role.Valid() {
			return nil, ErrBadRequest
		}
		u.Role = *cmd.Role
	}

	u.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Block marks an account blocked. Admin-only; admins cannot block
// themselves.
func (s *Service) Block(ctx context.Context, id types.ID, actor types.Identity) (*User, error) {
	return s.setBlocked(ctx, id, actor, true)
}

func (s *Service) Unblock(ctx context.Context, id types.ID, actor types.Identity) (*User, error) {
	return s.setBlocked(ctx, id, actor, false)
}

func (s *Service) setBlocked(ctx context.Context, id types.ID, actor types.Identity, blocked bool) (*User, error) {
	if actor.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	if actor.UserID == id {
		return nil, ErrBadRequest
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Blocked == blocked {
		return nil, ErrBadRequest
	}

	u.Blocked = blocked
	u.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": id, "blocked": blocked}).Info("user moderation update")
	return u, nil
}

// AccountInfo implements the ride module's Accounts collaborator.
func (s *Service) AccountInfo(ctx context.Context, id types.ID) (ride.AccountInfo, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ride.AccountInfo{}, ride.ErrNotFound
		}
		return ride.AccountInfo{}, err
	}
	return ride.AccountInfo{Role: u.Role, Blocked: u.Blocked}, nil
}
