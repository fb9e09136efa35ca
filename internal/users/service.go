package users

import (
	"context"
	"errors"
	"time"

	"number-inventory/internal/apperr"
	"number-inventory/internal/auth"
	"number-inventory/internal/rbac"
	"number-inventory/internal/validate"

	"github.com/google/uuid"
)

// Repository is the persistence contract for users.
// Implementations return apperr NotFound for missing users and apperr Conflict
// when a unique username or email would be violated.
type Repository interface {
	GetUser(ctx context.Context, id string) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	UserTaken(ctx context.Context, username, email, excludeID string) (bool, error)
	InsertUser(ctx context.Context, u User) error
	UpdateUser(ctx context.Context, u User) error
	ListUsers(ctx context.Context, q ListQuery) ([]User, int, error)
	UserStats(ctx context.Context, registeredSince time.Time) (Stats, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactive           = errors.New("account is deactivated")
)

// RecentWindow is how far back a registration counts as recent.
const RecentWindow = 30 * 24 * time.Hour

type Service struct {
	repo   Repository
	hasher *Hasher
	clock  func() time.Time
	newID  func() string
}

func NewService(repo Repository, hasher *Hasher) *Service {
	return &Service{repo: repo, hasher: hasher, clock: time.Now, newID: uuid.NewString}
}

// Authenticate checks credentials and stamps LastLogin.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return User{}, ErrInactive
	}

	now := s.now()
	u.LastLogin = &now
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// Identity implements auth.IdentityLookup.
func (s *Service) Identity(ctx context.Context, id string) (auth.Identity, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{UserID: u.ID, Username: u.Username, Role: string(u.Role), Active: u.IsActive}, nil
}

func (s *Service) Create(ctx context.Context, actor rbac.Role, in NewUser) (User, error) {
	if err := rbac.Authorize(actor, rbac.OpManageUsers); err != nil {
		return User{}, err
	}
	in.Normalize()
	if err := validate.Struct(in); err != nil {
		return User{}, err
	}

	taken, err := s.repo.UserTaken(ctx, in.Username, in.Email, "")
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, apperr.Conflict("User with this username or email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}
	now := s.now()
	u := User{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, actor rbac.Role, id string, ch Changes) (User, error) {
	if err := rbac.Authorize(actor, rbac.OpManageUsers); err != nil {
		return User{}, err
	}
	ch.Normalize()
	if err := validate.Struct(ch); err != nil {
		return User{}, err
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if ch.Username != nil || ch.Email != nil {
		username, email := u.Username, u.Email
		if ch.Username != nil {
			username = *ch.Username
		}
		if ch.Email != nil {
			email = *ch.Email
		}
		taken, err := s.repo.UserTaken(ctx, username, email, u.ID)
		if err != nil {
			return User{}, err
		}
		if taken {
			return User{}, apperr.Conflict("Username or email already exists")
		}
		u.Username, u.Email = username, email
	}
	if ch.Role != nil {
		u.Role = *ch.Role
	}
	if ch.IsActive != nil {
		u.IsActive = *ch.IsActive
	}
	u.UpdatedAt = s.now()
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Deactivate soft-deletes a user. Callers cannot deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, actorID string, actor rbac.Role, id string) error {
	if err := rbac.Authorize(actor, rbac.OpManageUsers); err != nil {
		return err
	}
	if actorID == id {
		return apperr.Validation("Cannot delete your own account")
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	u.UpdatedAt = s.now()
	return s.repo.UpdateUser(ctx, u)
}

func (s *Service) List(ctx context.Context, actor rbac.Role, q ListQuery) ([]User, int, error) {
	if err := rbac.Authorize(actor, rbac.OpManageUsers); err != nil {
		return nil, 0, err
	}
	q.Normalize()
	return s.repo.ListUsers(ctx, q)
}

func (s *Service) Stats(ctx context.Context, actor rbac.Role) (Stats, error) {
	if err := rbac.Authorize(actor, rbac.OpManageUsers); err != nil {
		return Stats{}, err
	}
	return s.repo.UserStats(ctx, s.now().Add(-RecentWindow))
}

// UpdateProfile lets a user change their own email.
func (s *Service) UpdateProfile(ctx context.Context, id, email string) (User, error) {
	ch := Changes{Email: &email}
	ch.Normalize()
	if err := validate.Struct(ch); err != nil {
		return User{}, err
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	taken, err := s.repo.UserTaken(ctx, "", *ch.Email, u.ID)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, apperr.Conflict("Email already in use")
	}
	u.Email = *ch.Email
	u.UpdatedAt = s.now()
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// EnsureAdmin creates an admin account unless the username exists. Used by seeding.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (User, bool, error) {
	existing, err := s.repo.FindUserByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return User{}, false, err
	}
	u, err := s.Create(ctx, rbac.RoleAdmin, NewUser{Username: username, Email: email, Password: password, Role: rbac.RoleAdmin})
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

// now is truncated to what Postgres timestamps can hold.
func (s *Service) now() time.Time { return s.clock().UTC().Truncate(time.Microsecond) }
