package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"lostfound/internal/apperr"
	"lostfound/internal/auth"
	"lostfound/internal/policy"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	ByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
}

// BootstrapAdmin is the externally supplied admin credential pair. A login
// matching it provisions the admin record on first use. Zero value disables
// the bootstrap path entirely.
type BootstrapAdmin struct {
	Email    string
	Password string
}

func (b BootstrapAdmin) enabled() bool { return b.Email != "" && b.Password != "" }

func (b BootstrapAdmin) matches(email, password string) bool {
	if !b.enabled() || !strings.EqualFold(email, b.Email) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(b.Password)) == 1
}

// Service handles account registration, login, and admin user management.
type Service struct {
	store     Store
	bootstrap BootstrapAdmin
}

// NewService creates an account service.
func NewService(store Store, bootstrap BootstrapAdmin) *Service {
	return &Service{store: store, bootstrap: bootstrap}
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

var (
	hasLower = regexp.MustCompile(`[a-z]`)
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasDigit = regexp.MustCompile(`\d`)
)

func (in RegisterInput) validate() error {
	return validation.Errors{
		"name": validation.Validate(in.Name,
			validation.Required, validation.Length(2, 50)),
		"email": validation.Validate(in.Email,
			validation.Required, is.Email),
		"password": validation.Validate(in.Password,
			validation.Required, validation.Length(6, 0),
			validation.Match(hasLower).Error("must contain a lowercase letter"),
			validation.Match(hasUpper).Error("must contain an uppercase letter"),
			validation.Match(hasDigit).Error("must contain a digit"),
		),
	}.Filter()
}

// Register creates a student account. Fails with apperr.ErrEmailTaken when
// the email is already registered (case-insensitively).
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	return s.store.Create(ctx, User{
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		Role:         policy.RoleStudent,
	})
}

// Login verifies credentials and returns the account. The configured
// bootstrap admin pair bypasses stored credentials and provisions the admin
// record on first use. All other failures collapse to
// apperr.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if s.bootstrap.matches(email, password) {
		return s.ensureAdmin(ctx)
	}
	u, err := s.store.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return User{}, apperr.ErrInvalidCredentials
		}
		return User{}, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return User{}, apperr.ErrInvalidCredentials
	}
	return u, nil
}

// ensureAdmin returns the bootstrap admin account, creating it on first login.
// The stored hash is of the bootstrap password, so the account also works
// through the regular credential path.
func (s *Service) ensureAdmin(ctx context.Context) (User, error) {
	u, err := s.store.ByEmail(ctx, s.bootstrap.Email)
	if err == nil {
		if u.Role != policy.RoleAdmin {
			log.Printf("admin bootstrap: %s is held by a non-admin account, refusing bootstrap login", s.bootstrap.Email)
			return User{}, apperr.ErrInvalidCredentials
		}
		return u, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return User{}, err
	}
	hash, herr := auth.HashPassword(s.bootstrap.Password)
	if herr != nil {
		return User{}, herr
	}
	return s.store.Create(ctx, User{
		Name:         "Admin",
		Email:        strings.ToLower(s.bootstrap.Email),
		PasswordHash: hash,
		Role:         policy.RoleAdmin,
	})
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.store.ByID(ctx, id)
}

// List returns all accounts, newest first.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// Delete removes another user's account. Admin only, and never the admin's
// own account.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, targetID string) error {
	if !policy.CanDeleteUser(actor, targetID) {
		if actor.IsAdmin() && actor.ID == targetID {
			return apperr.ErrSelfDelete
		}
		return apperr.ErrForbidden
	}
	return s.store.Delete(ctx, targetID)
}
