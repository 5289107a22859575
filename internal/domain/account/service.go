package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong
// password alike.
var ErrInvalidCredentials = &apierr.Error{Kind: apierr.KindUnauthorized, Msg: "invalid username or password"}

// TokenIssuer signs login tokens.
type TokenIssuer interface {
	Issue(accountID, username, userType string) (*auth.IssuedToken, error)
}

// Revoker invalidates issued tokens.
type Revoker interface {
	Revoke(jti string, expiresAt time.Time)
	RevokeAccount(accountID string)
}

// LocationValidator checks an assigned area against the community list.
type LocationValidator interface {
	ValidateLocation(ctx context.Context, sel geo.Selection, complete bool) error
}

type Service struct {
	repo      Repository
	tokens    TokenIssuer
	revoker   Revoker
	locations LocationValidator
	logger    zerolog.Logger
	cost      int
	dummyHash []byte
	now       func() time.Time
}

type Option func(*Service)

// WithBcryptCost sets the bcrypt work factor for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo Repository, tokens TokenIssuer, revoker Revoker, locations LocationValidator, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		tokens:    tokens,
		revoker:   revoker,
		locations: locations,
		logger:    zerolog.Nop(),
		cost:      bcrypt.DefaultCost,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	// Compared against on unknown usernames so both failure paths cost the same.
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
	return s
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *Service) validateLocation(ctx context.Context, sel geo.Selection) error {
	if sel.IsEmpty() || s.locations == nil {
		return nil
	}
	return s.locations.ValidateLocation(ctx, sel, false)
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Account, error) {
	req.Username = normalizeUsername(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	a := &Account{
		Username:    req.Username,
		FullName:    req.FullName,
		Email:       optional(req.Email),
		Phone:       optional(req.Phone),
		UserType:    req.UserType,
		Active:      true,
		Region:      optional(req.Region),
		District:    optional(req.District),
		Subdistrict: optional(req.Subdistrict),
		Community:   optional(req.Community),
	}
	if err := s.validateLocation(ctx, a.Location()); err != nil {
		return nil, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	a.PasswordHash = hash
	if err := s.repo.Create(ctx, a); err != nil {
		if db.IsUniqueViolation(err, "accounts_username_key") {
			return nil, apierr.Wrap(apierr.KindConflict, "username already taken", err)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Account, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

// Update replaces the editable fields of an account. Changing the user type
// or deactivating the account revokes its outstanding tokens.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Account, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Active != nil && !*req.Active && auth.AccountIDFromContext(ctx) == id.String() {
		return nil, apierr.Invalid("you cannot deactivate your own account")
	}

	revoke := a.UserType != req.UserType
	a.FullName = req.FullName
	a.Email = optional(req.Email)
	a.Phone = optional(req.Phone)
	a.UserType = req.UserType
	if req.Active != nil {
		revoke = revoke || (a.Active && !*req.Active)
		a.Active = *req.Active
	}
	a.Region = optional(req.Region)
	a.District = optional(req.District)
	a.Subdistrict = optional(req.Subdistrict)
	a.Community = optional(req.Community)
	if err := s.validateLocation(ctx, a.Location()); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if revoke {
		s.revoker.RevokeAccount(a.ID.String())
	}
	return a, nil
}

// ChangePassword sets a new password. Callers changing their own password
// must present the current one; account managers resetting someone else's
// do not. Every token issued before the change stops working.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, req *PasswordChange) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if auth.AccountIDFromContext(ctx) == id.String() {
		if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.CurrentPassword)) != nil {
			return apierr.Invalid("current password is incorrect")
		}
	}
	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.revoker.RevokeAccount(id.String())
	return nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Username = normalizeUsername(req.Username)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, fmt.Errorf("load account: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.logger.Info().Str("username", req.Username).Msg("login failed: unknown username")
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Info().Str("account_id", a.ID.String()).Msg("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}
	if !a.Active {
		return nil, apierr.Forbidden("account is disabled")
	}

	issued, err := s.tokens.Issue(a.ID.String(), a.Username, a.UserType)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.repo.RecordLogin(ctx, a.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("account_id", a.ID.String()).Msg("record login")
	} else {
		a.LastLoginAt = &now
	}
	s.logger.Info().Str("account_id", a.ID.String()).Str("user_type", a.UserType).Msg("login")
	return &LoginResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Account: a}, nil
}

// Logout revokes the token the caller authenticated with.
func (s *Service) Logout(ctx context.Context) error {
	id := auth.IdentityFromContext(ctx)
	if id == nil {
		return apierr.Unauthorized("not logged in")
	}
	s.revoker.Revoke(id.TokenID, id.ExpiresAt)
	return nil
}

// Me returns the caller's own account.
func (s *Service) Me(ctx context.Context) (*Account, error) {
	accountID, err := uuid.Parse(auth.AccountIDFromContext(ctx))
	if err != nil {
		return nil, apierr.Unauthorized("not logged in")
	}
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apierr.Unauthorized("account no longer exists")
		}
		return nil, err
	}
	if !a.Active {
		return nil, apierr.Forbidden("account is disabled")
	}
	return a, nil
}
