// Package services – AuthService
//
// AuthService registers accounts, checks credentials and manages the pair of
// tokens handed to dashboard clients: a short-lived signed access token and
// an opaque refresh token whose SHA-256 hash is stored server side.
//
// With rotation enabled a refresh revokes the presented token and stores its
// replacement in one transaction. Revocation is conditional on the row still
// being live, so two concurrent refreshes of the same token cannot both win.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pedidos-backend/internal/auth"
	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

// TokenPair is returned by every successful sign-in or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
}

// Session is a token pair plus the account it belongs to.
type Session struct {
	TokenPair
	User *domain.User `json:"user"`
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Email    string
	Password string
	FullName *string
}

// AuthService implements registration, login and token lifecycle.
type AuthService struct {
	DB            *gorm.DB
	Issuer        *auth.Issuer
	RefreshTTL    time.Duration
	RotateRefresh bool

	now func() time.Time
}

// NewAuthService wires an AuthService.
func NewAuthService(db *gorm.DB, issuer *auth.Issuer, refreshTTL time.Duration, rotate bool) *AuthService {
	return &AuthService{
		DB:            db,
		Issuer:        issuer,
		RefreshTTL:    refreshTTL,
		RotateRefresh: rotate,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an active account with role user and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") || in.Password == "" {
		return nil, ErrValidation
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, ErrValidation
	}
	u := &domain.User{
		Email:          email,
		HashedPassword: hash,
		FullName:       in.FullName,
		Role:           domain.RoleUser,
		IsActive:       true,
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.signIn(ctx, s.DB, u)
}

// Login checks email and password. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return s.signIn(ctx, s.DB, u)
}

// Refresh exchanges a live refresh token for a new access token. With
// rotation the old refresh token stops working and a new one is returned;
// without it the same refresh token is handed back.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Refresh", trace.WithAttributes(attribute.Bool("rotate", s.RotateRefresh)))
	defer span.End()

	if strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidRefreshToken
	}
	var out *Session
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rt, err := repo.FindRefresh(ctx, tx, auth.HashRefresh(raw))
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if rt.Revoked || !rt.ExpiresAt.After(s.now()) {
			return ErrInvalidRefreshToken
		}
		u, err := repo.GetUser(ctx, tx, rt.UserID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if !u.IsActive {
			return ErrInactiveUser
		}

		if !s.RotateRefresh {
			at, err := s.Issuer.Issue(u.ID, u.Email, string(u.Role))
			if err != nil {
				return err
			}
			out = &Session{TokenPair: s.pair(at, raw), User: u}
			return nil
		}

		ok, err := repo.RevokeRefresh(ctx, tx, rt.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidRefreshToken
		}
		out, err = s.signIn(ctx, tx, u)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// Logout revokes one refresh token. Unknown tokens are ignored so the call
// is idempotent.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	rt, err := repo.FindRefresh(ctx, s.DB, auth.HashRefresh(raw))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	_, err = repo.RevokeRefresh(ctx, s.DB, rt.ID)
	return err
}

// LogoutAll revokes every refresh token of userID and reports how many were
// live.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	return repo.RevokeAllForUser(ctx, s.DB, userID)
}

// SweepExpired deletes refresh tokens past their expiry.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "SweepExpired")
	defer span.End()

	return repo.DeleteExpiredRefresh(ctx, s.DB, s.now())
}

// Authenticate resolves an access token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.Issuer.Parse(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

func (s *AuthService) signIn(ctx context.Context, db *gorm.DB, u *domain.User) (*Session, error) {
	at, err := s.Issuer.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	raw, err := auth.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if _, err := repo.StoreRefresh(ctx, db, u.ID, auth.HashRefresh(raw), s.now().Add(s.RefreshTTL)); err != nil {
		return nil, err
	}
	return &Session{TokenPair: s.pair(at, raw), User: u}, nil
}

func (s *AuthService) pair(at auth.AccessToken, refresh string) TokenPair {
	return TokenPair{
		AccessToken:  at.Token,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.Issuer.TTL().Seconds()),
		ExpiresAt:    at.ExpiresAt,
	}
}
