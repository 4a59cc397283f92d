// Package services – UserService
//
// UserService exposes profile management for the signed-in user and the
// admin-only account operations. Authorization is enforced by the HTTP
// layer; the service only checks ownership rules that depend on data.
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
	"github.com/tbourn/pedidos-backend/internal/utils"
)

// UpdateMeInput is a self-service profile change; nil leaves a field as is.
type UpdateMeInput struct {
	Email    *string
	FullName *string
}

// AdminUpdateInput is an admin change to any account.
type AdminUpdateInput struct {
	FullName   *string
	Role       *string
	IsActive   *bool
	TelegramID *int64
}

// UserService manages accounts.
type UserService struct {
	DB *gorm.DB
}

// NewUserService wires a UserService.
func NewUserService(db *gorm.DB) *UserService { return &UserService{DB: db} }

// Me reloads the account of userID.
func (s *UserService) Me(ctx context.Context, userID uint) (*domain.User, error) {
	return s.Get(ctx, userID)
}

// UpdateMe changes the caller's email or full name. A taken email yields
// ErrEmailTaken.
func (s *UserService) UpdateMe(ctx context.Context, userID uint, in UpdateMeInput) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "UpdateMe", trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		if e == "" || !strings.Contains(e, "@") {
			return nil, ErrValidation
		}
		fields["email"] = e
	}
	if err := s.update(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "ChangePassword")
	defer span.End()

	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.HashedPassword, oldPassword) {
		return ErrWrongPassword
	}
	if newPassword == "" {
		return ErrValidation
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return ErrValidation
	}
	return s.update(ctx, userID, map[string]any{"hashed_password": hash})
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns a page of accounts ordered by id.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]domain.User, error) {
	limit = utils.ClampLimit(limit, defaultPageLimit, maxPageLimit)
	return repo.ListUsers(ctx, s.DB, utils.ClampOffset(offset), limit)
}

// AdminUpdate changes role, activation, name or chat link of an account.
func (s *UserService) AdminUpdate(ctx context.Context, id uint, in AdminUpdateInput) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "AdminUpdate", trace.WithAttributes(attribute.Int64("user.id", int64(id))))
	defer span.End()

	fields := map[string]any{}
	if in.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Role != nil {
		r := domain.Role(strings.ToLower(strings.TrimSpace(*in.Role)))
		if !r.Valid() {
			return nil, ErrValidation
		}
		fields["role"] = r
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if in.TelegramID != nil {
		fields["telegram_id"] = *in.TelegramID
	}
	if err := s.update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes an account. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return ErrForbidden
	}
	if err := repo.DeleteUser(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *UserService) update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := s.Get(ctx, id)
		return err
	}
	fields["updated_at"] = time.Now().UTC()
	err := repo.UpdateUserFields(ctx, s.DB, id, fields)
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return ErrEmailTaken
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	}
	return err
}
