// Package services – ExtrasService
//
// ExtrasService covers the dashboard add-ons around orders: staff comments,
// image references and per-user saved filters. Images are stored elsewhere;
// only their URL and metadata are kept here.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
)

// ImageInput references an uploaded image.
type ImageInput struct {
	URL       string
	Filename  string
	SizeBytes *int64
	MimeType  *string
}

// FilterInput creates or updates a saved filter. On update nil fields are
// left unchanged.
type FilterInput struct {
	Name        *string
	FiltersJSON *string
	IsDefault   *bool
}

// ExtrasService manages comments, images and saved filters.
type ExtrasService struct {
	DB     *gorm.DB
	Events EventPublisher
}

// NewExtrasService wires an ExtrasService.
func NewExtrasService(db *gorm.DB, events EventPublisher) *ExtrasService {
	return &ExtrasService{DB: db, Events: events}
}

func (s *ExtrasService) requireOrder(ctx context.Context, id uint) error {
	if _, err := repo.GetOrder(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

// AddComment attaches a comment by userID to an order and announces it.
func (s *ExtrasService) AddComment(ctx context.Context, orderID, userID uint, body string) (*domain.OrderComment, error) {
	tr := otel.Tracer("services/ExtrasService")
	ctx, span := tr.Start(ctx, "AddComment", trace.WithAttributes(attribute.Int64("pedido.id", int64(orderID))))
	defer span.End()

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrValidation
	}
	if err := s.requireOrder(ctx, orderID); err != nil {
		return nil, err
	}
	c := &domain.OrderComment{OrderID: orderID, UserID: userID, Body: body}
	if err := repo.CreateComment(ctx, s.DB, c); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, domain.Event{
		Type:       domain.EventCommentCreated,
		OrderID:    orderID,
		Comment:    c,
		OccurredAt: c.CreatedAt,
	})
	return c, nil
}

// Comments lists an order's comments, oldest first.
func (s *ExtrasService) Comments(ctx context.Context, orderID uint) ([]domain.OrderComment, error) {
	return repo.ListComments(ctx, s.DB, orderID)
}

// AddImage stores an image reference for an order.
func (s *ExtrasService) AddImage(ctx context.Context, orderID uint, in ImageInput) (*domain.OrderImage, error) {
	if strings.TrimSpace(in.URL) == "" || strings.TrimSpace(in.Filename) == "" {
		return nil, ErrValidation
	}
	if err := s.requireOrder(ctx, orderID); err != nil {
		return nil, err
	}
	img := &domain.OrderImage{
		OrderID:   orderID,
		URL:       strings.TrimSpace(in.URL),
		Filename:  strings.TrimSpace(in.Filename),
		SizeBytes: in.SizeBytes,
		MimeType:  in.MimeType,
	}
	if err := repo.CreateImage(ctx, s.DB, img); err != nil {
		return nil, err
	}
	return img, nil
}

// Images lists an order's images.
func (s *ExtrasService) Images(ctx context.Context, orderID uint) ([]domain.OrderImage, error) {
	return repo.ListImages(ctx, s.DB, orderID)
}

// DeleteImage removes one image reference.
func (s *ExtrasService) DeleteImage(ctx context.Context, id uint) error {
	if err := repo.DeleteImage(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrImageNotFound
		}
		return err
	}
	return nil
}

// CreateFilter saves a named filter for userID. Name and a JSON object are
// required; a default filter clears the previous default.
func (s *ExtrasService) CreateFilter(ctx context.Context, userID uint, in FilterInput) (*domain.SavedFilter, error) {
	tr := otel.Tracer("services/ExtrasService")
	ctx, span := tr.Start(ctx, "CreateFilter")
	defer span.End()

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.FiltersJSON == nil {
		return nil, ErrValidation
	}
	if !validFilterJSON(*in.FiltersJSON) {
		return nil, ErrValidation
	}
	f := &domain.SavedFilter{
		UserID:      userID,
		Name:        strings.TrimSpace(*in.Name),
		FiltersJSON: *in.FiltersJSON,
		IsDefault:   in.IsDefault != nil && *in.IsDefault,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateFilter(ctx, tx, f); err != nil {
			return err
		}
		if f.IsDefault {
			return repo.ClearDefaultFilters(ctx, tx, userID, f.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Filters lists userID's filters, default first.
func (s *ExtrasService) Filters(ctx context.Context, userID uint) ([]domain.SavedFilter, error) {
	return repo.ListFilters(ctx, s.DB, userID)
}

// UpdateFilter changes a filter owned by userID.
func (s *ExtrasService) UpdateFilter(ctx context.Context, userID, id uint, in FilterInput) (*domain.SavedFilter, error) {
	tr := otel.Tracer("services/ExtrasService")
	ctx, span := tr.Start(ctx, "UpdateFilter")
	defer span.End()

	if in.FiltersJSON != nil && !validFilterJSON(*in.FiltersJSON) {
		return nil, ErrValidation
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrValidation
	}
	var out *domain.SavedFilter
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f, err := repo.GetFilter(ctx, tx, id, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrFilterNotFound
			}
			return err
		}
		if in.Name != nil {
			f.Name = strings.TrimSpace(*in.Name)
		}
		if in.FiltersJSON != nil {
			f.FiltersJSON = *in.FiltersJSON
		}
		if in.IsDefault != nil {
			f.IsDefault = *in.IsDefault
		}
		if err := repo.SaveFilter(ctx, tx, f); err != nil {
			return err
		}
		if f.IsDefault {
			if err := repo.ClearDefaultFilters(ctx, tx, userID, f.ID); err != nil {
				return err
			}
		}
		out = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFilter removes a filter owned by userID.
func (s *ExtrasService) DeleteFilter(ctx context.Context, userID, id uint) error {
	if err := repo.DeleteFilter(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrFilterNotFound
		}
		return err
	}
	return nil
}

// validFilterJSON accepts a JSON object only.
func validFilterJSON(s string) bool {
	var m map[string]any
	return json.Unmarshal([]byte(s), &m) == nil
}
