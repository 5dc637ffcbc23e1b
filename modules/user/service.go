package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/taskflow/modules/notify"
	"github.com/dmitrymomot/taskflow/pkg/sanitizer"
	"github.com/dmitrymomot/taskflow/pkg/validator"
)

// Service exposes the profile operations around the Store.
type Service struct {
	store     Store
	publisher notify.Publisher
	log       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService creates a profile service. The publisher is used to confirm
// profile changes over the live channel.
func NewService(store Store, publisher notify.Publisher, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns the user's own record.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.store.ByID(ctx, userID)
}

// List returns every registered user, for the assignee picker.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// UpdateProfile renames the user and confirms the change over the live channel.
func (s *Service) UpdateProfile(ctx context.Context, userID, name string) (*User, error) {
	name = sanitizer.TrimString(name)
	if err := validator.Apply(
		validator.Required("name", name),
		validator.MaxLen("name", name, 100),
	); err != nil {
		return nil, err
	}

	u, err := s.store.UpdateName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.publisher.Publish(userID, notify.Event{
		Name:    notify.EventNotification,
		Message: "Your profile has been updated.",
	})

	return u, nil
}
