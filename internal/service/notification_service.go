package service

import (
	"context"
	"errors"

	"github.com/Marga-Ghale/backpackers-backend/internal/identity"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
)

// ============================================
// Notification Service (for handlers)
// ============================================

type NotificationService interface {
	List(ctx context.Context, callerID string, unseenOnly bool) ([]*repository.Notification, error)
	Count(ctx context.Context, callerID string) (total int, unseen int, err error)
	MarkAsSeen(ctx context.Context, id, callerID string) error
	MarkAllAsSeen(ctx context.Context, callerID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	resolver         *identity.Resolver
}

func NewNotificationService(notificationRepo repository.NotificationRepository, resolver *identity.Resolver) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, resolver: resolver}
}

// owner maps the caller to the user id notifications are stored under.
func (s *notificationService) owner(ctx context.Context, callerID string) string {
	if user := s.resolver.Lookup(ctx, callerID); user != nil {
		return user.ID
	}
	return callerID
}

func (s *notificationService) List(ctx context.Context, callerID string, unseenOnly bool) ([]*repository.Notification, error) {
	notifications, err := s.notificationRepo.FindByUserID(ctx, s.owner(ctx, callerID), unseenOnly)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*repository.Notification{}
	}
	return notifications, nil
}

func (s *notificationService) Count(ctx context.Context, callerID string) (total int, unseen int, err error) {
	return s.notificationRepo.CountByUserID(ctx, s.owner(ctx, callerID))
}

func (s *notificationService) MarkAsSeen(ctx context.Context, id, callerID string) error {
	err := s.notificationRepo.MarkAsSeen(ctx, id, s.owner(ctx, callerID))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *notificationService) MarkAllAsSeen(ctx context.Context, callerID string) error {
	return s.notificationRepo.MarkAllAsSeen(ctx, s.owner(ctx, callerID))
}
