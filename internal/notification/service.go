package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Marga-Ghale/backpackers-backend/internal/email"
	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/socket"
	"github.com/Marga-Ghale/backpackers-backend/internal/types"
)

// UserLookup finds a user by any identifier form, or returns nil.
type UserLookup interface {
	Lookup(ctx context.Context, raw string) *repository.User
}

// Mailer sends join decision emails.
type Mailer interface {
	IsConfigured() bool
	SendJoinDecision(to string, data email.JoinDecisionEmailData) error
}

// Service delivers join decisions to requesters. Every delivery is best
// effort: nothing it does can fail the operation that triggered it.
type Service struct {
	notificationRepo repository.NotificationRepository
	users            UserLookup
	broadcaster      *socket.Broadcaster
	mailer           Mailer
	frontendURL      string
}

func NewService(notificationRepo repository.NotificationRepository, users UserLookup) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		users:            users,
	}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

func (s *Service) SetMailer(m Mailer, frontendURL string) {
	s.mailer = m
	s.frontendURL = strings.TrimRight(frontendURL, "/")
}

// NotifyJoinDecision tells the requester whether they were admitted.
// Failures are logged and swallowed, including panics from collaborators.
func (s *Service) NotifyJoinDecision(ctx context.Context, requesterID string, group *repository.Group, approved bool) {
	log := logger.Component("notification").WithFields(logrus.Fields{
		"requester": requesterID,
		"group":     group.ID,
		"approved":  approved,
	})
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("join decision delivery panicked")
		}
	}()

	user := s.users.Lookup(ctx, requesterID)
	if user == nil {
		log.Warn("requester not resolvable, skipping notification")
		return
	}

	n := buildJoinDecision(user.ID, group, approved)
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		log.WithError(err).Warn("failed to store notification")
		return
	}

	s.push(ctx, user, requesterID, n)
	s.mail(user, group, approved, log)
}

func buildJoinDecision(userID string, group *repository.Group, approved bool) *repository.Notification {
	n := &repository.Notification{
		UserID: userID,
		Sender: group.Name,
		Data: map[string]interface{}{
			"groupId":     group.ID,
			"groupName":   group.Name,
			"destination": group.Destination,
			"action":      "view_group",
		},
	}
	if approved {
		n.Type = types.NotificationJoinApproved
		n.Message = fmt.Sprintf("Your request to join %s was approved", group.Name)
	} else {
		n.Type = types.NotificationJoinRejected
		n.Message = fmt.Sprintf("Your request to join %s was declined", group.Name)
	}
	return n
}

// push sends the notification to every identifier the requester may be
// connected under.
func (s *Service) push(ctx context.Context, user *repository.User, raw string, n *repository.Notification) {
	if s.broadcaster == nil {
		return
	}
	targets := []string{user.ID, user.Email, raw}
	if user.ExternalID != nil {
		targets = append(targets, *user.ExternalID)
	}

	s.broadcaster.SendNotification(targets, map[string]interface{}{
		"id":        n.ID,
		"type":      n.Type,
		"sender":    n.Sender,
		"message":   n.Message,
		"data":      n.Data,
		"seen":      n.Seen,
		"createdAt": n.CreatedAt,
	})

	if total, unseen, err := s.notificationRepo.CountByUserID(ctx, user.ID); err == nil {
		s.broadcaster.SendNotificationCount(targets, total, unseen)
	}
}

func (s *Service) mail(user *repository.User, group *repository.Group, approved bool, log *logrus.Entry) {
	if s.mailer == nil || !s.mailer.IsConfigured() || user.Email == "" {
		return
	}
	name := user.Name
	if name == "" {
		name = user.Email
	}
	err := s.mailer.SendJoinDecision(user.Email, email.JoinDecisionEmailData{
		Name:        name,
		GroupName:   group.Name,
		Destination: group.Destination,
		Approved:    approved,
		GroupURL:    s.frontendURL + "/backpackers/" + group.ID,
	})
	if err != nil {
		log.WithError(err).Warn("failed to send join decision email")
	}
}
