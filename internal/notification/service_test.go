package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/backpackers-backend/internal/email"
	"github.com/Marga-Ghale/backpackers-backend/internal/identity"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/types"
)

type fakeMailer struct {
	configured bool
	err        error
	to         []string
	sent       []email.JoinDecisionEmailData
}

func (m *fakeMailer) IsConfigured() bool { return m.configured }

func (m *fakeMailer) SendJoinDecision(to string, data email.JoinDecisionEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.sent = append(m.sent, data)
	return nil
}

type setup struct {
	ctx   context.Context
	repos *repository.Repositories
	svc   *Service
	user  *repository.User
	group *repository.Group
}

func newSetup(t *testing.T) *setup {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewInMemoryRepositories()
	user := &repository.User{Email: "priya@example.com", Name: "Priya"}
	require.NoError(t, repos.UserRepo.Create(ctx, user))

	return &setup{
		ctx:   ctx,
		repos: repos,
		svc:   NewService(repos.NotificationRepo, identity.NewResolver(repos.UserRepo)),
		user:  user,
		group: &repository.Group{ID: "g1", Name: "Hampi Boulders", Destination: "Hampi"},
	}
}

func TestNotifyJoinDecision_StoresUnderInternalID(t *testing.T) {
	s := newSetup(t)

	// Requester stored by email.
	s.svc.NotifyJoinDecision(s.ctx, "Priya@Example.com", s.group, true)

	notes, err := s.repos.NotificationRepo.FindByUserID(s.ctx, s.user.ID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	n := notes[0]
	assert.Equal(t, types.NotificationJoinApproved, n.Type)
	assert.Equal(t, "Hampi Boulders", n.Sender)
	assert.Equal(t, "Your request to join Hampi Boulders was approved", n.Message)
	assert.False(t, n.Seen)
	assert.Equal(t, "g1", n.Data["groupId"])
	assert.Equal(t, "view_group", n.Data["action"])
}

func TestNotifyJoinDecision_Rejected(t *testing.T) {
	s := newSetup(t)
	s.svc.NotifyJoinDecision(s.ctx, s.user.ID, s.group, false)

	notes, err := s.repos.NotificationRepo.FindByUserID(s.ctx, s.user.ID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, types.NotificationJoinRejected, notes[0].Type)
	assert.Contains(t, notes[0].Message, "declined")
}

func TestNotifyJoinDecision_UnknownRequesterIsSkipped(t *testing.T) {
	s := newSetup(t)
	mailer := &fakeMailer{configured: true}
	s.svc.SetMailer(mailer, "http://localhost:3000")

	s.svc.NotifyJoinDecision(s.ctx, "ghost@example.com", s.group, true)

	total, _, err := s.repos.NotificationRepo.CountByUserID(s.ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, mailer.sent)
}

func TestNotifyJoinDecision_SendsEmail(t *testing.T) {
	s := newSetup(t)
	mailer := &fakeMailer{configured: true}
	s.svc.SetMailer(mailer, "https://backpackers.app/")

	s.svc.NotifyJoinDecision(s.ctx, s.user.ID, s.group, true)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"priya@example.com"}, mailer.to)
	assert.Equal(t, email.JoinDecisionEmailData{
		Name:        "Priya",
		GroupName:   "Hampi Boulders",
		Destination: "Hampi",
		Approved:    true,
		GroupURL:    "https://backpackers.app/backpackers/g1",
	}, mailer.sent[0])
}

func TestNotifyJoinDecision_MailProblemsAreSwallowed(t *testing.T) {
	s := newSetup(t)

	unconfigured := &fakeMailer{}
	s.svc.SetMailer(unconfigured, "")
	s.svc.NotifyJoinDecision(s.ctx, s.user.ID, s.group, false)
	assert.Empty(t, unconfigured.sent)

	failing := &fakeMailer{configured: true, err: errors.New("smtp timeout")}
	s.svc.SetMailer(failing, "")
	assert.NotPanics(t, func() {
		s.svc.NotifyJoinDecision(s.ctx, s.user.ID, s.group, true)
	})

	total, _, err := s.repos.NotificationRepo.CountByUserID(s.ctx, s.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total, "in-app notifications are stored regardless of email")
}
