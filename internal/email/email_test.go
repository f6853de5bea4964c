package email

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func testConfig() *Config {
	return &Config{Host: "smtp.example.com", Port: 587, From: "noreply@backpackers.app", FromName: "Backpackers"}
}

func TestSendJoinDecision(t *testing.T) {
	for _, tc := range []struct {
		approved bool
		subject  string
	}{
		{true, "Welcome to Hampi Boulders"},
		{false, "Your request to join Hampi Boulders was declined"},
	} {
		dialer := &fakeDialer{}
		svc := NewServiceWithDialer(testConfig(), dialer)

		err := svc.SendJoinDecision("priya@example.com", JoinDecisionEmailData{
			Name:        "Priya",
			GroupName:   "Hampi Boulders",
			Destination: "Hampi",
			Approved:    tc.approved,
			GroupURL:    "http://localhost:3000/backpackers/g1",
		})
		require.NoError(t, err)
		require.Len(t, dialer.sent, 1)

		msg := dialer.sent[0]
		assert.Equal(t, []string{tc.subject}, msg.GetHeader("Subject"))
		assert.Equal(t, []string{"priya@example.com"}, msg.GetHeader("To"))

		var raw bytes.Buffer
		_, err = msg.WriteTo(&raw)
		require.NoError(t, err)
		assert.Contains(t, raw.String(), "Hi Priya,")
	}
}

func TestSend_NotConfiguredIsNoop(t *testing.T) {
	dialer := &fakeDialer{}
	svc := NewServiceWithDialer(&Config{}, dialer)

	assert.False(t, svc.IsConfigured())
	assert.NoError(t, svc.SendJoinDecision("priya@example.com", JoinDecisionEmailData{Name: "Priya"}))
	assert.Empty(t, dialer.sent)

	var nilSvc *Service
	assert.False(t, nilSvc.IsConfigured())
}

func TestSend_DialerErrorIsWrapped(t *testing.T) {
	dialErr := errors.New("connection refused")
	svc := NewServiceWithDialer(testConfig(), &fakeDialer{err: dialErr})

	err := svc.Send(&Email{To: []string{"a@example.com"}, Subject: "hi", Body: "plain"})
	assert.ErrorIs(t, err, dialErr)
}

func TestSendWithTemplate_UnknownTemplate(t *testing.T) {
	svc := NewServiceWithDialer(testConfig(), &fakeDialer{})
	assert.Error(t, svc.SendWithTemplate([]string{"a@example.com"}, "hi", "missing", nil))
}
