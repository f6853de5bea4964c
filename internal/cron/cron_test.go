package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
)

type countingRefresher struct {
	calls int
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls++
	return r.err
}

type recordingNotifications struct {
	repository.NotificationRepository
	cutoffs  []time.Time
	seenOnly []bool
}

func (r *recordingNotifications) DeleteOlderThan(_ context.Context, olderThan time.Time, seenOnly bool) (int, error) {
	r.cutoffs = append(r.cutoffs, olderThan)
	r.seenOnly = append(r.seenOnly, seenOnly)
	return 3, nil
}

func TestRunNow_CatalogRefresh(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewScheduler(Config{CatalogRefreshSpec: "@every 1h"}, refresher, nil)

	s.RunNow("catalog_refresh")
	assert.Equal(t, 1, refresher.calls)

	refresher.err = errors.New("db down")
	assert.NotPanics(t, func() { s.RunNow("catalog_refresh") })
	assert.Equal(t, 2, refresher.calls)
}

func TestRunNow_NotificationCleanupKeepsUnseen(t *testing.T) {
	repo := &recordingNotifications{}
	s := NewScheduler(Config{NotificationRetentionDays: 30}, nil, repo)

	before := time.Now()
	s.RunNow("notification_cleanup")

	require.Len(t, repo.cutoffs, 1)
	assert.True(t, repo.seenOnly[0])
	assert.WithinDuration(t, before.AddDate(0, 0, -30), repo.cutoffs[0], time.Minute)
}

func TestRunNow_CleanupDisabledWithoutRetention(t *testing.T) {
	repo := &recordingNotifications{}
	refresher := &countingRefresher{}
	s := NewScheduler(Config{}, refresher, repo)

	s.RunNow("all")

	assert.Empty(t, repo.cutoffs)
	assert.Equal(t, 1, refresher.calls)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(Config{CatalogRefreshSpec: "every so often"}, &countingRefresher{}, nil)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(Config{CatalogRefreshSpec: "*/10 * * * *"}, &countingRefresher{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
