package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
)

var log = logger.Component("cron")

// CatalogRefresher reloads the search catalog.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

type Config struct {
	CatalogRefreshSpec        string
	NotificationRetentionDays int
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron             *cron.Cron
	cfg              Config
	catalog          CatalogRefresher
	notificationRepo repository.NotificationRepository
}

func NewScheduler(cfg Config, catalog CatalogRefresher, notificationRepo repository.NotificationRepository) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		cfg:              cfg,
		catalog:          catalog,
		notificationRepo: notificationRepo,
	}
}

// Start registers the jobs and starts the scheduler. A bad spec fails
// before anything runs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CatalogRefreshSpec, s.refreshCatalog); err != nil {
		return err
	}

	// Sundays at midnight
	if _, err := s.cron.AddFunc("0 0 * * 0", s.cleanupOldNotifications); err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("catalogSpec", s.cfg.CatalogRefreshSpec).Info("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}

func (s *Scheduler) refreshCatalog() {
	if s.catalog == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.catalog.Refresh(ctx); err != nil {
		log.WithError(err).Error("catalog refresh failed")
	}
}

// cleanupOldNotifications deletes seen notifications past retention. Unseen
// ones are kept however old they are.
func (s *Scheduler) cleanupOldNotifications() {
	if s.notificationRepo == nil || s.cfg.NotificationRetentionDays <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.cfg.NotificationRetentionDays)
	deleted, err := s.notificationRepo.DeleteOlderThan(ctx, cutoff, true)
	if err != nil {
		log.WithError(err).Error("notification cleanup failed")
		return
	}
	log.WithField("deleted", deleted).Info("old notifications cleaned up")
}

// RunNow runs a job immediately, for manual triggering.
func (s *Scheduler) RunNow(job string) {
	switch job {
	case "catalog_refresh":
		s.refreshCatalog()
	case "notification_cleanup":
		s.cleanupOldNotifications()
	case "all":
		s.refreshCatalog()
		s.cleanupOldNotifications()
	}
}
