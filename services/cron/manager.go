package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/services"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron          *cron.Cron
	db            *gorm.DB
	refreshTokens *services.RefreshTokenService
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, refreshTokens *services.RefreshTokenService) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:          c,
		db:            db,
		refreshTokens: refreshTokens,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every minute: dispatch reminders for events starting soon
	_, err := m.cron.AddFunc("0 * * * * *", func() {
		m.DispatchEventReminders()
	})
	if err != nil {
		return err
	}

	// Every hour: sweep dead refresh records past the retention window
	_, err = m.cron.AddFunc("0 0 * * * *", func() {
		m.PurgeDeadRefreshTokens()
	})
	if err != nil {
		return err
	}

	return nil
}
