package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"codelens/internal/models"
	"codelens/internal/sources"
)

// Updater is the slice of the scraper the scheduler drives.
type Updater interface {
	UpdateFromURLs(ctx context.Context, urls []string) models.UpdateSummary
}

// Status is the queryable state of the auto-update scheduler.
type Status struct {
	Status           string  `json:"status"`
	SchedulerRunning bool    `json:"scheduler_running"`
	NextUpdate       *string `json:"next_update"`
	LastUpdate       *string `json:"last_update"`
	UpdateFrequency  string  `json:"update_frequency"`
}

// Scheduler owns the periodic re-ingestion of the predefined documentation
// sources. It holds its own state (next run, last run result) and is injected
// where needed; there are no package-level globals.
type Scheduler struct {
	cron     *cron.Cron
	entryID  cron.EntryID
	updater  Updater
	sources  sources.Sources
	cronSpec string

	mu          sync.Mutex
	paused      bool
	running     bool
	lastUpdate  time.Time
	lastSummary *models.UpdateSummary
}

func New(updater Updater, srcs sources.Sources, cronSpec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		updater:  updater,
		sources:  srcs,
		cronSpec: cronSpec,
	}

	id, err := s.cron.AddFunc(cronSpec, s.runScheduled)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %v", cronSpec, err)
	}
	s.entryID = id
	return s, nil
}

// Start begins triggering the cron job.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.cron.Start()
	log.Info().Str("cron", s.cronSpec).Msg("Auto-update scheduler started")
}

// Stop halts the cron loop; an in-flight update finishes on its own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.cron.Stop()
	log.Info().Msg("Scheduler stopped")
}

// Pause keeps the cron loop ticking but makes fired jobs no-ops.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	log.Info().Msg("Scheduler paused")
}

// Resume re-enables fired jobs.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	log.Info().Msg("Scheduler resumed")
}

// TriggerNow runs an update in the background without waiting for the
// schedule. Fire-and-forget: completion is observable via Status or logs.
func (s *Scheduler) TriggerNow() {
	go s.runUpdate()
}

func (s *Scheduler) runScheduled() {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		log.Info().Msg("Scheduler paused, skipping auto-update")
		return
	}
	s.runUpdate()
}

func (s *Scheduler) runUpdate() {
	log.Info().Msg("Auto-update started")

	urls := s.sources.AllURLs()
	summary := s.updater.UpdateFromURLs(context.Background(), urls)

	s.mu.Lock()
	s.lastUpdate = time.Now()
	s.lastSummary = &summary
	s.mu.Unlock()

	log.Info().
		Int("total_urls", summary.TotalURLs).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("total_chunks", summary.TotalChunks).
		Msg("Auto-update completed")
}

// Status reports whether the loop is running, the next fire time and the last
// completed update.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Status:           "running",
		SchedulerRunning: s.running,
		UpdateFrequency:  describeCron(s.cronSpec),
	}
	if s.paused {
		st.Status = "paused"
	}
	if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
		v := next.Format(time.RFC3339)
		st.NextUpdate = &v
	}
	if !s.lastUpdate.IsZero() {
		v := s.lastUpdate.Format(time.RFC3339)
		st.LastUpdate = &v
	}
	return st
}

// describeCron renders a simple daily "M H * * *" spec as "daily at H:MM AM".
// Anything more elaborate falls back to the raw spec.
func describeCron(spec string) string {
	fields := strings.Fields(spec)
	if len(fields) != 5 || fields[2] != "*" || fields[3] != "*" || fields[4] != "*" {
		return spec
	}
	minute, err := strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return spec
	}
	hour, err := strconv.Atoi(fields[1])
	if err != nil || hour < 0 || hour > 23 {
		return spec
	}

	period := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		display = hour - 12
		period = "PM"
	}
	return fmt.Sprintf("daily at %d:%02d %s", display, minute, period)
}

// LastSummary returns the result of the most recent update, if any.
func (s *Scheduler) LastSummary() *models.UpdateSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSummary
}
