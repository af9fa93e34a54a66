/*
scheduler.go - Daily report scheduler

PURPOSE:
  Triggers the daily attendance report at a configured wall-clock time,
  skipping configured weekdays. The weekday filter governs the REPORT
  only; attendance accounting uses the ShiftConfig rest-day calendar,
  which is intentionally a different calendar.

SEMANTICS:
  - At-least-once trigger with a cooldown window: re-triggers within the
    cooldown (default 60s) are deduplicated
  - At-most-one-concurrent-run: if a run overlaps the next tick, the new
    tick is skipped rather than queued
  - A failed run is logged and not retried until the next scheduled tick

USAGE:
  scheduler := NewReportScheduler(store, store, publisher, cfg, clock)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - report/daily.go: The report being generated
*/
package api

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/report"
)

// ReportPublisher delivers a rendered daily report to its consumers
// (chat group, mail, dashboard). Presentation is outside the engine.
type ReportPublisher interface {
	PublishDaily(ctx context.Context, daily report.Daily) error
}

// SchedulerConfig controls when the daily report fires.
type SchedulerConfig struct {
	FireAt       attendance.TimeOfDay
	SkipWeekdays map[time.Weekday]bool
	Cooldown     time.Duration
	TickInterval time.Duration
}

// DefaultSchedulerConfig fires at 18:00 Monday-Friday.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		FireAt:       attendance.NewTimeOfDay(18, 0),
		SkipWeekdays: map[time.Weekday]bool{time.Saturday: true, time.Sunday: true},
		Cooldown:     60 * time.Second,
		TickInterval: 15 * time.Second,
	}
}

// ReportScheduler runs the daily report at a fixed wall-clock time.
type ReportScheduler struct {
	Directory attendance.EmployeeDirectory
	Events    attendance.EventStore
	Publisher ReportPublisher
	Config    SchedulerConfig
	Clock     attendance.Clock

	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running atomic.Bool

	lastFired time.Time
}

func NewReportScheduler(directory attendance.EmployeeDirectory, events attendance.EventStore, publisher ReportPublisher, cfg SchedulerConfig, clock attendance.Clock) *ReportScheduler {
	return &ReportScheduler{
		Directory: directory,
		Events:    events,
		Publisher: publisher,
		Config:    cfg,
		Clock:     clock,
		stop:      make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *ReportScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.Config.TickInterval)
	s.wg.Add(1)
	go s.run()

	log.Info().Str("fire_at", s.Config.FireAt.String()).Msg("report scheduler started")
}

// Stop stops the scheduler and waits for an in-flight run.
func (s *ReportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Info().Msg("report scheduler stopped")
	}
}

func (s *ReportScheduler) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ticker.C:
			s.tick()
		case <-s.stop:
			return
		}
	}
}

func (s *ReportScheduler) tick() {
	now := s.Clock.Now()

	if !s.ShouldFire(now) {
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		// Previous run still in flight; skip rather than queue.
		log.Warn().Msg("report run overlaps previous, skipping tick")
		return
	}
	s.lastFired = now

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		if err := s.fire(context.Background(), attendance.DateOf(now)); err != nil {
			// No retry until the next scheduled tick.
			log.Error().Err(err).Msg("daily report run failed")
		}
	}()
}

// ShouldFire reports whether a tick observed at now should trigger a run.
// Exported for tests; does not mutate state.
func (s *ReportScheduler) ShouldFire(now time.Time) bool {
	if s.Config.SkipWeekdays[now.Weekday()] {
		return false
	}
	if attendance.TimeOfDayOf(now) != s.Config.FireAt {
		return false
	}
	// Cooldown deduplicates re-triggers within the same minute.
	if !s.lastFired.IsZero() && now.Sub(s.lastFired) < s.Config.Cooldown {
		return false
	}
	return true
}

func (s *ReportScheduler) fire(ctx context.Context, day attendance.Date) error {
	daily, err := report.BuildDaily(ctx, s.Directory, s.Events, day)
	if err != nil {
		return err
	}

	log.Info().Str("summary", daily.SummaryLine()).Msg("daily report generated")
	return s.Publisher.PublishDaily(ctx, daily)
}

// LogPublisher is the default sink: it writes the summary line to the
// process log.
type LogPublisher struct{}

func (LogPublisher) PublishDaily(_ context.Context, daily report.Daily) error {
	log.Info().Str("report", daily.SummaryLine()).Msg("daily report")
	return nil
}
