// Package reminder runs the periodic scan that fires due reminders.
package reminder

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/pawcal-app/pawcal/internal/db"
	"github.com/pawcal-app/pawcal/internal/notify"
)

const (
	DefaultTick      = time.Minute
	DefaultLookahead = time.Hour
)

// Scanner checks upcoming instances on a fixed tick and emits one reminder
// per instance when its lead-time threshold is crossed.
//
// The fire window is exactly one tick wide (target <= now && target >
// now-tick), so tick period and window move together: changing one without
// the other either drops or double-fires reminders.
type Scanner struct {
	store     db.Store
	notifier  notify.Notifier
	tick      time.Duration
	lookahead time.Duration

	now  func() time.Time
	cron *cron.Cron
}

func New(store db.Store, notifier notify.Notifier, tick, lookahead time.Duration) *Scanner {
	if tick <= 0 {
		tick = DefaultTick
	}
	// the lookahead must cover the largest supported lead time, otherwise
	// reminders far ahead of their occurrence are silently missed
	if lookahead < tick {
		lookahead = DefaultLookahead
	}
	return &Scanner{
		store:     store,
		notifier:  notifier,
		tick:      tick,
		lookahead: lookahead,
		now:       time.Now,
	}
}

// Start schedules RunTick on the scanner's cadence. SkipIfStillRunning
// guarantees ticks never overlap: an overrunning tick causes the next one
// to be skipped, never run concurrently.
func (s *Scanner) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.tick), s.RunTick); err != nil {
		return fmt.Errorf("failed to schedule reminder scan: %w", err)
	}
	c.Start()
	s.cron = c
	log.Info().Dur("tick", s.tick).Dur("lookahead", s.lookahead).Msg("reminder scanner started")
	return nil
}

func (s *Scanner) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunTick performs one scan pass. A store read failure aborts the whole
// tick (the next tick is a fresh attempt); a delivery failure is logged
// per-instance and never interrupts the rest of the pass.
func (s *Scanner) RunTick() {
	now := s.now()

	due, err := s.store.ListInstancesDueBetween(now, now.Add(s.lookahead))
	if err != nil {
		log.Error().Err(err).Msg("reminder scan aborted: could not read instances")
		return
	}

	for _, instance := range due {
		if instance.RemindBeforeMinutes == nil || *instance.RemindBeforeMinutes <= 0 {
			continue
		}

		lead := time.Duration(*instance.RemindBeforeMinutes) * time.Minute
		target := instance.OccurrenceTime.Add(-lead)
		if target.After(now) || !target.After(now.Add(-s.tick)) {
			continue
		}

		message := fmt.Sprintf("🔔 %s starts in %d minutes (%s)",
			instance.Title, *instance.RemindBeforeMinutes,
			instance.OccurrenceTime.Format("2006-01-02 15:04"))

		sendErr := s.notifier.SendPush(instance.OwnerID, instance.Title, message)
		if sendErr != nil {
			log.Error().Err(sendErr).
				Int("instance_id", instance.InstanceID).
				Msg("reminder push failed")
		} else {
			log.Info().
				Int("instance_id", instance.InstanceID).
				Time("occurrence", instance.OccurrenceTime).
				Msg("reminder sent")
		}

		if err := s.store.CreateReminderLog(instance.InstanceID, now, message, sendErr == nil); err != nil {
			log.Error().Err(err).
				Int("instance_id", instance.InstanceID).
				Msg("failed to record reminder log")
		}
	}
}
