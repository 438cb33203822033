/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/mikeb26/swisstd/internal"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultRefreshTimeout bounds one scheduled refresh.
const DefaultRefreshTimeout = 10 * time.Minute

// Scheduler refreshes an event's rating catalog on a cron schedule.
type Scheduler struct {
	// AfterRefresh, when set, is called after every scheduled refresh with
	// the number of players updated.
	AfterRefresh func(updated int, err error)

	cron    *cron.Cron
	ev      *Event
	timeout time.Duration
	log     *logrus.Entry
}

// NewScheduler accepts standard five-field cron specs and descriptors such
// as @daily or @every 6h.
func NewScheduler(ev *Event, schedule string, timeout time.Duration) (*Scheduler, error) {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	log := internal.Logger("event")
	s := &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.VerbosePrintfLogger(log))),
		ev:      ev,
		timeout: timeout,
		log:     log,
	}
	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return nil, fmt.Errorf("event.NewScheduler: schedule %q: %w", schedule, err)
	}

	return s, nil
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.ev.RefreshRatings(ctx)
	if err != nil {
		s.log.Warnf("event.Scheduler: refresh failed: %v", err)
	} else {
		s.log.Infof("event.Scheduler: refresh updated %d players", n)
	}
	if s.AfterRefresh != nil {
		s.AfterRefresh(n, err)
	}
}

// Start runs the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule; the returned context is done once a running
// refresh has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next returns the time of the next scheduled refresh.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
