// Package scheduler runs periodic maintenance jobs. The only job today is
// pruning expired session rows from the database.
package scheduler

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// SessionCleanupScheduler deletes expired session rows on a cron schedule.
// The session store validates expiry on every read, so pruning is purely
// about reclaiming space; a missed run never lets a stale session resolve.
type SessionCleanupScheduler struct {
	db       *sql.DB
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewSessionCleanupScheduler creates a scheduler pruning via db on the given
// 5-field cron schedule.
func NewSessionCleanupScheduler(db *sql.DB, schedule string) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		db:       db,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *SessionCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.runCleanup(); err != nil {
			log.Printf("Session cleanup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Session cleanup scheduler started with schedule '%s'", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *SessionCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Session cleanup scheduler stopped")
}

// RunNow triggers a cleanup immediately, outside the schedule.
func (s *SessionCleanupScheduler) RunNow() error {
	return s.runCleanup()
}

func (s *SessionCleanupScheduler) runCleanup() error {
	// The store keeps expiry as a julianday REAL; match its comparison.
	res, err := s.db.Exec("DELETE FROM sessions WHERE expiry < julianday('now')")
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		log.Printf("Session cleanup: removed %d expired sessions", n)
	}
	return nil
}
