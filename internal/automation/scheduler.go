package automation

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/gauntletgallery/artlister/internal/database"
)

// Scheduler runs the batch pipeline on a cron expression and sweeps
// expired web sessions daily.
type Scheduler struct {
	pipeline *Pipeline
	sessions *database.SessionStore
	cron     *cron.Cron

	folder string
	opts   RunOptions
}

// NewScheduler creates a scheduler that will process the given folder.
func NewScheduler(pipeline *Pipeline, sessions *database.SessionStore, folder string, opts RunOptions) *Scheduler {
	return &Scheduler{
		pipeline: pipeline,
		sessions: sessions,
		cron:     cron.New(),
		folder:   folder,
		opts:     opts,
	}
}

// Start registers the cron entries and starts the scheduler. An empty
// expression disables scheduled batch runs; session cleanup always
// runs.
func (s *Scheduler) Start(ctx context.Context, cronExpr string) error {
	if cronExpr != "" {
		log.Printf("Scheduling batch runs with cron: %s", cronExpr)
		_, err := s.cron.AddFunc(cronExpr, func() {
			if _, err := s.pipeline.ProcessFolder(ctx, s.folder, s.opts); err != nil {
				log.Printf("Scheduled run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
	}

	if s.sessions != nil {
		if _, err := s.cron.AddFunc("@daily", func() {
			if err := s.sessions.CleanupExpiredSessions(); err != nil {
				log.Printf("Session cleanup error: %v", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
