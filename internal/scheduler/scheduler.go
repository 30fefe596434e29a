package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"StockBoard/internal/model"
	"StockBoard/internal/notifier"

	"github.com/robfig/cron/v3"
)

// ErrBusy is returned by RunNow while another run is in progress.
var ErrBusy = errors.New("a run is already in progress")

// Job is one publish pass, normally a *pipeline.Runner.
type Job interface {
	Run(ctx context.Context) (*model.RunRecord, error)
}

// Scheduler triggers runs from cron and from chat commands, one at a time.
type Scheduler struct {
	Cron     *cron.Cron
	Job      Job
	Notifier *notifier.TelegramNotifier
	Ctx      context.Context

	mu      sync.Mutex
	running bool
	last    *model.RunRecord
	lastErr error
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, job Job, tn *notifier.TelegramNotifier) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Job:      job,
		Notifier: tn,
		Ctx:      ctx,
	}
}

// Register adds the publish run on the given six-field cron spec.
func (s *Scheduler) Register(runCron string) error {
	if _, err := s.Cron.AddFunc(runCron, s.scheduledRun); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a run immediately and reports it. It returns ErrBusy
// instead of starting a second concurrent run.
func (s *Scheduler) RunNow() (*model.RunRecord, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.running = true
	s.mu.Unlock()

	rec, err := s.Job.Run(s.Ctx)

	s.mu.Lock()
	s.running = false
	if err == nil {
		s.last = rec
	}
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		log.Printf("[ERROR] run failed: %v", err)
		s.trySend(notifier.FormatRunFailure(err))
		return nil, err
	}
	s.trySend(notifier.FormatRunSummary(&rec.Summary, rec.Gainers, rec.Losers))
	return rec, nil
}

func (s *Scheduler) scheduledRun() {
	log.Println("[INFO] running scheduled publish")
	if _, err := s.RunNow(); errors.Is(err, ErrBusy) {
		log.Println("[WARN] skipping scheduled run: previous run still in progress")
	}
}

// LastRun returns the most recent successful run and the latest run error, if any.
func (s *Scheduler) LastRun() (*model.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastErr
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		go func() {
			if _, err := s.RunNow(); errors.Is(err, ErrBusy) {
				s.trySend("⏳ " + ErrBusy.Error())
			}
		}()
		return "🚀 Run started"
	case "/status":
		last, err := s.LastRun()
		if last == nil {
			if err != nil {
				return notifier.FormatRunFailure(err)
			}
			return "No run has completed yet."
		}
		return notifier.FormatRunSummary(&last.Summary, last.Gainers, last.Losers)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
