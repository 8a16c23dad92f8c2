// Package scheduler keeps the articles cache warm by refreshing all feeds periodically
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsagg/pkg/domain"
)

//go:generate moq -out mocks/refresher.go -pkg mocks -skip-ensure -fmt goimports . Refresher

// Refresher loads articles of every source, bypassing fresh cache entries when forced
type Refresher interface {
	AllArticles(ctx context.Context, forceRefresh bool) ([]domain.Article, error)
}

// Status describes the outcome of the last refresh
type Status struct {
	LastRun  time.Time `json:"last_run"`
	Articles int       `json:"articles"`
	Error    string    `json:"error,omitempty"`
	Interval string    `json:"interval"`
}

// Scheduler runs a forced refresh of all feeds on start and every interval after
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	wg        sync.WaitGroup
	cancel    context.CancelFunc

	mu     sync.Mutex
	status Status
}

// NewScheduler creates a new scheduler instance. Zero interval means Start does nothing.
func NewScheduler(refresher Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{refresher: refresher, interval: interval}
}

// Start begins the background refresh worker
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		lgr.Printf("[INFO] background refresh disabled")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.refreshWorker(ctx)

	lgr.Printf("[INFO] scheduler started with refresh interval %v", s.interval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	lgr.Printf("[INFO] stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// RefreshNow forces a refresh of all feeds and returns its error
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	return s.refresh(ctx)
}

// Status returns the outcome of the last refresh
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.status
	res.Interval = s.interval.String()
	return res
}

// refreshWorker refreshes immediately and then on every tick
func (s *Scheduler) refreshWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run immediately on start
	if err := s.refresh(ctx); err != nil {
		lgr.Printf("[WARN] refresh failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.refresh(ctx); err != nil {
				lgr.Printf("[WARN] refresh failed: %v", err)
			}
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) error {
	start := time.Now()
	articles, err := s.refresher.AllArticles(ctx, true)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastRun = start
	if err != nil {
		s.status.Error = err.Error()
		return err
	}
	s.status.Error = ""
	s.status.Articles = len(articles)
	lgr.Printf("[DEBUG] refreshed %d articles in %v", len(articles), time.Since(start))
	return nil
}
