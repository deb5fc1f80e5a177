package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	JobCatalogWarm = "catalog-warm"
	JobBrowseEvict = "browse-evict"

	defaultJobTimeout = 5 * time.Minute
)

// JobFunc est une tâche planifiée; ctx est annulé à l'arrêt du scheduler.
type JobFunc func(ctx context.Context) error

// Scheduler exécute les tâches de maintenance (préchauffage du cache,
// éviction des sessions de navigation inactives).
type Scheduler struct {
	logger  zerolog.Logger
	cron    *cron.Cron
	timeout time.Duration

	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	jobs    map[string]JobFunc
	running bool
}

func NewScheduler(logger zerolog.Logger) *Scheduler {
	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		timeout: defaultJobTimeout,
		base:    base,
		cancel:  cancel,
		jobs:    make(map[string]JobFunc),
	}
}

// AddJob enregistre une tâche sous un nom unique. spec suit le format cron
// à six champs (secondes incluses).
func (s *Scheduler) AddJob(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return errors.Errorf("job %s already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.run(s.base, name, fn) }); err != nil {
		return errors.Wrapf(err, "schedule job %s", name)
	}
	s.jobs[name] = fn
	return nil
}

func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobsLocked()
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Strs("jobs", s.jobsLocked()).Msg("scheduler started")
}

// Stop annule les tâches en cours et attend leur fin (ou ctx).
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduler stop timed out")
	}
}

// RunNow exécute une tâche hors planning, de manière synchrone.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	fn, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return errors.Wrapf(ErrNotFound, "job %s", name)
	}
	return s.run(ctx, name, fn)
}

func (s *Scheduler) run(parent context.Context, name string, fn JobFunc) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	ev := s.logger.Info()
	if err != nil {
		ev = s.logger.Error().Err(err)
	}
	ev.Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
	return err
}

func (s *Scheduler) jobsLocked() []string {
	out := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// WarmCatalogJob recharge le cache catalogue.
func WarmCatalogJob(cache *CatalogCache) JobFunc {
	return cache.Warm
}

// EvictBrowseJob ferme les sessions de navigation inactives depuis maxIdle.
func EvictBrowseJob(browse *BrowseService, maxIdle time.Duration) JobFunc {
	return func(ctx context.Context) error {
		browse.EvictIdle(maxIdle)
		return nil
	}
}

// cronLogger branche les traces de robfig/cron sur zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
