package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskRunning    = errors.New("task is already running")
	ErrDuplicateTask  = errors.New("task already registered")
	ErrInvalidTrigger = errors.New("task needs either an interval or a cron expression")
)

// TaskFunc is a unit of background maintenance.
type TaskFunc func(ctx context.Context) error

// TaskConfig describes one background task. Exactly one of Interval and Cron
// must be set.
type TaskConfig struct {
	ID          string
	Name        string
	Description string
	Interval    time.Duration
	Cron        string
	Func        TaskFunc
	RunOnStart  bool
}

func (c TaskConfig) schedule() string {
	if c.Interval > 0 {
		return "every " + c.Interval.String()
	}
	return c.Cron
}

// TaskInfo is the API view of a task.
type TaskInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Schedule    string     `json:"schedule"`
	LastRun     *time.Time `json:"lastRun,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
	NextRun     *time.Time `json:"nextRun,omitempty"`
	Running     bool       `json:"running"`
}

type taskEntry struct {
	config    TaskConfig
	job       gocron.Job
	lastRun   *time.Time
	lastError string
	running   bool
}

// Scheduler runs maintenance tasks in the background. Tasks receive a context
// that is cancelled when the scheduler stops.
type Scheduler struct {
	gocron gocron.Scheduler
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	tasks   map[string]*taskEntry
	started bool
}

// New creates a stopped scheduler.
func New(logger zerolog.Logger) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gocron: gs,
		logger: logger.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(map[string]*taskEntry),
	}, nil
}

// RegisterTask adds a task. It may be called before or after Start.
func (s *Scheduler) RegisterTask(config TaskConfig) error {
	var definition gocron.JobDefinition
	switch {
	case config.Interval > 0 && config.Cron == "":
		definition = gocron.DurationJob(config.Interval)
	case config.Interval <= 0 && config.Cron != "":
		definition = gocron.CronJob(config.Cron, false)
	default:
		return fmt.Errorf("%s: %w", config.ID, ErrInvalidTrigger)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[config.ID]; exists {
		return fmt.Errorf("%s: %w", config.ID, ErrDuplicateTask)
	}

	id := config.ID
	job, err := s.gocron.NewJob(
		definition,
		gocron.NewTask(func() { s.execute(id) }),
		gocron.WithName(config.Name),
		gocron.WithTags(config.ID),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job for task %q: %w", config.ID, err)
	}

	s.tasks[config.ID] = &taskEntry{config: config, job: job}

	s.logger.Debug().
		Str("id", config.ID).
		Str("schedule", config.schedule()).
		Bool("runOnStart", config.RunOnStart).
		Msg("registered task")

	return nil
}

// execute runs a task unless it is already running.
func (s *Scheduler) execute(id string) {
	s.mu.Lock()
	entry, exists := s.tasks[id]
	if !exists || entry.running {
		s.mu.Unlock()
		return
	}
	entry.running = true
	s.mu.Unlock()

	started := time.Now()
	err := s.runTask(entry.config)
	elapsed := time.Since(started)

	s.mu.Lock()
	entry.running = false
	entry.lastRun = &started
	entry.lastError = ""
	if err != nil {
		entry.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("id", id).Dur("duration", elapsed).Msg("task failed")
		return
	}
	s.logger.Debug().Str("id", id).Dur("duration", elapsed).Msg("task completed")
}

func (s *Scheduler) runTask(config TaskConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return config.Func(s.ctx)
}

// Start begins scheduling and kicks off RunOnStart tasks.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info().Int("tasks", s.count()).Msg("starting scheduler")
	s.gocron.Start()

	s.mu.RLock()
	var startup []string
	for id, entry := range s.tasks {
		if entry.config.RunOnStart {
			startup = append(startup, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range startup {
		s.spawn(id)
	}
}

// Stop cancels running tasks and waits for them to return. A stopped
// scheduler cannot be restarted.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	s.cancel()
	var err error
	if started {
		s.logger.Info().Msg("stopping scheduler")
		err = s.gocron.Shutdown()
	}
	s.wg.Wait()
	return err
}

// RunNow triggers a task outside its schedule.
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	entry, exists := s.tasks[id]
	running := exists && entry.running
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	if running {
		return fmt.Errorf("%s: %w", id, ErrTaskRunning)
	}

	s.spawn(id)
	return nil
}

func (s *Scheduler) spawn(id string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(id)
	}()
}

// ListTasks returns every task sorted by ID.
func (s *Scheduler) ListTasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]TaskInfo, 0, len(s.tasks))
	for _, entry := range s.tasks {
		tasks = append(tasks, entry.info())
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// GetTask returns one task.
func (s *Scheduler) GetTask(id string) (TaskInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.tasks[id]
	if !exists {
		return TaskInfo{}, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	return entry.info(), nil
}

func (s *Scheduler) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (e *taskEntry) info() TaskInfo {
	info := TaskInfo{
		ID:          e.config.ID,
		Name:        e.config.Name,
		Description: e.config.Description,
		Schedule:    e.config.schedule(),
		LastRun:     e.lastRun,
		LastError:   e.lastError,
		Running:     e.running,
	}
	if next, err := e.job.NextRun(); err == nil && !next.IsZero() {
		info.NextRun = &next
	}
	return info
}
