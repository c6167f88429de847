package activetask

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scout/internal/clock"
	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/observe"
	"github.com/mrz1836/scout/internal/storage"
)

// Store owns the active task. Every mutator persists the full snapshot through
// the adapter and then notifies subscribers. All methods are safe for
// concurrent use; subscribers run after the store's lock is released.
type Store struct {
	mu      sync.Mutex
	task    Task
	tick    uint64
	gen     uint64 // bumped on every local write
	adapter *storage.Adapter
	clock   clock.Clock
	logger  zerolog.Logger
	hub     observe.Hub
}

// New creates a Store, restoring the persisted snapshot when one is available.
// A nil adapter disables persistence; a nil clock uses the system clock.
func New(ctx context.Context, adapter *storage.Adapter, clk clock.Clock, logger zerolog.Logger) *Store {
	if adapter == nil {
		adapter = storage.NewAdapter(nil, constants.ActiveTaskKey, logger)
	}
	if clk == nil {
		clk = clock.RealClock{}
	}

	s := &Store{
		task:    defaultTask(),
		adapter: adapter,
		clock:   clk,
		logger:  logger.With().Str("component", "activetask").Logger(),
	}

	if t, ok := s.load(ctx); ok {
		s.task = t
		s.logger.Debug().Str("topic", t.Topic).Bool("running", t.IsRunning).Msg("restored active task")
	}
	return s
}

func (s *Store) load(ctx context.Context) (Task, bool) {
	var t Task
	if !s.adapter.Load(ctx, &t) {
		return Task{}, false
	}
	return t.clone(), true
}

// mutate applies fn under the lock, persists the result and notifies subscribers.
func (s *Store) mutate(ctx context.Context, fn func(t *Task)) {
	s.mu.Lock()
	fn(&s.task)
	s.gen++
	s.adapter.Save(ctx, s.task.snapshot())
	s.mu.Unlock()

	s.hub.Notify()
}

// StartTask resets the task to a fresh run on topic, entering the planning stage.
func (s *Store) StartTask(ctx context.Context, topic string) {
	now := clock.UnixMilli(s.clock)
	s.mutate(ctx, func(t *Task) {
		*t = defaultTask()
		t.Topic = topic
		t.IsRunning = true
		t.Stage = constants.StagePlanning
		t.StartTime = now
		s.tick = 0
	})
	s.logger.Info().Str("topic", topic).Msg("task started")
}

// SetStage moves the task to stage. The stage being left is recorded as
// completed once, and progress jumps to the stage's mapped percentage if any.
func (s *Store) SetStage(ctx context.Context, stage string) {
	s.mutate(ctx, func(t *Task) {
		if t.Stage != "" && !slices.Contains(t.CompletedStages, t.Stage) {
			t.CompletedStages = append(t.CompletedStages, t.Stage)
		}
		t.Stage = stage
		if p, ok := constants.StageProgress(stage); ok {
			t.Progress = p
		}
	})
}

// SetProgress sets progress, clamped to [0, 100].
func (s *Store) SetProgress(ctx context.Context, value int) {
	s.mutate(ctx, func(t *Task) {
		t.Progress = clamp(value, 0, constants.MaxProgress)
	})
}

// AddLog appends a log entry stamped with the current local time.
func (s *Store) AddLog(ctx context.Context, level constants.LogLevel, message string) {
	stamp := s.clock.Now().Format(constants.LogTimeFormat)
	s.mutate(ctx, func(t *Task) {
		t.Logs = append(t.Logs, LogEntry{Time: stamp, Level: level, Message: message})
	})
}

// UpdateStats merges the provided counters. Negative values become 0.
func (s *Store) UpdateStats(ctx context.Context, u StatsUpdate) {
	s.mutate(ctx, func(t *Task) {
		if u.NotesFound != nil {
			t.Stats.NotesFound = max(*u.NotesFound, 0)
		}
		if u.ContentsAnalyzed != nil {
			t.Stats.ContentsAnalyzed = max(*u.ContentsAnalyzed, 0)
		}
		if u.InsightsExtracted != nil {
			t.Stats.InsightsExtracted = max(*u.InsightsExtracted, 0)
		}
	})
}

// MarkCompleted stops the run and freezes the elapsed time. Logs and stats stay
// available for inspection.
func (s *Store) MarkCompleted(ctx context.Context) {
	now := clock.UnixMilli(s.clock)
	s.mutate(ctx, func(t *Task) {
		if t.StartTime != 0 {
			t.FinalElapsedTime = elapsedSeconds(t.StartTime, now)
		}
		t.IsRunning = false
	})
	s.logger.Info().Msg("task completed")
}

// ClearTask resets every field and deletes the persisted snapshot.
func (s *Store) ClearTask(ctx context.Context) {
	s.mu.Lock()
	s.task = defaultTask()
	s.tick = 0
	s.gen++
	s.adapter.Clear(ctx)
	s.mu.Unlock()

	s.hub.Notify()
	s.logger.Info().Msg("task cleared")
}

// UpdateTick advances the refresh counter and notifies subscribers so live
// views re-read ElapsedTime. Nothing is persisted.
func (s *Store) UpdateTick() {
	s.mu.Lock()
	s.tick++
	s.mu.Unlock()

	s.hub.Notify()
}

// Reload replaces the in-memory task with the persisted snapshot, or with the
// defaults when the snapshot is gone. Used after another process changed it.
func (s *Store) Reload(ctx context.Context) bool {
	t, ok := s.load(ctx)

	s.mu.Lock()
	if ok {
		s.task = t
	} else {
		s.task = defaultTask()
	}
	s.mu.Unlock()

	s.hub.Notify()
	return ok
}

// Sync adopts the persisted snapshot only when it differs from this store's own
// snapshot, so a file watch does not echo the store's writes back into it. It
// reports whether the state changed. A snapshot read while a local write
// landed is dropped; the write's own watch event triggers the next Sync.
func (s *Store) Sync(ctx context.Context) bool {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	t, ok := s.load(ctx)
	if !ok {
		t = defaultTask()
	}

	s.mu.Lock()
	if s.gen != gen || reflect.DeepEqual(t, s.task.snapshot()) {
		s.mu.Unlock()
		return false
	}
	s.task = t
	s.mu.Unlock()

	s.hub.Notify()
	return true
}

// Subscribe registers fn to run after every change. Call the returned function
// to unsubscribe.
func (s *Store) Subscribe(fn func()) func() {
	return s.hub.Subscribe(fn)
}

// ElapsedTime returns whole seconds since the task started, or the frozen value
// once completed.
func (s *Store) ElapsedTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Store) elapsedLocked() int64 {
	t := s.task
	if t.FinalElapsedTime > 0 {
		return t.FinalElapsedTime
	}
	if !t.IsRunning || t.StartTime == 0 {
		return 0
	}
	return elapsedSeconds(t.StartTime, clock.UnixMilli(s.clock))
}

// HasActiveTask reports whether a task is running.
func (s *Store) HasActiveTask() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.Active()
}

// HasCompletedTask reports whether a finished task with logs is held.
func (s *Store) HasCompletedTask() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.Completed()
}

// Tick returns the refresh counter.
func (s *Store) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// State returns a deep copy of the full in-memory task.
func (s *Store) State() Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.clone()
}

// Snapshot returns a deep copy in its persisted shape, with the log trimmed.
func (s *Store) Snapshot() Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task.snapshot()
}

// Status returns the task together with its derived fields.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Task:             s.task.clone(),
		ElapsedTime:      s.elapsedLocked(),
		HasActiveTask:    s.task.Active(),
		HasCompletedTask: s.task.Completed(),
		Tick:             s.tick,
	}
}

func elapsedSeconds(startMs, nowMs int64) int64 {
	if nowMs <= startMs {
		return 0
	}
	return (nowMs - startMs) / 1000
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
