package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/devstack/internal/domain"
	"github.com/shaiso/devstack/internal/telemetry"
)

// Default configuration values.
const (
	defaultStopTimeout     = 10 * time.Second
	defaultObserverTimeout = 5 * time.Second
)

// Supervisor запускает процессы плана и ждёт их завершения.
//
// Supervisor не хранит состояние между вызовами Run: каждый вызов
// создаёт новый domain.Run и новый набор процессов.
type Supervisor struct {
	plan            domain.Plan
	launcher        Launcher
	policy          Policy
	stopTimeout     time.Duration
	observer        Observer
	observerTimeout time.Duration
	logger          *slog.Logger
}

// Config — конфигурация Supervisor.
type Config struct {
	// Plan — что запускать.
	Plan domain.Plan

	// Launcher (опционально; если nil — NewExecLauncher())
	Launcher Launcher

	// Policy — политика сбоев (default: PolicyContinue).
	Policy Policy

	// StopTimeout — пауза между SIGTERM и SIGKILL при PolicyAbort (default: 10s).
	StopTimeout time.Duration

	// Observer — получатель событий (опционально).
	Observer Observer

	// ObserverTimeout — таймаут одного вызова Observer (default: 5s).
	ObserverTimeout time.Duration

	// Logger (опционально; если nil — telemetry.FromContext(ctx) в Run)
	Logger *slog.Logger
}

// New создаёт новый Supervisor.
func New(cfg Config) *Supervisor {
	launcher := cfg.Launcher
	if launcher == nil {
		launcher = NewExecLauncher()
	}

	policy := cfg.Policy
	if policy == "" {
		policy = PolicyContinue
	}

	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}

	observer := cfg.Observer
	if observer == nil {
		observer = Observers{}
	}

	observerTimeout := cfg.ObserverTimeout
	if observerTimeout <= 0 {
		observerTimeout = defaultObserverTimeout
	}

	return &Supervisor{
		plan:            cfg.Plan,
		launcher:        launcher,
		policy:          policy,
		stopTimeout:     stopTimeout,
		observer:        observer,
		observerTimeout: observerTimeout,
		logger:          cfg.Logger,
	}
}

// Run выполняет фазу запуска и фазу ожидания.
//
// Возвращает run в статусе DONE. Ошибка — errors.Join всех ChildError
// в порядке плана (nil, если все процессы запустились и вышли с кодом 0).
// Run возвращается только после завершения всех запущенных процессов.
func (s *Supervisor) Run(ctx context.Context) (*domain.Run, error) {
	run := domain.NewRun(s.plan, s.policy.String())

	logger := s.logger
	if logger == nil {
		logger = telemetry.FromContext(ctx)
	}

	st := &runState{
		sup:         s,
		run:         run,
		ctx:         context.WithoutCancel(ctx),
		logger:      telemetry.WithRunID(logger, run.ID.String()),
		outstanding: make(map[int]*handle),
		errs:        make([]error, len(run.Children)),
	}

	stopNotice := context.AfterFunc(ctx, func() {
		st.logger.Info("interrupt received, waiting for children to exit")
	})
	defer stopNotice()

	st.logger.Info("launching children",
		"count", len(run.Children),
		"policy", s.policy,
	)

	// Фаза запуска: ровно один spawn-запрос на каждый ChildSpec
	handles := st.launch()
	run.MarkRunning()

	st.mu.Lock()
	st.notify("run started", func(ctx context.Context) error {
		return s.observer.RunStarted(ctx, run)
	})
	for _, child := range run.Children {
		st.notify("child started", func(ctx context.Context) error {
			return s.observer.ChildStarted(ctx, run, child)
		})
	}
	if s.policy == PolicyAbort && len(handles) < len(run.Children) {
		st.abortLocked("spawn failure")
	}
	st.mu.Unlock()

	// Фаза ожидания
	var g errgroup.Group
	for _, h := range handles {
		g.Go(func() error {
			return st.wait(h)
		})
	}
	if err := g.Wait(); err != nil {
		st.logger.Debug("join finished with failures", "first_error", err)
	}

	st.mu.Lock()
	if st.killTimer != nil {
		st.killTimer.Stop()
	}
	run.MarkDone()
	st.notify("run finished", func(ctx context.Context) error {
		return s.observer.RunFinished(ctx, run)
	})
	st.mu.Unlock()

	err := errors.Join(st.errs...)
	st.logger.Info("all children exited",
		"duration", run.Duration(),
		"failed", len(run.Failed()),
	)
	return run, err
}

// handle — запущенный процесс, принадлежащий супервизору.
type handle struct {
	child   *domain.Child
	proc    Process
	stopped bool
}

// runState — состояние одного вызова Run.
type runState struct {
	sup    *Supervisor
	run    *domain.Run
	ctx    context.Context
	logger *slog.Logger

	// mu защищает всё ниже, а также поля domain.Child после фазы запуска.
	// Вызовы Observer выполняются под mu.
	mu          sync.Mutex
	outstanding map[int]*handle
	errs        []error
	stopping    bool
	killTimer   *time.Timer
}

// launch запускает все процессы плана, не дожидаясь их завершения.
func (st *runState) launch() []*handle {
	handles := make([]*handle, 0, len(st.run.Children))

	for _, child := range st.run.Children {
		logger := telemetry.WithChild(st.logger, child.Name())

		proc, err := st.sup.launcher.Start(child.Spec)
		if err != nil {
			child.MarkSpawnFailed(err.Error())
			st.errs[child.Index] = &ChildError{Child: child.Name(), ExitCode: -1, Err: err}
			logger.Error("failed to start child",
				"command", child.Spec.CommandLine(),
				"dir", child.Spec.Dir,
				"error", err,
			)
			continue
		}

		child.MarkRunning(proc.PID())
		h := &handle{child: child, proc: proc}
		st.outstanding[child.Index] = h
		handles = append(handles, h)

		logger.Info("child started",
			"pid", proc.PID(),
			"command", child.Spec.CommandLine(),
			"dir", child.Spec.Dir,
		)
	}

	return handles
}

// wait ждёт завершения одного процесса и фиксирует результат.
func (st *runState) wait(h *handle) error {
	code, waitErr := h.proc.Wait()

	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.outstanding, h.child.Index)

	var errText string
	if waitErr != nil {
		errText = waitErr.Error()
	}
	h.child.MarkExited(code, errText, h.stopped && stoppedExit(code, waitErr))

	logger := telemetry.WithChild(st.logger, h.child.Name())
	attrs := []any{
		"pid", h.child.PID,
		"exit_code", code,
		"status", h.child.Status,
		"duration", h.child.Duration(),
		"outstanding", len(st.outstanding),
	}
	if h.child.Status.IsFailure() {
		logger.Warn("child exited", append(attrs, "error", errText)...)
	} else {
		logger.Info("child exited", attrs...)
	}

	st.notify("child exited", func(ctx context.Context) error {
		return st.sup.observer.ChildExited(ctx, st.run, h.child)
	})

	if !h.child.Status.IsFailure() {
		return nil
	}

	cause := ErrChildExited
	if waitErr != nil {
		cause = fmt.Errorf("%w: %v", ErrChildExited, waitErr)
	}
	childErr := &ChildError{Child: h.child.Name(), ExitCode: code, Err: cause}
	st.errs[h.child.Index] = childErr

	if st.sup.policy == PolicyAbort {
		st.abortLocked("child " + h.child.Name() + " failed")
	}
	return childErr
}

// stoppedExit сообщает, похож ли выход на реакцию на остановку:
// код 0 или завершение сигналом (128+n). Остальные коды — собственный сбой процесса.
func stoppedExit(code int, waitErr error) bool {
	return waitErr == nil && (code == 0 || code > 128)
}

// abortLocked отправляет SIGTERM всем работающим процессам и взводит
// таймер SIGKILL. Повторные вызовы ничего не делают. Вызывается под mu.
func (st *runState) abortLocked(reason string) {
	if st.stopping {
		return
	}
	st.stopping = true

	st.logger.Warn("stopping remaining children",
		"reason", reason,
		"outstanding", len(st.outstanding),
		"stop_timeout", st.sup.stopTimeout,
	)

	for _, h := range st.outstanding {
		h.stopped = true
		if err := h.proc.Signal(syscall.SIGTERM); err != nil {
			st.logger.Warn("failed to signal child, killing",
				"child", h.child.Name(),
				"error", err,
			)
			_ = h.proc.Kill()
		}
	}

	if len(st.outstanding) > 0 {
		st.killTimer = time.AfterFunc(st.sup.stopTimeout, st.killRemaining)
	}
}

// killRemaining принудительно завершает процессы, пережившие SIGTERM.
func (st *runState) killRemaining() {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, h := range st.outstanding {
		st.logger.Warn("child did not stop in time, killing",
			"child", h.child.Name(),
			"pid", h.child.PID,
		)
		if err := h.proc.Kill(); err != nil {
			st.logger.Error("failed to kill child", "child", h.child.Name(), "error", err)
		}
	}
}

// notify вызывает Observer с таймаутом. Ошибка только логируется.
func (st *runState) notify(event string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(st.ctx, st.sup.observerTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		st.logger.Warn("observer failed", "event", event, "error", err)
	}
}
