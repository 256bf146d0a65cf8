package supervisor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/shaiso/devstack/internal/domain"
)

// --- Fakes ---

// fakeLauncher записывает запуски и ожидания в общий журнал событий.
type fakeLauncher struct {
	mu     sync.Mutex
	events []string
	procs  map[string]*fakeProcess
	fail   map[string]error
	nextID int
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{
		procs: make(map[string]*fakeProcess),
		fail:  make(map[string]error),
	}
}

func (l *fakeLauncher) Start(spec domain.ChildSpec) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, "start:"+spec.Name)

	if err, ok := l.fail[spec.Name]; ok {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	l.nextID++
	p := l.procs[spec.Name]
	if p == nil {
		p = newFakeProcess()
		l.procs[spec.Name] = p
	}
	p.pid = 1000 + l.nextID
	p.name = spec.Name
	p.launcher = l
	return p, nil
}

func (l *fakeLauncher) record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *fakeLauncher) log() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// fakeProcess завершается, когда в exit приходит код.
type fakeProcess struct {
	pid      int
	name     string
	launcher *fakeLauncher
	exit     chan int

	// ignoreTerm — не реагировать на SIGTERM (только на Kill).
	ignoreTerm bool

	// termExit — код выхода по SIGTERM (0 — 128+SIGTERM).
	termExit int

	mu      sync.Mutex
	signals []os.Signal
	killed  bool
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{exit: make(chan int, 1)}
}

func (p *fakeProcess) PID() int { return p.pid }

func (p *fakeProcess) Wait() (int, error) {
	p.launcher.record("wait:" + p.name)
	return <-p.exit, nil
}

func (p *fakeProcess) Signal(sig os.Signal) error {
	p.mu.Lock()
	p.signals = append(p.signals, sig)
	p.mu.Unlock()

	if !p.ignoreTerm && sig == syscall.SIGTERM {
		code := p.termExit
		if code == 0 {
			code = 128 + int(syscall.SIGTERM)
		}
		p.finish(code)
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()

	p.finish(128 + int(syscall.SIGKILL))
	return nil
}

// finish завершает процесс, если он ещё не завершён.
func (p *fakeProcess) finish(code int) {
	select {
	case p.exit <- code:
	default:
	}
}

func (p *fakeProcess) gotSignals() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]os.Signal(nil), p.signals...)
}

func (p *fakeProcess) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// recordingObserver записывает события жизненного цикла.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (o *recordingObserver) add(event string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return o.err
}

func (o *recordingObserver) RunStarted(_ context.Context, run *domain.Run) error {
	return o.add("run_started:" + string(run.Status))
}

func (o *recordingObserver) ChildStarted(_ context.Context, _ *domain.Run, c *domain.Child) error {
	return o.add("child_started:" + c.Name() + ":" + c.Status.String())
}

func (o *recordingObserver) ChildExited(_ context.Context, _ *domain.Run, c *domain.Child) error {
	return o.add("child_exited:" + c.Name() + ":" + c.Status.String())
}

func (o *recordingObserver) RunFinished(_ context.Context, run *domain.Run) error {
	return o.add("run_finished:" + string(run.Status))
}

func (o *recordingObserver) log() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.events...)
}
