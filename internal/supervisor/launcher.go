package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"syscall"

	"github.com/shaiso/devstack/internal/domain"
)

// Launcher — запуск одного дочернего процесса.
//
// Start не должен ждать завершения процесса.
type Launcher interface {
	Start(spec domain.ChildSpec) (Process, error)
}

// Process — запущенный дочерний процесс.
type Process interface {
	// PID возвращает идентификатор процесса ОС.
	PID() int

	// Wait блокируется до завершения процесса и возвращает код выхода.
	// Ненулевой код — не ошибка; error — только сбой самого ожидания.
	Wait() (int, error)

	// Signal отправляет сигнал процессу.
	Signal(sig os.Signal) error

	// Kill принудительно завершает процесс.
	Kill() error
}

// ExecLauncher запускает процессы через os/exec.
type ExecLauncher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env — базовое окружение. Nil — окружение супервизора.
	Env []string
}

// NewExecLauncher создаёт ExecLauncher с потоками супервизора.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Start реализует Launcher.
func (l *ExecLauncher) Start(spec domain.ChildSpec) (Process, error) {
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("%w: command is required", ErrSpawnFailed)
	}

	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = mergeEnv(l.baseEnv(), spec.Env)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	return &execProcess{cmd: cmd}, nil
}

func (l *ExecLauncher) baseEnv() []string {
	if l.Env != nil {
		return l.Env
	}
	return os.Environ()
}

// mergeEnv дописывает overlay к base. exec.Cmd берёт последнее значение
// для повторяющихся ключей.
func mergeEnv(base []string, overlay map[string]string) []string {
	env := slices.Clone(base)

	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		env = append(env, k+"="+overlay[k])
	}
	return env
}

// execProcess — Process поверх exec.Cmd.
type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitCode(exitErr.ProcessState), nil
	}
	return -1, err
}

func (p *execProcess) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}

// exitCode возвращает код выхода как в shell: 128+signal для убитых сигналом.
func exitCode(state *os.ProcessState) int {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return state.ExitCode()
}
