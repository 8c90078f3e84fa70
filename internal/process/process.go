package process

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Spec describes a command to start.
type Spec struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the launcher's own environment.
	Env []string
}

// String renders the command line.
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + " " + strings.Join(s.Args, " ")
}

// Exit is how a child ended.
type Exit struct {
	Code int
	// Signal is set when the child was terminated by a signal.
	Signal string
}

// Process is a started child.
type Process interface {
	PID() int
	Signal(sig os.Signal) error
	Kill() error
	// Wait blocks until the child exits. It must be called exactly once.
	Wait() (Exit, error)
}

// Runner starts children.
type Runner interface {
	Start(ctx context.Context, spec Spec) (Process, error)
}

// ExecRunner runs commands through os/exec. Nil streams default to the
// launcher's own stdin, stdout and stderr.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner that shares the launcher's terminal.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Start launches spec. ctx is only consulted before the child starts; the
// caller owns the child's lifetime afterwards.
func (r *ExecRunner) Start(ctx context.Context, spec Spec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G204 -- commands come from the operator's own configuration
	cmd := exec.Command(spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Name, err)
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Signal(sig os.Signal) error {
	return p.cmd.Process.Signal(sig)
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if stdErrors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execProcess) Wait() (Exit, error) {
	err := p.cmd.Wait()
	if err == nil {
		return Exit{Code: 0}, nil
	}
	var ee *exec.ExitError
	if stdErrors.As(err, &ee) {
		return ExitFromState(ee.ProcessState), nil
	}
	return Exit{}, err
}

// ExitFromState maps a finished process state to an Exit.
func ExitFromState(state *os.ProcessState) Exit {
	if state == nil {
		return Exit{Code: -1}
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Exit{Code: 128 + int(ws.Signal()), Signal: ws.Signal().String()}
	}
	return Exit{Code: state.ExitCode()}
}
