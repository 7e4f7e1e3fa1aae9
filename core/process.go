package core

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/josephlewis42/shellington/commands"
)

// process is one started pipeline stage.
type process interface {
	Name() string
	Pid() int
	Start() error
	// Wait blocks until the stage exits and returns its exit status.
	Wait() (int, error)
	Kill()

	streams() *stageIO
}

// stageIO holds the streams of a stage and the files it owns. The owned
// files are closed once the stage no longer needs the parent's copy.
type stageIO struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	owned []io.Closer
}

func (s *stageIO) streams() *stageIO {
	return s
}

func (s *stageIO) own(c io.Closer) {
	s.owned = append(s.owned, c)
}

func (s *stageIO) closeOwned() {
	for _, c := range s.owned {
		c.Close()
	}
	s.owned = nil
}

// externalProcess is a program from the bin directory.
type externalProcess struct {
	stageIO
	cmd *exec.Cmd
}

var _ process = (*externalProcess)(nil)

func newExternalProcess(ctx context.Context, path string, argv []string) *externalProcess {
	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args = argv
	return &externalProcess{cmd: cmd}
}

func (p *externalProcess) Name() string {
	return p.cmd.Args[0]
}

func (p *externalProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *externalProcess) Start() error {
	// Leave the exec.Cmd streams nil rather than typed nil interfaces so the
	// child gets the null device.
	if p.stdin != nil {
		p.cmd.Stdin = p.stdin
	}
	if p.stdout != nil {
		p.cmd.Stdout = p.stdout
	}
	if p.stderr != nil {
		p.cmd.Stderr = p.stderr
	}

	// The child has its own copies now.
	defer p.closeOwned()
	return p.cmd.Start()
}

func (p *externalProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	return exitCode(err), err
}

func (p *externalProcess) Kill() {
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
}

// builtinProcess is a child side-effect builtin running in its own
// goroutine against the stage's streams.
type builtinProcess struct {
	stageIO
	argv  []string
	entry *Builtin
	// parent executes programs and command lines on behalf of the builtin.
	parent *Executor
	ctx    context.Context

	status int
	done   chan struct{}
}

var _ process = (*builtinProcess)(nil)

func (p *builtinProcess) Name() string {
	return p.argv[0]
}

func (p *builtinProcess) Pid() int {
	return os.Getpid()
}

func (p *builtinProcess) Start() error {
	stdin := p.stdin
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	stdout, stderr := orDiscard(p.stdout), orDiscard(p.stderr)
	child := p.parent.child(stdin, stdout, stderr)

	proc := &commands.Proc{
		Ctx:    p.ctx,
		Argv:   p.argv,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Config: p.parent.Config,
		Exec: func(argv []string) int {
			return child.execProgram(p.ctx, argv)
		},
		RunLine: func(line string) int {
			return child.runNested(p.ctx, p.argv[0], line)
		},
	}

	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		defer p.closeOwned()
		p.status = p.entry.Proc(proc)
	}()
	return nil
}

func (p *builtinProcess) Wait() (int, error) {
	<-p.done
	return p.status, nil
}

// Kill is a no-op, the builtin exits once its streams close.
func (p *builtinProcess) Kill() {}

// exitCode extracts the exit status from the result of exec.Cmd.Wait.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
		// Killed by a signal.
		return 128 + signalNumber(exitErr)
	default:
		return 1
	}
}

func signalNumber(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return int(status.Signal())
	}
	return 0
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
