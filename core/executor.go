package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"sync"

	"github.com/josephlewis42/shellington/core/config"
	"github.com/josephlewis42/shellington/core/logger"
	"github.com/josephlewis42/shellington/core/shell"
)

// Status is the result of executing a command line.
type Status int

const (
	// StatusSuccess means the command ran and the loop continues.
	StatusSuccess Status = 0
	// StatusExit means the shell should stop.
	StatusExit Status = 1
	// StatusUnknown means the command or operation failed.
	StatusUnknown Status = 2
)

// exitNotFound is the exit status of a program that couldn't be resolved.
const exitNotFound = 127

// Executor runs parsed pipelines.
type Executor struct {
	// Shell runs parent visible builtins. It's nil when executing on behalf of
	// a child side-effect builtin, which can't change the shell's state.
	Shell  *Shell
	Config *config.Configuration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Jobs   *JobTable
	Events *logger.SessionLogger

	// depth counts how many child side-effect builtins this executor is
	// nested in.
	depth int
}

// child creates an executor for a child side-effect builtin attached to its
// streams.
func (e *Executor) child(stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{
		Config: e.Config,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Jobs:   e.Jobs,
		Events: e.Events,
		depth:  e.depth + 1,
	}
}

// Execute runs the pipeline starting at cmd and reports the outcome.
func (e *Executor) Execute(ctx context.Context, cmd *shell.Command) Status {
	if cmd.IsEmpty() {
		return StatusSuccess
	}

	if cmd.AutoComplete {
		e.complete(cmd)
		return StatusSuccess
	}

	var stages []*shell.Command
	for _, stage := range cmd.Stages() {
		if !stage.IsEmpty() {
			stages = append(stages, stage)
		}
	}

	for _, stage := range stages {
		builtin, ok := LookupBuiltin(stage.Name)
		if !ok || builtin.Kind != ParentVisible {
			continue
		}

		switch {
		case e.Shell == nil:
			e.errorf(stage.Name, "can't change the shell from here")
			return StatusUnknown
		case len(stages) > 1:
			e.errorf(stage.Name, "can't be used in a pipeline")
			return StatusUnknown
		}
		return e.runShellBuiltin(builtin, stage)
	}

	return e.runPipeline(ctx, stages)
}

func (e *Executor) runShellBuiltin(builtin *Builtin, stage *shell.Command) Status {
	w := e.Stdout
	if out, ok, err := openOutput(stage); err != nil {
		e.reportOpenError(err)
		return StatusUnknown
	} else if ok {
		defer out.Close()
		w = out
	}

	status := builtin.Run(e.Shell, w, stage.Argv())
	e.record(&logger.RunBuiltin{
		Command: stage.Argv(),
		Status:  int(status),
	})
	return status
}

func (e *Executor) runPipeline(ctx context.Context, stages []*shell.Command) Status {
	background := stages[0].Background
	if background {
		// Background jobs outlive the line that started them.
		ctx = context.Background()
	} else if timeout := e.Config.CommandTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	procs := make([]process, 0, len(stages))
	paths := make([]string, len(stages))
	for i, stage := range stages {
		proc, path, err := e.newProcess(ctx, stage)
		if err != nil {
			e.reportLookupError(stage, err)
			return StatusUnknown
		}
		procs = append(procs, proc)
		paths[i] = path
	}

	if err := e.connect(stages, procs); err != nil {
		e.reportOpenError(err)
		return StatusUnknown
	}

	for i, proc := range procs {
		if err := proc.Start(); err != nil {
			e.errorf(proc.Name(), "%v", err)
			e.recordInternalError("start "+proc.Name(), err)
			for _, pending := range procs[i+1:] {
				pending.streams().closeOwned()
			}
			for _, started := range procs[:i] {
				started.Kill()
				started.Wait()
			}
			return StatusUnknown
		}
	}

	if background {
		job := e.Jobs.add(procs)
		fmt.Fprintf(e.Stdout, "[%d] %d\n", job.ID, job.Pid())
		for i, stage := range stages {
			e.recordStage(stage, paths[i], true, 0)
		}
		return StatusSuccess
	}

	lastExit := 0
	for i, proc := range procs {
		lastExit, _ = proc.Wait()
		e.recordStage(stages[i], paths[i], false, lastExit)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.errorf(stages[len(stages)-1].Name, "timed out after %v", e.Config.CommandTimeout.Std())
		return StatusUnknown
	}
	if lastExit != 0 {
		return StatusUnknown
	}
	return StatusSuccess
}

// newProcess prepares a stage without starting it. The path is empty for
// builtins.
func (e *Executor) newProcess(ctx context.Context, stage *shell.Command) (process, string, error) {
	if builtin, ok := LookupBuiltin(stage.Name); ok && builtin.Kind == ChildSideEffect {
		return &builtinProcess{
			argv:   stage.Argv(),
			entry:  builtin,
			parent: e,
			ctx:    ctx,
		}, "", nil
	}

	path, err := LookPath(e.Config.BinDir, stage.Name)
	if err != nil {
		return nil, "", err
	}
	return newExternalProcess(ctx, path, stage.Argv()), path, nil
}

// connect binds every stage's streams: redirect files first, then the pipe
// to the neighboring stage, then the executor's own streams.
func (e *Executor) connect(stages []*shell.Command, procs []process) (err error) {
	stderr := e.Stderr
	if len(stages) > 1 {
		stderr = lockStream(stderr)
	}

	var pipeReader *os.File
	defer func() {
		if err == nil {
			return
		}
		if pipeReader != nil {
			pipeReader.Close()
		}
		for _, proc := range procs {
			proc.streams().closeOwned()
		}
	}()

	for i, stage := range stages {
		stdio := procs[i].streams()
		stdio.stderr = stderr

		switch {
		case pipeReader != nil:
			stdio.stdin = pipeReader
			stdio.own(pipeReader)
			pipeReader = nil
		case i == 0:
			stdio.stdin = e.Stdin
		}

		if target, ok := stage.Redirect(shell.RedirectStdin); ok {
			fd, err := os.Open(target)
			if err != nil {
				return err
			}
			stdio.stdin = fd
			stdio.own(fd)
		}

		if i < len(stages)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				return err
			}
			stdio.stdout = w
			stdio.own(w)
			pipeReader = r
		} else {
			stdio.stdout = e.Stdout
		}

		out, ok, err := openOutput(stage)
		if err != nil {
			return err
		}
		if ok {
			stdio.stdout = out
			stdio.own(out)
		}
	}

	return nil
}

// openOutput opens the stage's output redirect if it has one. An append
// redirect takes precedence over a truncating one.
func openOutput(stage *shell.Command) (*os.File, bool, error) {
	if target, ok := stage.Redirect(shell.RedirectAppend); ok {
		fd, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		return fd, err == nil, err
	}
	if target, ok := stage.Redirect(shell.RedirectStdout); ok {
		fd, err := os.OpenFile(target, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		return fd, err == nil, err
	}
	return nil, false, nil
}

// execProgram runs a single program from the bin directory to completion.
func (e *Executor) execProgram(ctx context.Context, argv []string) int {
	path, err := LookPath(e.Config.BinDir, argv[0])
	if err != nil {
		e.reportLookupError(&shell.Command{Name: argv[0], Args: argv[1:]}, err)
		return exitNotFound
	}

	proc := newExternalProcess(ctx, path, argv)
	proc.stdin, proc.stdout, proc.stderr = e.Stdin, e.Stdout, e.Stderr
	if err := proc.Start(); err != nil {
		e.errorf(argv[0], "%v", err)
		return 1
	}
	code, _ := proc.Wait()
	e.record(&logger.RunCommand{
		Command:             argv,
		ResolvedCommandPath: path,
		ExitCode:            code,
	})
	return code
}

// runNested runs a command line on behalf of the named builtin.
func (e *Executor) runNested(ctx context.Context, name, line string) int {
	if e.depth > e.Config.MaxBookmarkDepth {
		e.errorf(name, "nested too deeply")
		return 1
	}
	if e.Execute(ctx, shell.Parse(line)) != StatusSuccess {
		return 1
	}
	return 0
}

func (e *Executor) reportLookupError(stage *shell.Command, err error) {
	message := "command not found"
	if !errors.Is(err, ErrNotFound) {
		message = pathErrorMessage(err)
	}
	e.errorf(stage.Name, "%s", message)
	e.record(&logger.UnknownCommand{
		Command:      stage.Argv(),
		ErrorMessage: message,
	})
}

func (e *Executor) reportOpenError(err error) {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		e.errorf(pathErr.Path, "%v", pathErr.Err)
		return
	}
	e.errorf("pipe", "%v", err)
	e.recordInternalError("pipe", err)
}

// errorf prints a message in the -shell: subject: message form.
func (e *Executor) errorf(subject, format string, args ...interface{}) {
	fmt.Fprintf(e.Stdout, "-%s: %s: %s\n", e.Config.ShellName, subject, fmt.Sprintf(format, args...))
}

func (e *Executor) recordStage(stage *shell.Command, path string, background bool, exitCode int) {
	if path == "" {
		e.record(&logger.RunBuiltin{
			Command: stage.Argv(),
			Status:  exitCode,
		})
		return
	}
	e.record(&logger.RunCommand{
		Command:             stage.Argv(),
		ResolvedCommandPath: path,
		Background:          background,
		ExitCode:            exitCode,
	})
}

func (e *Executor) recordInternalError(what string, err error) {
	e.record(&logger.InternalError{
		Context: what,
		Error:   err.Error(),
	})
}

func (e *Executor) record(event logger.LogType) {
	if e.Events == nil {
		return
	}
	if err := e.Events.Record(event); err != nil {
		fmt.Fprintf(e.Stderr, "-%s: event log: %v\n", e.Config.ShellName, err)
	}
}

// pathErrorMessage drops the operation and path from file errors.
func pathErrorMessage(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	if errors.Is(err, fs.ErrPermission) {
		return "permission denied"
	}
	return err.Error()
}

// lockedWriter serializes writes from stages sharing a stream.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// lockStream wraps a stream that's written from more than one goroutine.
// Files are left alone so children write to them directly.
func lockStream(w io.Writer) io.Writer {
	switch w.(type) {
	case nil, *os.File, *lockedWriter:
		return w
	default:
		return &lockedWriter{w: w}
	}
}

// lockStreams wraps stdout and stderr, sharing one lock when both are the
// same writer.
func lockStreams(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	lockedOut := lockStream(stdout)
	if stderr != nil && reflect.TypeOf(stderr).Comparable() && stderr == stdout {
		return lockedOut, lockedOut
	}
	return lockedOut, lockStream(stderr)
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
