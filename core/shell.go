package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/josephlewis42/shellington/core/config"
	"github.com/josephlewis42/shellington/core/lineedit"
	"github.com/josephlewis42/shellington/core/logger"
	"github.com/josephlewis42/shellington/core/shell"
)

const (
	EnvHome = "HOME"
	EnvUser = "USER"
)

// Streams are the terminal streams a shell is attached to.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Shell is the interactive interpreter loop.
type Shell struct {
	Config   *config.Configuration
	State    *State
	Editor   *lineedit.Editor
	Executor *Executor

	Stdout io.Writer
	Events *logger.SessionLogger
	// Logger receives diagnostics that aren't meant for the user's terminal.
	Logger *log.Logger

	// Rand picks the shell's rock-paper-scissors moves.
	Rand interface{ Intn(n int) int }
	// Sleep paces the rock-paper-scissors countdown.
	Sleep func(time.Duration)
	// Getenv reads the environment for the prompt and cd.
	Getenv func(string) string
	// Hostname is used in the prompt unless the configuration overrides it.
	Hostname func() (string, error)
}

// NewShell creates a shell reading lines from streams.Stdin. If raw is nil
// the terminal is left alone and keys aren't echoed by the shell.
func NewShell(cfg *config.Configuration, streams Streams, raw lineedit.RawMode, events *logger.SessionLogger) *Shell {
	if events == nil {
		events = logger.NewNopLogger().Sessionless()
	}

	// Background stages keep writing while the loop prompts.
	stdout, stderr := lockStreams(streams.Stdout, streams.Stderr)

	s := &Shell{
		Config: cfg,
		State:  NewState(),
		Editor: lineedit.New(streams.Stdin, stdout, raw),
		Stdout: stdout,
		Events: events,
		Logger: log.New(io.Discard, "", 0),

		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Sleep:    time.Sleep,
		Getenv:   os.Getenv,
		Hostname: os.Hostname,
	}

	s.Executor = &Executor{
		Shell:  s,
		Config: cfg,
		Stdin:  streams.Stdin,
		Stdout: stdout,
		Stderr: stderr,
		Jobs:   s.State.Jobs,
		Events: events,
	}

	return s
}

// SetLogger replaces the diagnostic logger of the shell and its editor.
func (s *Shell) SetLogger(l *log.Logger) {
	s.Logger = l
	s.Editor.Logger = l
}

// Prompt renders user@host:cwd name$.
func (s *Shell) Prompt() string {
	host := s.Config.Hostname
	if host == "" {
		if h, err := s.Hostname(); err == nil {
			host = h
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "?"
	}

	return fmt.Sprintf("%s@%s:%s %s$ ", s.Getenv(EnvUser), host, cwd, s.Config.ShellName)
}

// Run reads and executes lines until exit, the end of input, or ctx is
// cancelled.
func (s *Shell) Run(ctx context.Context) {
	// Interrupts go to the foreground children, the shell keeps running.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	defer fmt.Fprintln(s.Stdout)

	for ctx.Err() == nil {
		s.reap()

		line, err := s.Editor.ReadLine(s.Prompt())
		if err != nil {
			if !errors.Is(err, lineedit.ErrEndOfInput) {
				s.Logger.Printf("reading input: %v", err)
				s.Events.Record(&logger.InternalError{Context: "read line", Error: err.Error()})
			}
			return
		}

		if s.RunLine(ctx, line) == StatusExit {
			return
		}
	}
}

// RunLine parses and executes a single line.
func (s *Shell) RunLine(ctx context.Context, line string) Status {
	return s.Executor.Execute(ctx, shell.Parse(line))
}

// reap announces background jobs that finished since the last prompt.
func (s *Shell) reap() {
	for _, job := range s.State.Jobs.Reap() {
		fmt.Fprintf(s.Stdout, "[%d] Done %d %s\n", job.ID, job.Pid(), job.Name)
		s.Events.Record(&logger.BackgroundDone{
			Job:      job.ID,
			Pid:      job.Pid(),
			Name:     job.Name,
			ExitCode: job.ExitCode,
		})
	}
}

func (s *Shell) errorf(w io.Writer, subject, format string, args ...interface{}) {
	fmt.Fprintf(w, "-%s: %s: %s\n", s.Config.ShellName, subject, fmt.Sprintf(format, args...))
}
