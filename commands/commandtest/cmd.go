// Package commandtest runs commands against an in-memory store for tests.
package commandtest

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/josephlewis42/shellington/commands"
	"github.com/josephlewis42/shellington/core/config"
	"github.com/spf13/afero"
)

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Process function
	Process commands.ProcessFunc
	// Process arguments, the first argument should be the process name.
	Argv []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Config holds the stores, defaults to the built-in configuration on an
	// in-memory filesystem.
	Config *config.Configuration

	// ExecStatus is returned for every program the command executes.
	ExecStatus int
	// Execs records the argument vector of every program executed.
	Execs [][]string
	// Lines records every command line run.
	Lines []string

	ExitStatus int
}

// Command creates a Cmd for the process with a fresh in-memory store.
func Command(process commands.ProcessFunc, name string, arg ...string) *Cmd {
	return &Cmd{
		Process: process,
		Argv:    append([]string{name}, arg...),
		Config:  config.Default(afero.NewMemMapFs()),
	}
}

// Fs returns the filesystem the command's stores live in.
func (c *Cmd) Fs() afero.Fs {
	return c.Config.Fs()
}

// CombinedOutput runs the command and returns its stdout and stderr.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	if err := c.Run(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run runs the command to completion.
func (c *Cmd) Run() error {
	if c.Config == nil {
		c.Config = config.Default(afero.NewMemMapFs())
	}

	proc := &commands.Proc{
		Ctx:    context.Background(),
		Argv:   c.Argv,
		Stdin:  c.Stdin,
		Stdout: orDiscard(c.Stdout),
		Stderr: orDiscard(c.Stderr),
		Config: c.Config,
		Exec: func(argv []string) int {
			c.Execs = append(c.Execs, argv)
			return c.ExecStatus
		},
		RunLine: func(line string) int {
			c.Lines = append(c.Lines, line)
			return c.ExecStatus
		},
	}
	if proc.Stdin == nil {
		proc.Stdin = strings.NewReader("")
	}

	c.ExitStatus = c.Process(proc)
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
