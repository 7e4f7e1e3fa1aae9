package commands

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/josephlewis42/shellington/core/config"
	getopt "github.com/pborman/getopt/v2"
)

// ProcessFunc is the entrypoint of a command. It returns the exit status.
type ProcessFunc func(p *Proc) int

// Proc is the environment a command runs in. Commands only see the streams
// of their pipeline stage and the configured stores, never the shell's own
// state.
type Proc struct {
	Ctx    context.Context
	Argv   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config *config.Configuration

	// Exec runs a program from the bin directory attached to the proc's
	// streams and returns its exit status.
	Exec func(argv []string) int
	// RunLine parses and runs a command line attached to the proc's streams
	// and returns its exit status.
	RunLine func(line string) int
}

// Context returns the proc's context, never nil.
func (p *Proc) Context() context.Context {
	if p.Ctx == nil {
		return context.Background()
	}
	return p.Ctx
}

// CommandEntry describes a registered command.
type CommandEntry struct {
	Name  string
	Use   string
	Short string
	Proc  ProcessFunc
}

// AllCommands holds all registered commands by name.
var AllCommands = make(map[string]*CommandEntry)

func mustAddCmd(entry *CommandEntry) {
	if _, ok := AllCommands[entry.Name]; ok {
		panic(fmt.Sprintf("command %q registered twice", entry.Name))
	}
	AllCommands[entry.Name] = entry
}

// ListCommands returns registered commands sorted by name.
func ListCommands() []*CommandEntry {
	var out []*CommandEntry
	for _, entry := range AllCommands {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was successful call the callback.
func (s *SimpleCommand) Run(p *Proc, callback func() int) int {
	opts := s.Flags()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")

	if err := opts.Getopt(p.Argv, nil); err != nil {
		fmt.Fprintf(p.Stderr, "error: %s\n\n", err)
		s.PrintHelp(p.Stdout)
		return 1
	}

	if *showHelp {
		s.PrintHelp(p.Stdout)
		return 0
	}

	return callback()
}
