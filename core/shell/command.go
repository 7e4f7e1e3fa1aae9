package shell

import (
	"fmt"
	"io"
	"strings"
)

// Redirect slots of a Command.
const (
	RedirectStdin = iota
	RedirectStdout
	RedirectAppend

	redirectCount
)

var redirectNames = [redirectCount]string{"stdin", "stdout", "stdout-append"}

// Command is one stage of a pipeline.
type Command struct {
	// Name of the program or builtin to run.
	Name string
	// Args holds the positional arguments, not including the name.
	Args []string
	// Redirects holds the file targets indexed by RedirectStdin,
	// RedirectStdout and RedirectAppend. An empty string means the stream is
	// inherited.
	Redirects [redirectCount]string
	// Background is set when the line ended with &.
	Background bool
	// AutoComplete is set when the line ended with ?. The ? is left on the
	// last word.
	AutoComplete bool
	// Next is the stage that reads this stage's output.
	Next *Command
}

// IsEmpty reports whether the command has nothing to run.
func (c *Command) IsEmpty() bool {
	return c == nil || c.Name == ""
}

// Argv returns the argument vector passed to a program: the name followed by
// the arguments.
func (c *Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// Redirect returns the target of the given redirect slot.
func (c *Command) Redirect(slot int) (string, bool) {
	target := c.Redirects[slot]
	return target, target != ""
}

// Stages returns the pipeline starting at c as a slice.
func (c *Command) Stages() []*Command {
	var out []*Command
	for stage := c; stage != nil; stage = stage.Next {
		out = append(out, stage)
	}
	return out
}

// String renders a human readable dump of the pipeline.
func (c *Command) String() string {
	sb := &strings.Builder{}
	c.dump(sb, 0)
	return sb.String()
}

func (c *Command) dump(w io.Writer, depth int) {
	indent := strings.Repeat("\t", depth)
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}

	fmt.Fprintf(w, "%sCommand: <%s>\n", indent, c.Name)
	fmt.Fprintf(w, "%s\tIs Background: %s\n", indent, yesNo(c.Background))
	fmt.Fprintf(w, "%s\tNeeds Auto-complete: %s\n", indent, yesNo(c.AutoComplete))
	fmt.Fprintf(w, "%s\tRedirects:\n", indent)
	for i, target := range c.Redirects {
		if target == "" {
			target = "N/A"
		}
		fmt.Fprintf(w, "%s\t\t%s: %s\n", indent, redirectNames[i], target)
	}
	fmt.Fprintf(w, "%s\tArguments (%d):\n", indent, len(c.Args))
	for i, arg := range c.Args {
		fmt.Fprintf(w, "%s\t\tArg %d: %s\n", indent, i, arg)
	}
	if c.Next != nil {
		fmt.Fprintf(w, "%s\tPiped to:\n", indent)
		c.Next.dump(w, depth+1)
	}
}
