package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/josephlewis42/shellington/commands"
	getopt "github.com/pborman/getopt/v2"
)

// BuiltinKind says where a builtin's effects land.
type BuiltinKind int

const (
	// ParentVisible builtins change the shell itself and never spawn.
	ParentVisible BuiltinKind = iota
	// ChildSideEffect builtins only touch their streams and stores.
	ChildSideEffect
)

func (k BuiltinKind) String() string {
	switch k {
	case ParentVisible:
		return "shell"
	case ChildSideEffect:
		return "command"
	default:
		return fmt.Sprintf("BuiltinKind(%d)", int(k))
	}
}

// ShellBuiltinFunc runs a parent visible builtin writing its output to w.
type ShellBuiltinFunc func(s *Shell, w io.Writer, args []string) Status

// Builtin is an entry in the builtin registry.
type Builtin struct {
	Name  string
	Kind  BuiltinKind
	Usage string
	Short string

	// Run is set for ParentVisible builtins.
	Run ShellBuiltinFunc
	// Proc is set for ChildSideEffect builtins.
	Proc commands.ProcessFunc
}

// AllBuiltins holds every builtin by name. It's filled once at startup.
var AllBuiltins = make(map[string]*Builtin)

// LookupBuiltin finds the builtin with the given name.
func LookupBuiltin(name string) (*Builtin, bool) {
	builtin, ok := AllBuiltins[name]
	return builtin, ok
}

// ListBuiltins returns every builtin sorted by name.
func ListBuiltins() []*Builtin {
	var out []*Builtin
	for _, builtin := range AllBuiltins {
		out = append(out, builtin)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Exit quits the shell
func Exit(s *Shell, w io.Writer, args []string) Status {
	return StatusExit
}

// Cd is the cd shell builtin
func Cd(s *Shell, w io.Writer, args []string) Status {
	var dir string
	switch len(args) {
	case 1:
		dir = s.Getenv(EnvHome)
		if dir == "" {
			s.errorf(w, args[0], "HOME not set")
			return StatusUnknown
		}
	case 2:
		dir = args[1]
	default:
		s.errorf(w, args[0], "too many arguments")
		return StatusUnknown
	}

	if err := os.Chdir(dir); err != nil {
		s.errorf(w, args[0], "%s: %s", dir, chdirError(err))
		return StatusUnknown
	}
	return StatusSuccess
}

func chdirError(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

const shortUsage = "short set ALIAS | short jump ALIAS | short list"

// Short saves and jumps to directory aliases.
func Short(s *Shell, w io.Writer, args []string) Status {
	opts := getopt.New()
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintf(w, "usage: %s\n", shortUsage)
		fmt.Fprintln(w, "Save the current directory under an alias and jump back to it.")
		if err != nil {
			return StatusUnknown
		}
		return StatusSuccess
	}

	rest := opts.Args()
	aliases := &s.State.Aliases

	switch {
	case len(rest) == 1 && rest[0] == "list":
		for _, alias := range aliases.List() {
			fmt.Fprintf(w, "\t%s %s\n", alias.Name, alias.Dir)
		}
		return StatusSuccess

	case len(rest) == 2 && rest[0] == "set":
		cwd, err := os.Getwd()
		if err != nil {
			s.errorf(w, args[0], "%v", err)
			return StatusUnknown
		}
		if aliases.Set(rest[1], cwd) {
			fmt.Fprintf(w, "An alias named %s already has been found, overriding the path.\n", rest[1])
		} else {
			fmt.Fprintf(w, "New alias %s is saved. Current alias number: %d\n", rest[1], aliases.Len())
		}
		return StatusSuccess

	case len(rest) == 2 && rest[0] == "jump":
		dir, ok := aliases.Lookup(rest[1])
		if !ok {
			fmt.Fprintf(w, "There is no such alias as %s, try again.\n", rest[1])
			return StatusUnknown
		}
		if err := os.Chdir(dir); err != nil {
			s.errorf(w, args[0], "%s: %s", dir, chdirError(err))
			return StatusUnknown
		}
		fmt.Fprintf(w, "Alias %s found, changing dir.\n", rest[1])
		return StatusSuccess

	default:
		fmt.Fprintf(w, "usage: %s\n", shortUsage)
		return StatusUnknown
	}
}

var rpsMoves = []string{"rock", "paper", "scissors"}

// rpsWins holds the announcement when the move at the index wins.
var rpsWins = []string{
	"Rock beats Scissors!",
	"Paper beats rock!",
	"Scissors beats paper!",
}

var (
	rpsTieColor  = color.New(color.FgYellow)
	rpsLossColor = color.New(color.FgRed)
	rpsWinColor  = color.New(color.FgGreen)
)

// Rps plays a round of rock-paper-scissors against the shell.
func Rps(s *Shell, w io.Writer, args []string) Status {
	if len(args) < 2 {
		fmt.Fprintln(w, "Not enough arguments given, try again.")
		return StatusUnknown
	}

	userMove := strings.ToLower(args[1])
	user := -1
	for i, move := range rpsMoves {
		if move == userMove {
			user = i
		}
	}
	if user < 0 {
		fmt.Fprintln(w, "That move does not exist! Try again.")
		return StatusUnknown
	}

	for i, word := range []string{"Rock!", "Paper!", "Scissors!"} {
		if i > 0 {
			s.Sleep(s.Config.RPSCountdown.Std())
		}
		fmt.Fprintln(w, word)
	}

	opponent := capitalize(s.Config.ShellName)
	pick := s.Rand.Intn(len(rpsMoves))
	fmt.Fprintf(w, "You said: %s!\n", userMove)
	fmt.Fprintf(w, "%s said %s!\n", opponent, rpsMoves[pick])

	// Each move beats the one before it.
	switch pick {
	case user:
		rpsTieColor.Fprintln(w, "That's a tie!")
	case (user + 1) % len(rpsMoves):
		rpsLossColor.Fprintf(w, "%s You lost.\n", rpsWins[pick])
		s.State.Score.Losses++
	default:
		rpsWinColor.Fprintf(w, "%s You won.\n", rpsWins[user])
		s.State.Score.Wins++
	}

	fmt.Fprintf(w, "SCOREBOARD: You %d, %s %d\n", s.State.Score.Wins, opponent, s.State.Score.Losses)
	return StatusSuccess
}

func capitalize(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Help lists the builtins or describes one of them.
func Help(s *Shell, w io.Writer, args []string) Status {
	if len(args) > 1 {
		status := StatusSuccess
		for _, name := range args[1:] {
			builtin, ok := LookupBuiltin(name)
			if !ok {
				s.errorf(w, args[0], "no help topics match `%s'.", name)
				status = StatusUnknown
				continue
			}
			fmt.Fprintf(w, "%s: %s\n    %s\n", builtin.Name, builtin.Usage, builtin.Short)
		}
		return status
	}

	fmt.Fprintf(w, "%s, these commands are built in.\n", s.Config.ShellName)
	fmt.Fprintln(w, "Everything else runs from", s.Config.BinDir)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, builtin := range ListBuiltins() {
		fmt.Fprintf(tw, "%s\t%s\n", builtin.Usage, builtin.Short)
	}
	tw.Flush()
	return StatusSuccess
}

// Jobs lists the background jobs that haven't been reaped.
func Jobs(s *Shell, w io.Writer, args []string) Status {
	for _, job := range s.State.Jobs.List() {
		state := "Running"
		if job.finished() {
			state = "Done"
		}
		fmt.Fprintf(w, "[%d] %d %s %s\n", job.ID, job.Pid(), state, job.Name)
	}
	return StatusSuccess
}

func init() {
	shellBuiltins := []*Builtin{
		{Name: "cd", Usage: "cd [DIR]", Short: "Change the working directory, $HOME by default.", Run: Cd},
		{Name: "exit", Usage: "exit", Short: "Exit the shell.", Run: Exit},
		{Name: "help", Usage: "help [BUILTIN...]", Short: "Describe the builtin commands.", Run: Help},
		{Name: "jobs", Usage: "jobs", Short: "List background jobs.", Run: Jobs},
		{Name: "rps", Usage: "rps rock|paper|scissors", Short: "Play rock-paper-scissors.", Run: Rps},
		{Name: "short", Usage: shortUsage, Short: "Save and jump to directory aliases.", Run: Short},
	}
	for _, builtin := range shellBuiltins {
		builtin.Kind = ParentVisible
		AllBuiltins[builtin.Name] = builtin
	}

	for _, entry := range commands.ListCommands() {
		AllBuiltins[entry.Name] = &Builtin{
			Name:  entry.Name,
			Kind:  ChildSideEffect,
			Usage: entry.Use,
			Short: entry.Short,
			Proc:  entry.Proc,
		}
	}
}
