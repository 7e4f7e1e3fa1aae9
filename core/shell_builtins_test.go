package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/josephlewis42/shellington/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}

// tempDir returns a fresh directory with symlinks resolved so it compares
// equal to os.Getwd after a chdir.
func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestAllBuiltins(t *testing.T) {
	expected := map[string]BuiltinKind{
		"bookmark": ChildSideEffect,
		"cd":       ParentVisible,
		"exit":     ParentVisible,
		"help":     ParentVisible,
		"jobs":     ParentVisible,
		"remindme": ChildSideEffect,
		"rps":      ParentVisible,
		"short":    ParentVisible,
	}

	assert.Len(t, AllBuiltins, len(expected))
	for name, kind := range expected {
		t.Run(name, func(t *testing.T) {
			builtin, ok := LookupBuiltin(name)
			require.True(t, ok)
			assert.Equal(t, kind, builtin.Kind)
			assert.NotEmpty(t, builtin.Usage)
			assert.NotEmpty(t, builtin.Short)

			switch kind {
			case ParentVisible:
				assert.NotNil(t, builtin.Run)
				assert.Nil(t, builtin.Proc)
			case ChildSideEffect:
				assert.Nil(t, builtin.Run)
				assert.NotNil(t, builtin.Proc)
			}
		})
	}
}

func TestExit(t *testing.T) {
	ts := newTestShell(t)

	assert.Equal(t, StatusExit, ts.run("exit"))
	assert.Equal(t, StatusExit, ts.run("  exit  "))
	assert.Empty(t, ts.stdout.String())
}

func TestCd(t *testing.T) {
	ts := newTestShell(t)
	chdir(t, getwd(t))
	dir := tempDir(t)

	assert.Equal(t, StatusSuccess, ts.run("cd "+dir))

	assert.Equal(t, dir, getwd(t))
	assert.Empty(t, ts.stdout.String())
}

func TestCd_home(t *testing.T) {
	ts := newTestShell(t)
	chdir(t, getwd(t))
	home := tempDir(t)
	ts.Getenv = func(key string) string {
		if key == EnvHome {
			return home
		}
		return ""
	}

	assert.Equal(t, StatusSuccess, ts.run("cd"))

	assert.Equal(t, home, getwd(t))
}

func TestCd_errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")

	cases := map[string]struct {
		line     string
		expected string
	}{
		"missing directory": {"cd " + missing, "-shellington: cd: " + missing + ": no such file or directory\n"},
		"too many":          {"cd a b", "-shellington: cd: too many arguments\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t)
			before := getwd(t)

			assert.Equal(t, StatusUnknown, ts.run(tc.line))

			assert.Equal(t, tc.expected, ts.stdout.String())
			assert.Equal(t, before, getwd(t), "directory must not change")
		})
	}
}

func TestShort(t *testing.T) {
	ts := newTestShell(t)
	chdir(t, getwd(t))
	first, second := tempDir(t), tempDir(t)

	chdir(t, first)
	assert.Equal(t, StatusSuccess, ts.run("short set work"))
	assert.Equal(t, StatusSuccess, ts.run("short set play"))

	chdir(t, second)
	assert.Equal(t, StatusSuccess, ts.run("short set work"))

	chdir(t, first)
	assert.Equal(t, StatusSuccess, ts.run("short jump work"))
	assert.Equal(t, second, getwd(t))

	assert.Equal(t, ""+
		"New alias work is saved. Current alias number: 1\n"+
		"New alias play is saved. Current alias number: 2\n"+
		"An alias named work already has been found, overriding the path.\n"+
		"Alias work found, changing dir.\n",
		ts.stdout.String())

	assert.Equal(t, []Alias{{"work", second}, {"play", first}}, ts.State.Aliases.List())
}

func TestShort_list(t *testing.T) {
	ts := newTestShell(t)
	ts.State.Aliases.Set("src", "/usr/src")
	ts.State.Aliases.Set("tmp", "/tmp")

	assert.Equal(t, StatusSuccess, ts.run("short list"))

	assert.Equal(t, "\tsrc /usr/src\n\ttmp /tmp\n", ts.stdout.String())
}

func TestShort_errors(t *testing.T) {
	cases := map[string]struct {
		line     string
		expected string
	}{
		"unknown alias": {"short jump nowhere", "There is no such alias as nowhere, try again.\n"},
		"no arguments":  {"short", "usage: " + shortUsage + "\n"},
		"missing alias": {"short set", "usage: " + shortUsage + "\n"},
		"bad action":    {"short fly home", "usage: " + shortUsage + "\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t)
			before := getwd(t)

			assert.Equal(t, StatusUnknown, ts.run(tc.line))

			assert.Equal(t, tc.expected, ts.stdout.String())
			assert.Equal(t, before, getwd(t))
		})
	}
}

// fixedRand always picks the same value.
type fixedRand int

func (f fixedRand) Intn(n int) int {
	return int(f) % n
}

func TestRps(t *testing.T) {
	color.NoColor = true

	cases := map[string]struct {
		move     string
		pick     int
		outcome  string
		expected Score
	}{
		"rock ties":         {"rock", 0, "That's a tie!", Score{}},
		"rock loses":        {"rock", 1, "Paper beats rock! You lost.", Score{Losses: 1}},
		"rock wins":         {"ROCK", 2, "Rock beats Scissors! You won.", Score{Wins: 1}},
		"paper wins":        {"paper", 0, "Paper beats rock! You won.", Score{Wins: 1}},
		"paper loses":       {"Paper", 2, "Scissors beats paper! You lost.", Score{Losses: 1}},
		"scissors loses":    {"scissors", 0, "Rock beats Scissors! You lost.", Score{Losses: 1}},
		"scissors wins":     {"scissors", 1, "Scissors beats paper! You won.", Score{Wins: 1}},
		"scissors ties too": {"scissors", 2, "That's a tie!", Score{}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t)
			ts.Rand = fixedRand(tc.pick)

			assert.Equal(t, StatusSuccess, ts.run("rps "+tc.move))

			assert.Equal(t, tc.expected, ts.State.Score)
			assert.Contains(t, ts.stdout.String(), "\n"+tc.outcome+"\n")
		})
	}
}

func TestRps_transcript(t *testing.T) {
	color.NoColor = true
	ts := newTestShell(t)
	ts.Rand = fixedRand(2)
	ts.Config.RPSCountdown = config.Duration(time.Second)
	var slept []time.Duration
	ts.Sleep = func(d time.Duration) { slept = append(slept, d) }

	ts.run("rps rock")
	ts.run("rps paper")

	assert.Equal(t, ""+
		"Rock!\nPaper!\nScissors!\n"+
		"You said: rock!\n"+
		"Shellington said scissors!\n"+
		"Rock beats Scissors! You won.\n"+
		"SCOREBOARD: You 1, Shellington 0\n"+
		"Rock!\nPaper!\nScissors!\n"+
		"You said: paper!\n"+
		"Shellington said scissors!\n"+
		"Scissors beats paper! You lost.\n"+
		"SCOREBOARD: You 1, Shellington 1\n",
		ts.stdout.String())
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second, time.Second}, slept)
}

func TestRps_errors(t *testing.T) {
	cases := map[string]struct {
		line     string
		expected string
	}{
		"no move":  {"rps", "Not enough arguments given, try again.\n"},
		"bad move": {"rps lizard", "That move does not exist! Try again.\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t)

			assert.Equal(t, StatusUnknown, ts.run(tc.line))

			assert.Equal(t, tc.expected, ts.stdout.String())
			assert.Equal(t, Score{}, ts.State.Score)
		})
	}
}

func TestHelp(t *testing.T) {
	ts := newTestShell(t)

	assert.Equal(t, StatusSuccess, ts.run("help"))

	out := ts.stdout.String()
	for _, builtin := range ListBuiltins() {
		assert.Contains(t, out, builtin.Usage)
	}
}

func TestHelp_topics(t *testing.T) {
	ts := newTestShell(t)

	assert.Equal(t, StatusUnknown, ts.run("help rps nope"))

	assert.Equal(t, ""+
		"rps: rps rock|paper|scissors\n    Play rock-paper-scissors.\n"+
		"-shellington: help: no help topics match `nope'.\n",
		ts.stdout.String())
}

func TestJobs(t *testing.T) {
	ts := newTestShell(t)
	writeScript(t, ts.binDir, "wait-for-input", "read line")

	assert.Equal(t, StatusSuccess, ts.run("jobs"))
	assert.Empty(t, ts.stdout.String())

	// Hold the job open until the test is done with it.
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	ts.Executor.Stdin = r

	assert.Equal(t, StatusSuccess, ts.run("wait-for-input &"))
	job := ts.State.Jobs.List()[0]
	ts.stdout.Reset()

	assert.Equal(t, StatusSuccess, ts.run("jobs"))
	assert.Equal(t, fmt.Sprintf("[1] %d Running wait-for-input\n", job.Pid()), ts.stdout.String())

	w.Close()
	<-job.Done()
}
