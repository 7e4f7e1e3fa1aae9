package core

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/josephlewis42/shellington/core/lineedit"
	"github.com/josephlewis42/shellington/core/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_Prompt(t *testing.T) {
	ts := newTestShell(t)
	ts.Getenv = func(key string) string {
		if key == EnvUser {
			return "alice"
		}
		return ""
	}
	ts.Hostname = func() (string, error) { return "workstation", nil }
	cwd := getwd(t)

	assert.Equal(t, "alice@workstation:"+cwd+" shellington$ ", ts.Prompt())

	ts.Config.Hostname = "override"
	ts.Config.ShellName = "myshell"
	assert.Equal(t, "alice@override:"+cwd+" myshell$ ", ts.Prompt())
}

// scriptedShell creates a shell reading keys from input.
func scriptedShell(t *testing.T, input string) *testShell {
	t.Helper()

	ts := newTestShell(t)
	ts.Editor = lineedit.New(strings.NewReader(input), ts.stdout, nil)
	ts.Getenv = func(string) string { return "u" }
	ts.Hostname = func() (string, error) { return "h", nil }
	ts.Config.Hostname = ""
	return ts
}

func TestShell_Run(t *testing.T) {
	ts := scriptedShell(t, "emit\n   \nsay bye\nexit\nsay never\n")
	prompt := ts.Prompt()

	ts.Run(context.Background())

	assert.Equal(t, ""+
		prompt+"one\ntwo\n"+
		prompt+
		prompt+"bye\n"+
		prompt+"\n",
		ts.stdout.String())
}

func TestShell_Run_endOfInput(t *testing.T) {
	ts := scriptedShell(t, "say hi\n")
	prompt := ts.Prompt()

	ts.Run(context.Background())

	assert.Equal(t, prompt+"hi\n"+prompt+"\n", ts.stdout.String())
}

func TestShell_Run_ctrlD(t *testing.T) {
	ts := scriptedShell(t, "say hi\x04say never\n")

	ts.Run(context.Background())

	assert.NotContains(t, ts.stdout.String(), "never")
}

func TestShell_Run_cancelled(t *testing.T) {
	ts := scriptedShell(t, "say hi\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ts.Run(ctx)

	assert.Equal(t, "\n", ts.stdout.String())
}

func TestShell_Run_errorsContinue(t *testing.T) {
	ts := scriptedShell(t, "nope\nfail\nsay still here\n")

	ts.Run(context.Background())

	out := ts.stdout.String()
	assert.Contains(t, out, "-shellington: nope: command not found\n")
	assert.Contains(t, out, "still here\n")
}

func TestShell_Run_history(t *testing.T) {
	ts := scriptedShell(t, "say again\n\x1b[A\n")

	ts.Run(context.Background())

	assert.Equal(t, 2, strings.Count(ts.stdout.String(), "again\n"))
}

func TestShell_reap(t *testing.T) {
	ts := newTestShell(t)
	out := filepath.Join(t.TempDir(), "out.txt")

	require.Equal(t, StatusSuccess, ts.run("emit > "+out+" &"))
	job := ts.State.Jobs.List()[0]
	<-job.Done()
	ts.stdout.Reset()

	ts.reap()
	assert.Equal(t, fmt.Sprintf("[1] Done %d emit\n", job.Pid()), ts.stdout.String())

	ts.stdout.Reset()
	ts.reap()
	assert.Empty(t, ts.stdout.String(), "jobs are only announced once")
}

func TestShell_events(t *testing.T) {
	ts := newTestShell(t)
	events := &bytes.Buffer{}
	eventLogger := logger.NewJsonLinesLogRecorder(events)
	eventLogger.TimeSource = func() time.Time {
		return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	ts.Executor.Events = eventLogger.Sessionless()

	ts.run("say hi")
	ts.run("nope")
	ts.run("rps")

	logged := events.String()
	var report logger.Report
	require.NoError(t, logger.ReadJSONLinesLog(strings.NewReader(logged), report.Update))

	assert.Equal(t, 3, report.LogEntries)
	assert.Equal(t, 1, report.RunCommand.ResolvedCommandPaths.Count(filepath.Join(ts.binDir, "say")))
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Count("nope"))
	assert.Equal(t, 1, report.RunBuiltin.CommandNames.Count("rps"))

	assert.Contains(t, logged, `"run_command":{"command":["say","hi"],"resolved_command_path":"`+filepath.Join(ts.binDir, "say")+`","exit_code":0}`)
}

func TestNewShell_defaults(t *testing.T) {
	ts := newTestShell(t)

	assert.NotNil(t, ts.Events)
	assert.NotNil(t, ts.Rand)
	assert.Same(t, ts.State.Jobs, ts.Executor.Jobs)
	assert.Same(t, ts.Shell, ts.Executor.Shell)
	assert.NoError(t, ts.Events.Record(&logger.InternalError{Context: "test", Error: "discarded"}))
}
