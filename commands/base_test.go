package commands_test

import (
	"path/filepath"
	"testing"

	"github.com/josephlewis42/shellington/commands"
	"github.com/josephlewis42/shellington/commands/commandtest"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func TestAllCommands(t *testing.T) {
	entries := commands.ListCommands()
	assert.Len(t, entries, len(commands.AllCommands))

	for _, entry := range entries {
		t.Run(entry.Name, func(t *testing.T) {
			if entry.Proc == nil {
				t.Fatal("nil command", entry.Name)
			}
			assert.NotEmpty(t, entry.Use)
			assert.NotEmpty(t, entry.Short)
		})
	}
}

func TestListCommands_sorted(t *testing.T) {
	var names []string
	for _, entry := range commands.ListCommands() {
		names = append(names, entry.Name)
	}

	assert.Equal(t, []string{"bookmark", "remindme"}, names)
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args []string
}

func (gts goldenTestSuite) Run(t *testing.T, cmd commands.ProcessFunc) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			cmd := commandtest.Command(cmd, tc.Args[0], tc.Args[1:]...)
			out, err := cmd.CombinedOutput()
			if err != nil {
				t.Fatal(err)
			}

			g.Assert(t, tn, out)
		})
	}
}
