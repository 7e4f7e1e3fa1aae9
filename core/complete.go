package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/josephlewis42/shellington/core/shell"
)

// completionMarker is appended to a line when the user asks for completion.
const completionMarker = "?"

// complete prints the candidates for the last word of the line instead of
// running it.
func (e *Executor) complete(cmd *shell.Command) {
	candidates := Completions(e.Config.BinDir, cmd)
	if len(candidates) > 0 {
		fmt.Fprintln(e.Stdout, strings.Join(candidates, "  "))
	}
}

// Completions lists the words that could replace the last word of the
// pipeline. A command name completes against builtins and the bin directory,
// an argument completes against paths.
func Completions(binDir string, cmd *shell.Command) []string {
	stages := cmd.Stages()
	last := stages[len(stages)-1]

	if len(last.Args) == 0 {
		return commandCompletions(binDir, strings.TrimSuffix(last.Name, completionMarker))
	}
	return pathCompletions(strings.TrimSuffix(last.Args[len(last.Args)-1], completionMarker))
}

func commandCompletions(binDir, prefix string) []string {
	seen := make(map[string]bool)
	var matches []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			matches = append(matches, name)
		}
	}

	for name := range AllBuiltins {
		add(name)
	}

	if entries, err := os.ReadDir(binDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				add(entry.Name())
			}
		}
	}

	sort.Strings(matches)
	return matches
}

func pathCompletions(prefix string) []string {
	dir, base := filepath.Split(prefix)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}

	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		// Hidden files only complete when asked for.
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		matches = append(matches, dir+name)
	}
	return matches
}
