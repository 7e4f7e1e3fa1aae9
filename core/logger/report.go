package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int `json:"log_entries"`
	Sessions   int `json:"sessions"`

	RunCommand     RunCommandReport     `json:"run_command_report"`
	RunBuiltin     RunBuiltinReport     `json:"run_builtin_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	InternalError  InternalErrorReport  `json:"internal_error_report"`

	sessions map[string]bool
}

// Update adds the entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	if le.SessionID != "" {
		if r.sessions == nil {
			r.sessions = make(map[string]bool)
		}
		if !r.sessions[le.SessionID] {
			r.sessions[le.SessionID] = true
			r.Sessions++
		}
	}

	switch {
	case le.RunCommand != nil:
		r.RunCommand.update(le.RunCommand)
	case le.RunBuiltin != nil:
		r.RunBuiltin.update(le.RunBuiltin)
	case le.UnknownCommand != nil:
		r.UnknownCommand.update(le.UnknownCommand)
	case le.InternalError != nil:
		r.InternalError.update(le.InternalError)
	}
}

type RunCommandReport struct {
	// Name of the resolved command
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
	// Number of commands that exited non-zero.
	Failures int `json:"failures"`
	// Number of commands started in the background.
	Background int `json:"background"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	r.ResolvedCommandPaths.Increment(rc.ResolvedCommandPath)
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	}
	if rc.ExitCode != 0 {
		r.Failures++
	}
	if rc.Background {
		r.Background++
	}
}

type RunBuiltinReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *RunBuiltinReport) update(rb *RunBuiltin) {
	if len(rb.Command) > 0 {
		r.CommandNames.Increment(rb.Command[0])
	}
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(uc *UnknownCommand) {
	if len(uc.Command) > 0 {
		r.CommandNames.Increment(uc.Command[0])
	}
}

type InternalErrorReport struct {
	Contexts StrCounter `json:"contexts"`
}

func (r *InternalErrorReport) update(ie *InternalError) {
	r.Contexts.Increment(ie.Context)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns the number of times the key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// Top returns the keys ordered by descending count, ties broken
// alphabetically.
func (s *StrCounter) Top() []string {
	var keys []string
	for k := range s.internal {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := s.internal[keys[i]], s.internal[keys[j]]
		if ci == cj {
			return strings.Compare(keys[i], keys[j]) < 0
		}
		return ci > cj
	})
	return keys
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}
