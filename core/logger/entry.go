package logger

// LogEntry is a single line of the event log. Exactly one of the event
// fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	RunBuiltin     *RunBuiltin     `json:"run_builtin,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	BackgroundDone *BackgroundDone `json:"background_done,omitempty"`
	InternalError  *InternalError  `json:"internal_error,omitempty"`
}

// LogType is implemented by every event that can be recorded.
type LogType interface {
	apply(*LogEntry)
}

// RunCommand is recorded when an external program finished or, for
// background programs, started.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path"`
	Background          bool     `json:"background,omitempty"`
	ExitCode            int      `json:"exit_code"`
}

func (e *RunCommand) apply(le *LogEntry) { le.RunCommand = e }

// RunBuiltin is recorded when a builtin ran.
type RunBuiltin struct {
	Command []string `json:"command"`
	Status  int      `json:"status"`
}

func (e *RunBuiltin) apply(le *LogEntry) { le.RunBuiltin = e }

// UnknownCommand is recorded when a command couldn't be resolved.
type UnknownCommand struct {
	Command      []string `json:"command"`
	ErrorMessage string   `json:"error_message"`
}

func (e *UnknownCommand) apply(le *LogEntry) { le.UnknownCommand = e }

// BackgroundDone is recorded when a background job was reaped.
type BackgroundDone struct {
	Job      int    `json:"job"`
	Pid      int    `json:"pid"`
	Name     string `json:"name"`
	ExitCode int    `json:"exit_code"`
}

func (e *BackgroundDone) apply(le *LogEntry) { le.BackgroundDone = e }

// InternalError is recorded for failures that aren't the user's fault.
type InternalError struct {
	Context string `json:"context"`
	Error   string `json:"error"`
}

func (e *InternalError) apply(le *LogEntry) { le.InternalError = e }
