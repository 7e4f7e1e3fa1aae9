// Package lineedit reads a single line from a terminal one keystroke at a
// time with echo, backspace and single-slot history recall.
package lineedit

import (
	"bufio"
	"io"
	"log"
	"unicode/utf8"
)

// MaxLineLength is the capacity of the line buffer including the terminator.
const MaxLineLength = 4096

// ErrEndOfInput is returned by ReadLine when the user pressed Ctrl-D or the
// input stream closed.
var ErrEndOfInput = io.EOF

const (
	keyEndOfTransmission = 0x04
	keyBackspace         = 0x08
	keyTab               = 0x09
	keyEscape            = 0x1b
	keyDelete            = 0x7f
)

// States of the escape sequence decoder.
const (
	stateIdle = iota
	stateEscape
	stateCSI
)

// eraseChar moves back one column, blanks it and moves back again.
const eraseChar = "\b \b"

// RawMode switches the terminal in and out of character-at-a-time mode.
type RawMode interface {
	Begin() error
	End() error
}

// Editor reads lines from a terminal.
type Editor struct {
	in  io.ByteReader
	out io.Writer
	raw RawMode

	// history holds the last accepted line.
	history string

	// Logger receives non-fatal terminal errors, nil discards them.
	Logger *log.Logger

	warnedRaw bool
}

// New creates an editor reading keys from in and echoing to out. If raw is
// nil the terminal is left untouched and nothing is echoed.
func New(in io.Reader, out io.Writer, raw RawMode) *Editor {
	br, ok := in.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &Editor{in: br, out: out, raw: raw}
}

// History returns the previously accepted line.
func (e *Editor) History() string {
	return e.history
}

// SetHistory replaces the previously accepted line.
func (e *Editor) SetHistory(line string) {
	e.history = line
}

// ReadLine writes the prompt then reads one line. The returned line doesn't
// include the newline. If the user pressed tab, the line ends with a "?"
// marker.
func (e *Editor) ReadLine(prompt string) (string, error) {
	echo := e.beginRaw()
	defer e.endRaw()

	io.WriteString(e.out, prompt)
	l := &line{out: e.out, echo: echo, buf: make([]byte, 0, MaxLineLength)}

	state := stateIdle
	for {
		c, err := e.in.ReadByte()
		if err != nil {
			return "", err
		}

		switch state {
		case stateEscape:
			state = stateIdle
			if c == '[' {
				state = stateCSI
			}
			continue

		case stateCSI:
			switch {
			case c == 'A': // up arrow
				l.replace(e.history)
			case c >= '0' && c <= '9' || c == ';':
				// Parameter bytes, the sequence continues.
				continue
			}
			state = stateIdle
			continue
		}

		switch c {
		case keyEscape:
			state = stateEscape

		case keyDelete, keyBackspace:
			l.backspace()

		case keyTab:
			l.buf = append(l.buf, '?')
			l.write("\n")
			return e.accept(l), nil

		case keyEndOfTransmission:
			return "", ErrEndOfInput

		case '\n', '\r':
			l.write("\n")
			return e.accept(l), nil

		default:
			if c < 0x20 {
				// Unhandled control character.
				continue
			}
			l.buf = append(l.buf, c)
			l.writeByte(c)

			if len(l.buf) >= MaxLineLength-1 {
				l.write("\n")
				return e.accept(l), nil
			}
		}
	}
}

func (e *Editor) accept(l *line) string {
	e.history = string(l.buf)
	return e.history
}

func (e *Editor) beginRaw() bool {
	if e.raw == nil {
		return false
	}
	if err := e.raw.Begin(); err != nil {
		if !e.warnedRaw {
			e.logf("line editing disabled: %v", err)
			e.warnedRaw = true
		}
		return false
	}
	return true
}

func (e *Editor) endRaw() {
	if e.raw == nil {
		return
	}
	if err := e.raw.End(); err != nil {
		e.logf("%v", err)
	}
}

func (e *Editor) logf(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

// line is the buffer being edited along with its on-screen echo.
type line struct {
	out  io.Writer
	echo bool
	buf  []byte
}

func (l *line) write(s string) {
	if l.echo {
		io.WriteString(l.out, s)
	}
}

func (l *line) writeByte(c byte) {
	if l.echo {
		l.out.Write([]byte{c})
	}
}

func (l *line) backspace() {
	if len(l.buf) == 0 {
		return
	}
	_, size := utf8.DecodeLastRune(l.buf)
	l.buf = l.buf[:len(l.buf)-size]
	l.write(eraseChar)
}

// replace erases the current contents and loads text in its place.
func (l *line) replace(text string) {
	for n := utf8.RuneCount(l.buf); n > 0; n-- {
		l.write(eraseChar)
	}
	l.buf = append(l.buf[:0], text...)
	l.write(text)
}
