package lineedit

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRawMode struct {
	beginErr error
	begins   int
	ends     int
}

func (f *fakeRawMode) Begin() error {
	f.begins++
	return f.beginErr
}

func (f *fakeRawMode) End() error {
	f.ends++
	return nil
}

func newTestEditor(input string) (*Editor, *bytes.Buffer, *fakeRawMode) {
	out := &bytes.Buffer{}
	raw := &fakeRawMode{}
	return New(strings.NewReader(input), out, raw), out, raw
}

func TestEditor_ReadLine(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected string
		echoed   string
	}{
		"plain":                {"echo hi\n", "echo hi", "$ echo hi\n"},
		"carriage return":      {"ls\r", "ls", "$ ls\n"},
		"backspace":            {"ab\x7fc\n", "ac", "$ ab\b \bc\n"},
		"ascii backspace":      {"ab\x08\n", "a", "$ ab\b \b\n"},
		"backspace at start":   {"\x7f\x7fx\n", "x", "$ x\n"},
		"backspace multibyte":  {"aé\x7f\n", "a", "$ aé\b \b\n"},
		"tab marks completion": {"ls -\t", "ls -?", "$ ls -\n"},
		"other escape ignored": {"a\x1b[Bb\n", "ab", "$ ab\n"},
		"parameterized escape": {"\x1b[3~x\n", "x", "$ x\n"},
		"non csi escape":       {"\x1bOAz\n", "Az", "$ Az\n"},
		"control chars":        {"a\x01\x02b\n", "ab", "$ ab\n"},
		"empty recall":         {"\x1b[Aok\n", "ok", "$ ok\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			editor, out, raw := newTestEditor(tc.input)

			line, err := editor.ReadLine("$ ")

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, line)
			assert.Equal(t, tc.echoed, out.String())
			assert.Equal(t, tc.expected, editor.History())
			assert.Equal(t, 1, raw.begins)
			assert.Equal(t, 1, raw.ends)
		})
	}
}

func TestEditor_ReadLine_endOfInput(t *testing.T) {
	cases := map[string]string{
		"ctrl-d":       "par\x04tial\n",
		"closed input": "partial",
		"empty input":  "",
	}

	for tn, input := range cases {
		t.Run(tn, func(t *testing.T) {
			editor, _, raw := newTestEditor(input)
			editor.SetHistory("before")

			line, err := editor.ReadLine("$ ")

			assert.ErrorIs(t, err, ErrEndOfInput)
			assert.Empty(t, line)
			assert.Equal(t, "before", editor.History(), "history must not change")
			assert.Equal(t, raw.begins, raw.ends, "terminal must be restored")
		})
	}
}

func TestEditor_ReadLine_history(t *testing.T) {
	editor, out, raw := newTestEditor("first line\n\x1b[A\n")

	first, err := editor.ReadLine("")
	assert.NoError(t, err)
	assert.Equal(t, "first line", first)

	out.Reset()
	second, err := editor.ReadLine("")
	assert.NoError(t, err)
	assert.Equal(t, "first line", second)
	assert.Equal(t, "first line\n", out.String())

	assert.Equal(t, 2, raw.begins)
	assert.Equal(t, 2, raw.ends)
}

func TestEditor_ReadLine_historyReplacesTyped(t *testing.T) {
	editor, out, _ := newTestEditor("one\ntw\x1b[A!\n")

	_, err := editor.ReadLine("")
	assert.NoError(t, err)

	out.Reset()
	line, err := editor.ReadLine("")
	assert.NoError(t, err)
	assert.Equal(t, "one!", line)
	assert.Equal(t, "tw\b \b\b \bone!\n", out.String())
	assert.Equal(t, "one!", editor.History())
}

func TestEditor_ReadLine_bufferLimit(t *testing.T) {
	editor, _, _ := newTestEditor(strings.Repeat("a", MaxLineLength+10) + "\n")

	line, err := editor.ReadLine("")

	assert.NoError(t, err)
	assert.Len(t, line, MaxLineLength-1)
}

func TestEditor_ReadLine_noRawMode(t *testing.T) {
	out := &bytes.Buffer{}
	raw := &fakeRawMode{beginErr: errors.New("not a terminal")}
	editor := New(strings.NewReader("ab\x7fc\n"), out, raw)

	line, err := editor.ReadLine("$ ")

	assert.NoError(t, err)
	assert.Equal(t, "ac", line)
	// The terminal does its own echo so only the prompt is written.
	assert.Equal(t, "$ ", out.String())
}

func TestEditor_ReadLine_nilRawMode(t *testing.T) {
	out := &bytes.Buffer{}
	editor := New(strings.NewReader("pwd\n"), out, nil)

	line, err := editor.ReadLine("> ")

	assert.NoError(t, err)
	assert.Equal(t, "pwd", line)
	assert.Equal(t, "> ", out.String())
}
