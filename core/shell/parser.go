package shell

import "strings"

// splitters separate tokens on a line.
const splitters = " \t"

type token struct {
	text string
	// end is the offset just past the token in the line it was read from.
	end int
}

// Parse converts a raw input line into a pipeline. It never fails: malformed
// input is normalized, and an empty or blank line yields a Command with no
// name.
func Parse(line string) *Command {
	line = strings.Trim(line, splitters)
	cmd := &Command{}
	if line == "" {
		return cmd
	}

	switch line[len(line)-1] {
	case '?':
		// The marker stays on the last word, it's the prefix the completer
		// strips and matches against.
		cmd.AutoComplete = true
	case '&':
		cmd.Background = true
	}

	tokens := tokenize(line)
	if cmd.Background {
		// A trailing & may be attached to the last word, as in "sleep 10&".
		last := &tokens[len(tokens)-1]
		last.text = strings.TrimSuffix(last.text, "&")
	}
	cmd.Name = tokens[0].text

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		arg := strings.Trim(tok.text, splitters)
		if arg == "" {
			continue
		}

		switch arg {
		case "|":
			cmd.Next = Parse(line[tok.end:])
			return cmd
		case "&":
			continue
		}

		if slot, target, ok := splitRedirect(arg); ok {
			// Allow the target to be the following word, e.g. "sort < in.txt".
			if target == "" && i+1 < len(tokens) && !isOperator(tokens[i+1].text) {
				i++
				target = tokens[i].text
			}
			if target = unquote(target); target != "" {
				cmd.Redirects[slot] = target
			}
			continue
		}

		cmd.Args = append(cmd.Args, unquote(arg))
	}

	return cmd
}

// tokenize splits a line on runs of whitespace. Whitespace within a pair of
// matching quotes doesn't split.
func tokenize(line string) []token {
	var out []token

	i := 0
	for i < len(line) {
		if strings.IndexByte(splitters, line[i]) >= 0 {
			i++
			continue
		}

		start := i
		for i < len(line) && strings.IndexByte(splitters, line[i]) < 0 {
			if q := line[i]; q == '"' || q == '\'' {
				if closing := strings.IndexByte(line[i+1:], q); closing >= 0 {
					i += closing + 2
					continue
				}
			}
			i++
		}
		out = append(out, token{text: line[start:i], end: i})
	}

	return out
}

// splitRedirect checks whether the word is a redirection and returns its slot
// and the target text directly following the operator.
func splitRedirect(word string) (slot int, target string, ok bool) {
	switch {
	case strings.HasPrefix(word, "<"):
		return RedirectStdin, word[1:], true
	case strings.HasPrefix(word, ">>"):
		return RedirectAppend, word[2:], true
	case strings.HasPrefix(word, ">"):
		return RedirectStdout, word[1:], true
	default:
		return 0, "", false
	}
}

func isOperator(word string) bool {
	if word == "|" || word == "&" {
		return true
	}
	_, _, ok := splitRedirect(word)
	return ok
}

// unquote strips one pair of matching single or double quotes surrounding
// the word.
func unquote(word string) string {
	if len(word) > 2 {
		first, last := word[0], word[len(word)-1]
		if first == last && (first == '"' || first == '\'') {
			return word[1 : len(word)-1]
		}
	}
	return word
}
