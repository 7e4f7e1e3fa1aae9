package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"
)

const (
	bookmarkUse   = "bookmark [-l | -d INDEX | -i INDEX | COMMAND...]"
	bookmarkShort = "Save, list, delete, or run bookmarked commands."
)

// Bookmark keeps a numbered list of command lines in the bookmark store.
func Bookmark(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   bookmarkUse,
		Short: bookmarkShort,
	}

	opts := cmd.Flags()
	list := opts.Bool('l', "list the saved bookmarks")
	deleteIndex := opts.Int('d', -1, "delete the bookmark at INDEX", "INDEX")
	runIndex := opts.Int('i', -1, "run the bookmark at INDEX", "INDEX")

	return cmd.Run(p, func() int {
		store := &bookmarkStore{fs: p.Config.Fs(), path: p.Config.BookmarksPath}

		switch {
		case *list:
			lines, err := store.Lines()
			if err != nil {
				fmt.Fprintln(p.Stdout, "Error opening bookmarks.")
				return 1
			}
			for i, line := range lines {
				fmt.Fprintf(p.Stdout, "\t%d %s\n", i, line)
			}
			return 0

		case *deleteIndex >= 0:
			if err := store.Delete(*deleteIndex); err != nil {
				fmt.Fprintln(p.Stdout, "Error deleting bookmark.")
				return 1
			}
			return 0

		case *runIndex >= 0:
			lines, err := store.Lines()
			if err != nil {
				fmt.Fprintln(p.Stdout, "Error opening bookmarks.")
				return 1
			}
			if *runIndex >= len(lines) {
				fmt.Fprintf(p.Stdout, "There is no bookmark %d.\n", *runIndex)
				return 1
			}
			return p.RunLine(strings.ReplaceAll(lines[*runIndex], `"`, ""))

		case len(opts.Args()) == 0:
			cmd.PrintHelp(p.Stdout)
			return 1

		default:
			if err := store.Append(strings.Join(opts.Args(), " ")); err != nil {
				fmt.Fprintln(p.Stdout, "Error inserting bookmark.")
				return 1
			}
			return 0
		}
	})
}

var errNoSuchBookmark = errors.New("no such bookmark")

// bookmarkStore is a line oriented file of bookmarked commands.
type bookmarkStore struct {
	fs   afero.Fs
	path string
}

// Lines reads every bookmark in order.
func (b *bookmarkStore) Lines() ([]string, error) {
	fd, err := b.fs.Open(b.path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var out []string
	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	return out, scanner.Err()
}

// Append adds a bookmark to the end of the store, creating it if needed.
func (b *bookmarkStore) Append(line string) error {
	fd, err := b.fs.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(fd, line); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// Delete removes the bookmark at the zero based index by writing the
// remaining lines to a temporary file and renaming it over the store.
func (b *bookmarkStore) Delete(index int) error {
	lines, err := b.Lines()
	if err != nil {
		return err
	}
	if index >= len(lines) {
		return fmt.Errorf("%w: %d", errNoSuchBookmark, index)
	}

	tmpPath := b.path + ".tmp"
	contents := &strings.Builder{}
	for i, line := range lines {
		if i != index {
			fmt.Fprintln(contents, line)
		}
	}
	if err := afero.WriteFile(b.fs, tmpPath, []byte(contents.String()), 0644); err != nil {
		return err
	}
	if err := b.fs.Rename(tmpPath, b.path); err != nil {
		if rmErr := b.fs.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			return fmt.Errorf("%v (cleanup: %v)", err, rmErr)
		}
		return err
	}
	return nil
}

func init() {
	mustAddCmd(&CommandEntry{
		Name:  "bookmark",
		Use:   bookmarkUse,
		Short: bookmarkShort,
		Proc:  Bookmark,
	})
}
