package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	remindmeUse   = "remindme HH:MM MESSAGE... | remindme remove all"
	remindmeShort = "Schedule a daily desktop notification through crontab."
)

// cronNotify is the job run at the scheduled time, followed by the message.
const cronNotify = "* * *  XDG_RUNTIME_DIR=/run/user/$(id -u) notify-send"

// Remindme appends a notification to the reminder store and installs the
// store with crontab.
func Remindme(p *Proc) int {
	cmd := &SimpleCommand{
		Use:   remindmeUse,
		Short: remindmeShort,
	}

	opts := cmd.Flags()

	return cmd.Run(p, func() int {
		args := opts.Args()
		if len(args) < 2 {
			fmt.Fprintln(p.Stdout, "Not enough arguments.")
			return 1
		}

		cfg := p.Config
		storePath, err := cfg.RealPath(cfg.RemindersPath)
		if err != nil {
			fmt.Fprintln(p.Stdout, "Error reaching file.")
			return 1
		}

		if args[0] == "remove" && args[1] == "all" {
			if err := cfg.Fs().Remove(cfg.RemindersPath); err != nil && !os.IsNotExist(err) {
				fmt.Fprintln(p.Stdout, "Error reaching file.")
				return 1
			}
			return p.Exec([]string{"crontab", "-r"})
		}

		hours, minutes, ok := parseClock(args[0])
		if !ok {
			fmt.Fprintln(p.Stdout, "Invalid format, please use format such as 14:30.")
			return 1
		}

		fd, err := cfg.Fs().OpenFile(cfg.RemindersPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(p.Stdout, "Error reaching file.")
			return 1
		}
		_, err = fmt.Fprintln(fd, cronEntry(hours, minutes, args[1:]))
		if closeErr := fd.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			fmt.Fprintln(p.Stdout, "Error reaching file.")
			return 1
		}

		return p.Exec([]string{"crontab", storePath})
	})
}

// parseClock splits a 24 hour HH:MM time.
func parseClock(clock string) (hours, minutes string, ok bool) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return "", "", false
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", "", false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", "", false
	}

	return parts[0], parts[1], true
}

// cronEntry formats a crontab line running the notification every day.
func cronEntry(hours, minutes string, message []string) string {
	return fmt.Sprintf("%s %s %s %s", minutes, hours, cronNotify, strings.Join(message, " "))
}

func init() {
	mustAddCmd(&CommandEntry{
		Name:  "remindme",
		Use:   remindmeUse,
		Short: remindmeShort,
		Proc:  Remindme,
	})
}
