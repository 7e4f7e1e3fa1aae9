// Package logger is a standardized event logging framework for the shell. It
// records what was executed, what couldn't be found, and internal failures as
// newline delimited JSON.
package logger
