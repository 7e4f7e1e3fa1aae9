package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/josephlewis42/shellington/core"
	"github.com/josephlewis42/shellington/core/config"
	"github.com/josephlewis42/shellington/core/logger"
	"github.com/josephlewis42/shellington/core/terminal"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	commandLine string
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd runs the interactive shell when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shellington",
	Short: "A small interactive shell",
	Long: `An interactive shell running programs from a single bin directory
with pipes, redirects, background jobs and a handful of builtins.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		diagnostics := log.New(cmd.ErrOrStderr(), "", 0)
		cfg, err := config.LoadOrDefault(cfgPath, diagnostics)
		if err != nil {
			return err
		}

		events := logger.NewNopLogger().Sessionless()
		if cfg.EventLogPath != "" {
			logFd, err := cfg.OpenEventLog()
			if err != nil {
				return err
			}
			defer logFd.Close()
			events = logger.NewJsonLinesLogRecorder(logFd).NewSession()
		}

		streams := core.Streams{
			Stdin:  os.Stdin,
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		}

		if cmd.Flags().Changed("command") {
			sh := core.NewShell(cfg, streams, nil, events)
			sh.SetLogger(diagnostics)
			cmd.SilenceErrors = true
			return exitStatus(sh.RunLine(context.Background(), commandLine))
		}

		sh := core.NewShell(cfg, streams, terminal.New(os.Stdin.Fd()), events)
		sh.SetLogger(diagnostics)
		sh.Run(context.Background())
		return nil
	},
}

// errCommandFailed is returned when the line given with -c didn't succeed.
var errCommandFailed = errors.New("command failed")

// exitStatus maps the status of a -c line to the error returned by the root
// command. exit counts as success.
func exitStatus(status core.Status) error {
	switch status {
	case core.StatusSuccess, core.StatusExit:
		return nil
	default:
		return errCommandFailed
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if errors.Is(err, errCommandFailed) {
		os.Exit(int(core.StatusUnknown))
	}
	cobra.CheckErr(err)
}

func init() {
	defaultDir, err := config.DefaultDir()
	if err != nil {
		defaultDir = "."
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultDir, "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single command line and exit")
}
