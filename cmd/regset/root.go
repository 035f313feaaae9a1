package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joshuapare/regset/internal/config"
	"github.com/joshuapare/regset/internal/keywriter"
	"github.com/joshuapare/regset/internal/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	noColor  bool
	cfgFile  string
	logDir   string
	logLevel string

	// cfg is the effective configuration, loaded before every command.
	cfg *config.Config

	logCloser io.Closer

	// newRegistry selects the registry backend; tests swap in keywriter.NewMemory.
	newRegistry = keywriter.Default
)

// flagBindings maps config keys to the flags that override them.
// Flags missing from a command are skipped.
var flagBindings = map[string]string{
	"output.json":               "json",
	"output.no_color":           "no-color",
	"log.dir":                   "log-dir",
	"log.level":                 "log-level",
	"default_type":              "type",
	"emit.encoding":             "encoding",
	"emit.bom":                  "bom",
	"launcher.script":           "script",
	"launcher.interpreter":      "interpreter",
	"launcher.execution_policy": "execution-policy",
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regset",
		Short: "Set a Windows registry value from the command line",
		Long: `regset writes a single Windows Registry value given a key path, a value
name, the value's text form and a type name. Missing keys along the path are
created. The write can also be rendered as a .reg file or handed to an
external PowerShell script.`,
		Version:            version,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE: loadConfig,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (logs to stderr)")
	cmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.regset.yaml)")
	cmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for log files (default ~/.regset/logs)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	cmd.AddCommand(newSetCmd(), newRunScriptCmd(), newTypesCmd(), newVersionCmd())
	return cmd
}

// loadConfig resolves the effective configuration and initializes logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	jsonOut = cfg.Output.JSON
	noColor = cfg.Output.NoColor
	if noColor {
		color.NoColor = true
	}

	closer, err := logger.Init(logger.Options{
		Enabled: cfg.Log.Enabled || verbose || cfg.Log.Dir != "",
		LogDir:  cfg.Log.Dir,
		Level:   logger.ParseLevel(cfg.Log.Level),
		Stderr:  verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logCloser = closer
	logger.Debug("configuration loaded", "file", v.ConfigFileUsed(), "default_type", cfg.DefaultType,
		"log_level", cfg.Log.Level, "json", jsonOut)
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagBindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}
	return nil
}

// closeLog releases the log file opened by loadConfig, if any.
func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// run executes the command line in args. The log file is closed whether or
// not the command succeeds.
func run(ctx context.Context, args []string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		logger.Error("command failed", "args", args, "error", err)
	}
	if cerr := closeLog(); err == nil {
		err = cerr
	}
	return err
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printSuccess prints a green status line if not in quiet mode
func printSuccess(format string, args ...interface{}) {
	if !quiet {
		color.New(color.FgGreen).Fprintf(os.Stdout, "✓ "+format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
