package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regset/internal/launcher"
	"github.com/joshuapare/regset/internal/logger"
	"github.com/joshuapare/regset/pkg/regset"
)

var (
	scriptPath      string
	scriptInterp    string
	scriptPolicy    string
	scriptDryRun    bool
	scriptSkipCheck bool
)

func newRunScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-script <path> <name> <value>",
		Short: "Hand a registry write to a PowerShell script",
		Long: `The run-script command starts a PowerShell script with the write's
inputs as -Path, -Name, -Value and -Type parameters and waits for it.
The inputs are checked locally first unless --no-check is given.

Example:
  regset run-script "HKLM\Software\MyApp" Enabled 1 --type DWord --script C:\tools\set.ps1
  regset run-script "HKCU\Software\MyApp" Name Test --script set.ps1 --dry-run`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, args)
		},
	}
	cmd.Flags().StringVarP(&setType, "type", "t", "String", "Value type (String, ExpandString, Binary, DWord, MultiString, QWord)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to the .ps1 script")
	cmd.Flags().StringVar(&scriptInterp, "interpreter", launcher.DefaultInterpreter, "Interpreter used to run the script")
	cmd.Flags().StringVar(&scriptPolicy, "execution-policy", launcher.DefaultExecutionPolicy, "PowerShell execution policy")
	cmd.Flags().BoolVar(&scriptDryRun, "dry-run", false, "Print the command line without running it")
	cmd.Flags().BoolVar(&scriptSkipCheck, "no-check", false, "Skip local validation of path, type and value")
	return cmd
}

func runScript(cmd *cobra.Command, args []string) error {
	req := launcher.Request{
		Path:      args[0],
		ValueName: args[1],
		Data:      args[2],
		Type:      cfg.DefaultType,
	}

	if scriptSkipCheck {
		logger.Warn("local validation skipped", "path", req.Path, "type", req.Type)
	} else if err := regset.Validate(regset.Request(req)); err != nil {
		return err
	}

	l := &launcher.Launcher{
		Interpreter:     cfg.Launcher.Interpreter,
		Script:          cfg.Launcher.Script,
		ExecutionPolicy: cfg.Launcher.ExecutionPolicy,
	}

	line, err := l.CommandLine(req)
	if err != nil {
		return err
	}
	if scriptDryRun {
		if jsonOut {
			return printJSON(map[string]interface{}{"command": line, "dry_run": true})
		}
		printInfo("%s\n", line)
		return nil
	}

	printVerbose("Running: %s\n", line)
	if err := l.Run(cmd.Context(), req); err != nil {
		return fmt.Errorf("%s: %w", line, err)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{"command": line, "success": true})
	}
	printSuccess("Script %s finished\n", l.Script)
	return nil
}
