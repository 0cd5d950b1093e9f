// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates CLI flags into the application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is the parsed process-level configuration: the global flags plus
// the selected subcommand and its remaining arguments.
type Options struct {
	ConfigPath string
	LogFormat  string
	LogLevel   string
	LogFile    string
	Command    string
	Args       []string
}

const usageText = `ssp-airplane - SysML-to-SSP digital twin pipeline.

Usage:
  ssp-airplane [options] <command> [command options]

Commands:
  save-arch       Parse the architecture and write its JSON snapshot.
  gen-interfaces  Emit the Modelica GeneratedInterfaces package.
  gen-modeldesc   Generate FMI model descriptions and stub FMUs.
  gen-ssd         Generate the SSP system structure description.
  gen-ssv         Generate the architectural-defaults parameter set.
  gen-terminals   Generate the FMI terminals definition.
  build-fmus      Export FMUs through the OpenModelica compiler.
  package-ssp     Bundle the SSD and FMUs into an .ssp archive.
  gen-scenario    Generate a random waypoint flight scenario.
  simulate        Simulate a scenario against a packaged SSP.
  verify          Cross-check architecture, models, and FMUs.
  report          Render scenario results into an Excel workbook.

Options:
`

// Parse processes the global command line. It returns the populated Options,
// a boolean indicating the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("ssp-airplane", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the pipeline HCL config file.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFileFlag := flagSet.String("log-file", "", "Also write logs to this file, with rotation.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &Options{
		ConfigPath: *configFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		LogFile:    *logFileFlag,
		Command:    flagSet.Arg(0),
		Args:       flagSet.Args()[1:],
	}, false, nil
}
