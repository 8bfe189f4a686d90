package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/dynmod/internal/app"
	"github.com/vk/dynmod/internal/resolver"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("dynmod", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
dynmod - A dynamic module-loading runtime.

Usage:
  dynmod [options] MODULE_ID [MODULE_ID...]

Arguments:
  MODULE_ID
    Logical module identifier to resolve and load, e.g. "lib/foo/bar".

Options:
`)
		flagSet.PrintDefaults()
	}

	registryFlag := flagSet.String("registry", "registry", "Comma-separated paths to package registry .hcl files or directories.")
	rootFlag := flagSet.String("root", "", "Root directory resolved locations are joined under.")
	sourceExtFlag := flagSet.String("source-ext", resolver.DefaultSourceExt, "Extension appended to source-mode locations.")
	stripCommentsFlag := flagSet.Bool("strip-comments", false, "Strip full-line comments from module source before invoking it.")
	resolveOnlyFlag := flagSet.Bool("resolve-only", false, "Print resolved locations without loading the modules.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

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
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	var registryPaths []string
	for _, p := range strings.Split(*registryFlag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			registryPaths = append(registryPaths, p)
		}
	}
	if len(registryPaths) == 0 {
		return nil, false, &ExitError{Code: 2, Message: "at least one registry path is required"}
	}

	return &app.Config{
		RegistryPaths: registryPaths,
		Root:          *rootFlag,
		SourceExt:     *sourceExtFlag,
		StripComments: *stripCommentsFlag,
		ResolveOnly:   *resolveOnlyFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		Modules:       flagSet.Args(),
	}, false, nil
}
