package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"

	"quoth/engine-go/pkg/driver"
)

const cliToolVersion = "quoth-cli 0.0.0-dev"

const defaultConfigPath = "engine.yml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runProgram(args[1:])
	case "check":
		return checkProgram(args[1:])
	default:
		return runProgram(args)
	}
}

func runProgram(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "quoth run requires exactly one program file")
		return 1
	}
	cfg, program, ok := loadInputs(args[0])
	if !ok {
		return 1
	}
	result, err := driver.Run(cfg, program)
	if err != nil {
		pterm.Error.Println(err.Error())
		return 1
	}
	pterm.Info.Printf("%s => %s\n", program.Name, result)
	return 0
}

func checkProgram(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "quoth check requires exactly one program file")
		return 1
	}
	cfg, program, ok := loadInputs(args[0])
	if !ok {
		return 1
	}
	if err := driver.Check(cfg, program); err != nil {
		pterm.Error.Println(err.Error())
		return 1
	}
	pterm.Info.Printf("%s: %d expression(s) ok\n", program.Name, len(program.Expressions))
	return 0
}

// loadInputs reads engine.yml next to the working directory (falling back
// to defaults when absent) plus the program file.
func loadInputs(programPath string) (*driver.Config, *driver.Program, bool) {
	cfg, err := driver.LoadConfig(defaultConfigPath)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		cfg = driver.DefaultConfig()
	default:
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return nil, nil, false
	}
	applyTraceLevel(cfg.TraceLevel)

	program, err := driver.LoadProgram(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load program: %v\n", err)
		return nil, nil, false
	}
	return cfg, program, true
}

func applyTraceLevel(level string) {
	for _, selector := range []string{"quoth.interp", "quoth.driver"} {
		tracing.Select(selector).SetTraceLevel(traceLevel(level))
	}
}

func traceLevel(level string) tracing.TraceLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return tracing.LevelDebug
	case "info":
		return tracing.LevelInfo
	default:
		return tracing.LevelError
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  quoth run <file.qx.yml>")
	fmt.Fprintln(os.Stderr, "  quoth check <file.qx.yml>")
	fmt.Fprintln(os.Stderr, "  quoth version")
}
