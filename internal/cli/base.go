// Package cli implements the shared command line entry point of the
// dronevision servers.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/larsks/dronevision/internal/version"
)

// Command names understood by Execute
const (
	CommandStart   = "start"
	CommandVersion = "version"
	CommandHelp    = "help"
)

// Configurable represents a type that can be configured via flags and config files
type Configurable interface {
	AddFlags(fs *pflag.FlagSet)
	LoadConfigWithFlagSet(fs *pflag.FlagSet) error
}

// CommandHandler represents a command that can be executed
type CommandHandler interface {
	Start(config Configurable) error
}

// BaseCLI provides common CLI functionality
type BaseCLI struct {
	stdout io.Writer
	stderr io.Writer
}

// NewBaseCLI creates a new BaseCLI instance
func NewBaseCLI(stdout, stderr io.Writer) *BaseCLI {
	return &BaseCLI{
		stdout: stdout,
		stderr: stderr,
	}
}

// SubCommandHandler runs commands that take positional arguments
type SubCommandHandler interface {
	AddFlags(fs *pflag.FlagSet)
	Execute(cmdArgs *CommandArgs) error
}

// CommandArgs represents parsed command line arguments
type CommandArgs struct {
	Command string
	Config  Configurable
	Args    []string
}

// ParseArgsStandard provides standard argument parsing for version/start commands
func (c *BaseCLI) ParseArgsStandard(args []string, configFactory func() Configurable) (*CommandArgs, error) {
	return c.ParseArgsStandardWithFlagSet(args, configFactory, pflag.CommandLine)
}

// ParseArgsStandardWithFlagSet provides standard argument parsing with a custom flag set
func (c *BaseCLI) ParseArgsStandardWithFlagSet(args []string, configFactory func() Configurable, fs *pflag.FlagSet) (*CommandArgs, error) {
	versionFlag := fs.Bool("version", false, "Show version and exit")

	cfg := configFactory()
	cfg.AddFlags(fs)

	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *versionFlag {
		return &CommandArgs{Command: CommandVersion, Config: cfg}, nil
	}

	if err := cfg.LoadConfigWithFlagSet(fs); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &CommandArgs{Command: CommandStart, Config: cfg}, nil
}

// Execute runs the specified command using standard patterns
func (c *BaseCLI) Execute(cmdArgs *CommandArgs, handler CommandHandler) error {
	switch cmdArgs.Command {
	case CommandVersion:
		version.ShowVersion(c.stdout)
		return nil
	case CommandStart:
		return handler.Start(cmdArgs.Config)
	default:
		return fmt.Errorf("unknown command: %s", cmdArgs.Command)
	}
}

// ParseArgsSubcommandWithFlagSet parses flags for a tool whose first
// positional argument names a command. The remaining positional arguments
// end up in CommandArgs.Args.
func (c *BaseCLI) ParseArgsSubcommandWithFlagSet(args []string, configFactory func() Configurable, handler SubCommandHandler, fs *pflag.FlagSet) (*CommandArgs, error) {
	versionFlag := fs.Bool("version", false, "Show version and exit")
	helpFlag := fs.BoolP("help", "h", false, "Show help")

	cfg := configFactory()
	cfg.AddFlags(fs)
	handler.AddFlags(fs)

	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	positional := fs.Args()
	switch {
	case *versionFlag:
		return &CommandArgs{Command: CommandVersion, Config: cfg, Args: []string{CommandVersion}}, nil
	case *helpFlag || len(positional) == 0:
		return &CommandArgs{Command: CommandHelp, Config: cfg}, nil
	}

	if err := cfg.LoadConfigWithFlagSet(fs); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &CommandArgs{Command: positional[0], Config: cfg, Args: positional}, nil
}

// SubCommandMain provides a main function for command line clients
func SubCommandMain(configFactory func() Configurable, handler SubCommandHandler) {
	cli := NewBaseCLI(os.Stdout, os.Stderr)

	cmdArgs, err := cli.ParseArgsSubcommandWithFlagSet(os.Args[1:], configFactory, handler, pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err) //nolint:errcheck
		os.Exit(2)
	}

	if err := handler.Execute(cmdArgs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err) //nolint:errcheck
		os.Exit(1)
	}
}

// StandardMain provides a complete main function implementation for simple services
func StandardMain(configFactory func() Configurable, handler CommandHandler) {
	cli := NewBaseCLI(os.Stdout, os.Stderr)

	cmdArgs, err := cli.ParseArgsStandard(os.Args[1:], configFactory)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	if err := cli.Execute(cmdArgs, handler); err != nil {
		log.Fatalf("error: %v", err)
	}
}
