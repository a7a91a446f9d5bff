package commandmanager

import (
	"context"
	"strings"
	"time"
)

// CommandConfig describes a single command invocation.
type CommandConfig struct {
	Command string
	Args    []string
	Sudo    bool
	Env     []string
}

// String renders the command line. Arguments containing shell
// metacharacters are double quoted, so the result can be handed to a
// remote shell as-is.
func (c CommandConfig) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Command)
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	STDOUT    string
	STDERR    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// CommandManager provides methods to execute commands, both locally and remotely.
//
// A command that runs and exits nonzero is not an error: the exit code is
// reported in the CommandResult. An error means the command could not be
// run at all.
type CommandManager interface {
	// RunLocal executes a command on the local system.
	RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error)

	// RunRemote executes a command on a remote system via SSH.
	RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error)

	// Run picks local or remote execution based on the target host.
	Run(ctx context.Context, config CommandConfig) (CommandResult, error)
}

// Credentials used to reach a remote host and to elevate with sudo.
type Credentials struct {
	User          string
	Password      string
	KeyPassphrase string
	SudoPassword  string
}

const shellSpecial = " \t\n\\'\"`$&|;<>()*?[]{}~#!%"

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if !strings.ContainsAny(arg, shellSpecial) {
		return arg
	}
	if !strings.ContainsAny(arg, `'\`) {
		return "'" + arg + "'"
	}
	// Backslashes are left alone so escapes meant for the invoked tool
	// (pkg's "%n\t%v") reach it unchanged.
	r := strings.NewReplacer(`"`, `\"`, "`", "\\`", "$", `\$`)
	return `"` + r.Replace(arg) + `"`
}
