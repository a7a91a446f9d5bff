package packagemanager

import (
	"context"
	"fmt"

	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
)

// FakeCommandManager answers commands by their rendered command line and
// records every call in order.
type FakeCommandManager struct {
	Results map[string]cm.CommandResult
	Errors  map[string]error
	Calls   []string
	// Sudo records the Sudo flag of every command that ran.
	Sudo map[string]bool
}

func newFakeCommandManager() *FakeCommandManager {
	return &FakeCommandManager{
		Results: map[string]cm.CommandResult{},
		Errors:  map[string]error{},
		Sudo:    map[string]bool{},
	}
}

func (f *FakeCommandManager) On(command string, exitCode int, stdout string) *FakeCommandManager {
	f.Results[command] = cm.CommandResult{Command: command, ExitCode: exitCode, STDOUT: stdout}
	return f
}

func (f *FakeCommandManager) RunLocal(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return f.Run(ctx, config)
}

func (f *FakeCommandManager) RunRemote(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return f.Run(ctx, config)
}

func (f *FakeCommandManager) Run(_ context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	command := config.String()
	f.Calls = append(f.Calls, command)
	f.Sudo[command] = config.Sudo
	if err, ok := f.Errors[command]; ok {
		return cm.CommandResult{}, err
	}
	result, ok := f.Results[command]
	if !ok {
		return cm.CommandResult{}, fmt.Errorf("unexpected command %q", command)
	}
	return result, nil
}

// FakeFiles reports the listed paths as present.
type FakeFiles map[string]bool

func (f FakeFiles) Exists(_ context.Context, path string) bool {
	return f[path]
}

func files(paths ...string) FakeFiles {
	f := FakeFiles{}
	for _, p := range paths {
		f[p] = true
	}
	return f
}
