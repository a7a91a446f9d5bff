package filemanager

import (
	"context"

	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
)

// UnixFileManager probes paths through a CommandManager so remote hosts
// can be inspected the same way as the local one.
type UnixFileManager struct {
	CommandManager cm.CommandManager
}

func (ufm *UnixFileManager) Exists(ctx context.Context, path string) bool {
	result, err := ufm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "test",
		Args:    []string{"-e", path},
	})
	if err != nil {
		return false
	}
	return result.ExitCode == 0
}
