package packagemanager

import (
	"context"
	"fmt"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// PackageManager is implemented by every backend. An operation a backend
// has no implementation for returns a NoCompatibleBackendError.
type PackageManager interface {
	Name() string
	Count(ctx context.Context) (*CommandOutput, error)
	MD5(ctx context.Context) (*CommandOutput, error)
	Refresh(ctx context.Context) (*OperationResult, error)
	CheckUpdates(ctx context.Context) (*OperationResult, error)
}

var (
	_ PackageManager = (*YumPackageManager)(nil)
	_ PackageManager = (*AptPackageManager)(nil)
	_ PackageManager = (*ZypperPackageManager)(nil)
	_ PackageManager = (*PkgPackageManager)(nil)
)

func requireBinary(ctx context.Context, files fm.FileChecker, name, path string) error {
	if !files.Exists(ctx, path) {
		return &BinaryNotFoundError{Name: name, Path: path}
	}
	return nil
}

func run(ctx context.Context, cmdm cm.CommandManager, log logger.Logger, config cm.CommandConfig) (cm.CommandResult, error) {
	result, err := cmdm.Run(ctx, config)
	if err != nil {
		logger.OrNop(log).Error("Command could not be run", "command", config.String(), "error", err)
		return result, fmt.Errorf("running %s: %w", config.String(), err)
	}
	logger.OrNop(log).Debug("Command finished", "command", config.String(), "exit_code", result.ExitCode)
	return result, nil
}

// runChecked runs config and turns a nonzero exit into a CommandFailedError
// labelled with label.
func runChecked(ctx context.Context, cmdm cm.CommandManager, log logger.Logger, config cm.CommandConfig, label string) (cm.CommandResult, error) {
	result, err := run(ctx, cmdm, log, config)
	if err != nil {
		return result, err
	}
	if result.ExitCode != 0 {
		return result, &CommandFailedError{Command: label, ExitCode: result.ExitCode}
	}
	return result, nil
}
