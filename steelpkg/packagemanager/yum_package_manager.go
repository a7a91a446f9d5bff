package packagemanager

import (
	"context"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// YumCleanModes are the modes accepted by `yum clean`.
var YumCleanModes = []string{"all", "headers", "packages", "metadata", "dbcache", "plugins", "expire-cache"}

// YumPackageManager drives RPM based hosts: rpm for the inventory, yum for
// updates.
type YumPackageManager struct {
	CommandManager cm.CommandManager
	Files          fm.FileChecker
	Logger         logger.Logger
}

func (ypm *YumPackageManager) Name() string {
	return "yum"
}

func (ypm *YumPackageManager) listInstalled(ctx context.Context) (cm.CommandResult, error) {
	if err := requireBinary(ctx, ypm.Files, "rpm", RPMPath); err != nil {
		return cm.CommandResult{}, err
	}
	return runChecked(ctx, ypm.CommandManager, ypm.Logger, cm.CommandConfig{
		Command: RPMPath,
		Args:    []string{"-qa"},
	}, "rpm command")
}

// Count returns the number of installed packages.
func (ypm *YumPackageManager) Count(ctx context.Context) (*CommandOutput, error) {
	result, err := ypm.listInstalled(ctx)
	if err != nil {
		return nil, err
	}
	return &CommandOutput{ExitCode: result.ExitCode, Output: CountRPM(result.STDOUT)}, nil
}

// MD5 returns a digest of the installed package list.
func (ypm *YumPackageManager) MD5(ctx context.Context) (*CommandOutput, error) {
	result, err := ypm.listInstalled(ctx)
	if err != nil {
		return nil, err
	}
	return &CommandOutput{ExitCode: result.ExitCode, Output: ChecksumRPM(result.STDOUT)}, nil
}

// Clean runs `yum clean <mode>`.
func (ypm *YumPackageManager) Clean(ctx context.Context, mode string) (*CommandOutput, error) {
	if err := requireBinary(ctx, ypm.Files, "yum", YumPath); err != nil {
		return nil, err
	}
	if !isYumCleanMode(mode) {
		return nil, &UnsupportedModeError{Mode: mode}
	}

	result, err := runChecked(ctx, ypm.CommandManager, ypm.Logger, cm.CommandConfig{
		Command: YumPath,
		Args:    []string{"clean", mode},
		Sudo:    true,
	}, "yum clean")
	if err != nil {
		return nil, err
	}
	return &CommandOutput{ExitCode: result.ExitCode, Output: result.STDOUT}, nil
}

// Refresh expires the metadata cache and reports the outstanding updates.
func (ypm *YumPackageManager) Refresh(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, ypm.Files, "yum", YumPath); err != nil {
		return nil, err
	}
	if _, err := ypm.Clean(ctx, "metadata"); err != nil {
		return nil, err
	}
	return ypm.CheckUpdates(ctx)
}

// CheckUpdates lists available updates. yum exits 100 when updates are
// pending, so the exit code is reported rather than treated as a failure.
func (ypm *YumPackageManager) CheckUpdates(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, ypm.Files, "yum", YumPath); err != nil {
		return nil, err
	}

	result, err := run(ctx, ypm.CommandManager, ypm.Logger, cm.CommandConfig{
		Command: YumPath,
		Args:    []string{"-q", "check-update"},
	})
	if err != nil {
		return nil, err
	}

	return &OperationResult{
		ExitCode:         result.ExitCode,
		Output:           result.STDOUT,
		OutdatedPackages: ParseYumCheckUpdate(result.STDOUT),
		PackageManager:   ypm.Name(),
	}, nil
}

func isYumCleanMode(mode string) bool {
	for _, m := range YumCleanModes {
		if m == mode {
			return true
		}
	}
	return false
}
