package packagemanager

import (
	"context"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// ZypperPackageManager drives SUSE hosts. It has no inventory count or
// digest.
type ZypperPackageManager struct {
	CommandManager cm.CommandManager
	Files          fm.FileChecker
	Logger         logger.Logger
}

func (zpm *ZypperPackageManager) Name() string {
	return "zypper"
}

func (zpm *ZypperPackageManager) Count(context.Context) (*CommandOutput, error) {
	return nil, &NoCompatibleBackendError{Operation: opCount}
}

func (zpm *ZypperPackageManager) MD5(context.Context) (*CommandOutput, error) {
	return nil, &NoCompatibleBackendError{Operation: opMD5}
}

// Refresh runs `zypper refresh`.
func (zpm *ZypperPackageManager) Refresh(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, zpm.Files, "zypper", ZypperPath); err != nil {
		return nil, err
	}

	result, err := runChecked(ctx, zpm.CommandManager, zpm.Logger, cm.CommandConfig{
		Command: ZypperPath,
		Args:    []string{"refresh"},
		Sudo:    true,
	}, "zypper refresh")
	if err != nil {
		return nil, err
	}

	return &OperationResult{
		ExitCode:       result.ExitCode,
		Output:         result.STDOUT,
		PackageManager: zpm.Name(),
	}, nil
}

func (zpm *ZypperPackageManager) CheckUpdates(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, zpm.Files, "zypper", ZypperPath); err != nil {
		return nil, err
	}

	result, err := run(ctx, zpm.CommandManager, zpm.Logger, cm.CommandConfig{
		Command: ZypperPath,
		Args:    []string{"-q", "list-updates"},
	})
	if err != nil {
		return nil, err
	}

	return &OperationResult{
		ExitCode:         result.ExitCode,
		Output:           result.STDOUT,
		OutdatedPackages: ParseZypperListUpdates(result.STDOUT),
		PackageManager:   zpm.Name(),
	}, nil
}
