package packagemanager

import (
	"context"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// AptPackageManager drives Debian based hosts: dpkg for the inventory,
// apt-get for updates.
type AptPackageManager struct {
	CommandManager cm.CommandManager
	Files          fm.FileChecker
	Logger         logger.Logger
}

func (apm *AptPackageManager) Name() string {
	return "apt"
}

func (apm *AptPackageManager) listInstalled(ctx context.Context) (cm.CommandResult, error) {
	if err := requireBinary(ctx, apm.Files, "dpkg", DpkgPath); err != nil {
		return cm.CommandResult{}, err
	}
	return runChecked(ctx, apm.CommandManager, apm.Logger, cm.CommandConfig{
		Command: DpkgPath,
		Args:    []string{"--list"},
	}, "dpkg command")
}

func (apm *AptPackageManager) Count(ctx context.Context) (*CommandOutput, error) {
	result, err := apm.listInstalled(ctx)
	if err != nil {
		return nil, err
	}
	return &CommandOutput{ExitCode: result.ExitCode, Output: CountDPKG(result.STDOUT)}, nil
}

func (apm *AptPackageManager) MD5(ctx context.Context) (*CommandOutput, error) {
	result, err := apm.listInstalled(ctx)
	if err != nil {
		return nil, err
	}
	return &CommandOutput{ExitCode: result.ExitCode, Output: ChecksumDPKG(result.STDOUT)}, nil
}

// Refresh updates the package index and then reports the state of the
// system as CheckUpdates sees it.
func (apm *AptPackageManager) Refresh(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, apm.Files, "apt-get", AptGetPath); err != nil {
		return nil, err
	}

	_, err := runChecked(ctx, apm.CommandManager, apm.Logger, cm.CommandConfig{
		Command: AptGetPath,
		Args:    []string{"update"},
		Sudo:    true,
	}, "apt-get update")
	if err != nil {
		return nil, err
	}

	return apm.CheckUpdates(ctx)
}

func (apm *AptPackageManager) CheckUpdates(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, apm.Files, "apt-get", AptGetPath); err != nil {
		return nil, err
	}

	result, err := runChecked(ctx, apm.CommandManager, apm.Logger, cm.CommandConfig{
		Command: AptGetPath,
		Args:    []string{"--simulate", "dist-upgrade"},
	}, "apt check-update")
	if err != nil {
		return nil, err
	}

	return &OperationResult{
		ExitCode:         result.ExitCode,
		Output:           result.STDOUT,
		OutdatedPackages: ParseAptSimulate(result.STDOUT),
		PackageManager:   apm.Name(),
	}, nil
}
