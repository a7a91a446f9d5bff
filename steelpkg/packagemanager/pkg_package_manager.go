package packagemanager

import (
	"context"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// pkg expands these escapes itself, so they are passed through literally.
const pkgInventoryFormat = `%n\t%v\t%R`

// PkgPackageManager drives FreeBSD pkg(8).
type PkgPackageManager struct {
	CommandManager cm.CommandManager
	Files          fm.FileChecker
	Logger         logger.Logger
}

func (ppm *PkgPackageManager) Name() string {
	return "pkg"
}

func (ppm *PkgPackageManager) listNames(ctx context.Context) (cm.CommandResult, error) {
	if err := requireBinary(ctx, ppm.Files, "pkg", PkgPath); err != nil {
		return cm.CommandResult{}, err
	}
	return runChecked(ctx, ppm.CommandManager, ppm.Logger, cm.CommandConfig{
		Command: PkgPath,
		Args:    []string{"query", "%n"},
	}, "pkg command")
}

func (ppm *PkgPackageManager) Count(ctx context.Context) (*CommandOutput, error) {
	result, err := ppm.listNames(ctx)
	if err != nil {
		return nil, err
	}
	return &CommandOutput{ExitCode: result.ExitCode, Output: CountPkg(result.STDOUT)}, nil
}

func (ppm *PkgPackageManager) MD5(ctx context.Context) (*CommandOutput, error) {
	result, err := ppm.listNames(ctx)
	if err != nil {
		return nil, err
	}
	return &CommandOutput{ExitCode: result.ExitCode, Output: ChecksumPkg(result.STDOUT)}, nil
}

// Refresh runs `pkg update`.
func (ppm *PkgPackageManager) Refresh(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, ppm.Files, "pkg", PkgPath); err != nil {
		return nil, err
	}

	result, err := runChecked(ctx, ppm.CommandManager, ppm.Logger, cm.CommandConfig{
		Command: PkgPath,
		Args:    []string{"update"},
		Sudo:    true,
	}, "pkg update")
	if err != nil {
		return nil, err
	}

	return &OperationResult{
		ExitCode:       result.ExitCode,
		Output:         result.STDOUT,
		PackageManager: ppm.Name(),
	}, nil
}

// CheckUpdates compares the installed inventory with the remote catalogue.
// The rquery phase only runs when the local query succeeded.
func (ppm *PkgPackageManager) CheckUpdates(ctx context.Context) (*OperationResult, error) {
	if err := requireBinary(ctx, ppm.Files, "pkg", PkgPath); err != nil {
		return nil, err
	}

	query, err := runChecked(ctx, ppm.CommandManager, ppm.Logger, cm.CommandConfig{
		Command: PkgPath,
		Args:    []string{"query", "--all", pkgInventoryFormat},
	}, "pkg query")
	if err != nil {
		return nil, err
	}
	installed := ParsePkgInventory(query.STDOUT)

	rquery, err := runChecked(ctx, ppm.CommandManager, ppm.Logger, cm.CommandConfig{
		Command: PkgPath,
		Args:    []string{"rquery", "--all", "--no-repo-update", pkgInventoryFormat},
	}, "pkg rquery")
	if err != nil {
		return nil, err
	}
	available := ParsePkgInventory(rquery.STDOUT)

	outdated := PkgOutdated(installed, available)
	return &OperationResult{
		ExitCode:         rquery.ExitCode,
		Output:           FormatPkgVersion(installed, outdated),
		OutdatedPackages: outdated,
		PackageManager:   ppm.Name(),
	}, nil
}
