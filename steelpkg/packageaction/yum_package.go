package packageaction

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// DefaultYumHelper is where the yum helper is installed by default.
const DefaultYumHelper = "/usr/libexec/steelpkg/yumHelper.py"

// YumPackage delegates every action to an external helper program invoked
// as `<helper> --<action> <name>`. The helper prints a structured document
// (JSON or YAML) which becomes Result.Data.
type YumPackage struct {
	Spec           Spec
	Helper         string
	CommandManager cm.CommandManager
	Files          fm.FileChecker
	Logger         logger.Logger
}

var (
	_ Installer    = (*YumPackage)(nil)
	_ Updater      = (*YumPackage)(nil)
	_ Uninstaller  = (*YumPackage)(nil)
	_ StatusReader = (*YumPackage)(nil)
	_ Searcher     = (*YumPackage)(nil)
)

func (y *YumPackage) Install(ctx context.Context) (*Result, error) {
	return y.callAction(ctx, "install")
}

func (y *YumPackage) Update(ctx context.Context) (*Result, error) {
	return y.callAction(ctx, "update")
}

// Uninstall maps to the helper's remove action.
func (y *YumPackage) Uninstall(ctx context.Context) (*Result, error) {
	return y.callAction(ctx, "remove")
}

func (y *YumPackage) Status(ctx context.Context) (*Result, error) {
	return y.callAction(ctx, "status")
}

func (y *YumPackage) Search(ctx context.Context) (*Result, error) {
	return y.callAction(ctx, "search")
}

func (y *YumPackage) helper() string {
	if y.Helper == "" {
		return DefaultYumHelper
	}
	return y.Helper
}

func (y *YumPackage) callAction(ctx context.Context, action string) (*Result, error) {
	helper := y.helper()
	if !y.Files.Exists(ctx, helper) {
		return nil, &HelperNotFoundError{Path: helper}
	}

	config := cm.CommandConfig{
		Command: helper,
		Args:    []string{"--" + action, y.Spec.Name},
		Sudo:    action != "status" && action != "search",
	}
	log := logger.OrNop(y.Logger).With("command", config.String())

	result, err := y.CommandManager.Run(ctx, config)
	if err != nil {
		log.Error("Package helper could not be run", "error", err)
		return nil, fmt.Errorf("running %s: %w", config.String(), err)
	}
	log.Debug("Package helper finished", "exit_code", result.ExitCode)
	if result.ExitCode != 0 {
		return nil, &HelperFailedError{Action: action, ExitCode: result.ExitCode, Stderr: result.STDERR}
	}

	data := map[string]any{}
	if err := yaml.Unmarshal([]byte(result.STDOUT), &data); err != nil {
		return nil, fmt.Errorf("decoding %s output: %w", action, err)
	}
	return &Result{Data: data}, nil
}
