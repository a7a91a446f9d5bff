// Package provider implements package resource providers that drive the
// host's package manager through a CommandManager.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	pa "github.com/steelcutops/steelpkg/steelpkg/packageaction"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
)

// ActionFailedError reports a package manager command that exited nonzero.
type ActionFailedError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *ActionFailedError) Error() string {
	msg := fmt.Sprintf("%s failed, exit code was %d", e.Command, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// New returns the provider for backend. BackendNone yields a
// *pm.NoCompatibleBackendError.
func New(backend pm.Backend, spec pa.Spec, runner cm.CommandManager, log logger.Logger) (pa.Provider, error) {
	b := base{Spec: spec, CommandManager: runner, Logger: log}
	switch backend {
	case pm.BackendDPKG:
		return &AptProvider{base: b}, nil
	case pm.BackendRPM:
		return &YumProvider{base: b}, nil
	case pm.BackendZypper:
		return &ZypperProvider{base: b}, nil
	case pm.BackendPkg:
		return &PkgProvider{base: b}, nil
	}
	return nil, &pm.NoCompatibleBackendError{Operation: "manage package " + spec.Name}
}

// base holds what every provider shares: the package, the runner and the
// cached properties.
type base struct {
	Spec           pa.Spec
	CommandManager cm.CommandManager
	Logger         logger.Logger

	props map[string]any
}

func (b *base) version() (string, bool) {
	v, ok := b.Spec.Options["ensure"]
	if !ok || v == "" || v == "present" || v == "installed" || v == "latest" {
		return "", false
	}
	return v, true
}

// properties returns the cached properties, querying them when the cache
// is empty.
func (b *base) properties(ctx context.Context, query func(context.Context) (string, error), provider string) (map[string]any, error) {
	if b.props != nil {
		return b.props, nil
	}
	ensure, err := query(ctx)
	if err != nil {
		return nil, err
	}
	b.props = map[string]any{
		"name":     b.Spec.Name,
		"ensure":   ensure,
		"provider": provider,
	}
	return b.props, nil
}

func (b *base) query(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	result, err := b.CommandManager.Run(ctx, config)
	if err != nil {
		return result, fmt.Errorf("running %s: %w", config.String(), err)
	}
	logger.OrNop(b.Logger).Debug("Queried package", "command", config.String(), "exit_code", result.ExitCode)
	return result, nil
}

// action runs a state changing command with sudo and returns its stdout.
func (b *base) action(ctx context.Context, config cm.CommandConfig) (string, error) {
	config.Sudo = true
	log := logger.OrNop(b.Logger).With("package", b.Spec.Name, "command", config.String())

	result, err := b.CommandManager.Run(ctx, config)
	if err != nil {
		log.Error("Package command could not be run", "error", err)
		return "", fmt.Errorf("running %s: %w", config.String(), err)
	}
	if result.ExitCode != 0 {
		log.Warn("Package command failed", "exit_code", result.ExitCode)
		return "", &ActionFailedError{Command: config.String(), ExitCode: result.ExitCode, Output: result.STDOUT + result.STDERR}
	}
	log.Info("Package command finished")
	return result.STDOUT, nil
}

func (b *base) Flush(context.Context) error {
	b.props = nil
	return nil
}
