package packageaction

import (
	"context"
	"fmt"
)

// Provider is a declarative package resource: it reports the current
// properties of one package and can move it to another state.
//
// Properties must include an "ensure" key holding "absent", "purged" or
// the installed version.
type Provider interface {
	Properties(ctx context.Context) (map[string]any, error)
	Install(ctx context.Context) (string, error)
	Update(ctx context.Context) (string, error)
	Uninstall(ctx context.Context) (string, error)
	Purge(ctx context.Context) (string, error)
	// Flush persists a pending change and drops cached state.
	Flush(ctx context.Context) error
}

const (
	msgAlreadyInstalled = "Package is already installed"
	msgNotPresent       = "Package is not present on the system"
)

// ProviderPackage operates on one package through a Provider. Actions
// that would not change anything return the current status with a
// message instead of calling the provider.
type ProviderPackage struct {
	Spec     Spec
	Provider Provider
}

var (
	_ Installer    = (*ProviderPackage)(nil)
	_ Updater      = (*ProviderPackage)(nil)
	_ Uninstaller  = (*ProviderPackage)(nil)
	_ Purger       = (*ProviderPackage)(nil)
	_ StatusReader = (*ProviderPackage)(nil)
)

func NewProviderPackage(spec Spec, provider Provider) *ProviderPackage {
	return &ProviderPackage{Spec: spec, Provider: provider}
}

func (p *ProviderPackage) Install(ctx context.Context) (*Result, error) {
	ensure, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if !isAbsent(ensure) && p.noVersionRequested() {
		return p.noop(ctx, msgAlreadyInstalled)
	}
	return p.callAction(ctx, ActionInstall, p.Provider.Install)
}

func (p *ProviderPackage) Update(ctx context.Context) (*Result, error) {
	ensure, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if isAbsent(ensure) {
		return p.noop(ctx, msgNotPresent)
	}
	return p.callAction(ctx, ActionUpdate, p.Provider.Update)
}

func (p *ProviderPackage) Uninstall(ctx context.Context) (*Result, error) {
	ensure, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if isAbsent(ensure) {
		return p.noop(ctx, msgNotPresent)
	}
	return p.callAction(ctx, ActionUninstall, p.Provider.Uninstall)
}

func (p *ProviderPackage) Purge(ctx context.Context) (*Result, error) {
	ensure, err := p.ensure(ctx)
	if err != nil {
		return nil, err
	}
	if ensure == EnsurePurged {
		return p.noop(ctx, msgNotPresent)
	}
	return p.callAction(ctx, ActionPurge, p.Provider.Purge)
}

// Status returns the provider properties.
func (p *ProviderPackage) Status(ctx context.Context) (*Result, error) {
	props, err := p.Provider.Properties(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status of %s: %w", p.Spec.Name, err)
	}
	return &Result{Status: props}, nil
}

func (p *ProviderPackage) ensure(ctx context.Context) (string, error) {
	props, err := p.Provider.Properties(ctx)
	if err != nil {
		return "", fmt.Errorf("reading status of %s: %w", p.Spec.Name, err)
	}
	return EnsureOf(props), nil
}

func (p *ProviderPackage) noVersionRequested() bool {
	_, ok := p.Spec.Options["ensure"]
	return !ok
}

func (p *ProviderPackage) noop(ctx context.Context, msg string) (*Result, error) {
	result, err := p.Status(ctx)
	if err != nil {
		return nil, err
	}
	result.Message = msg
	return result, nil
}

// callAction runs the provider action and flushes before the status is
// read back, so the returned status reflects the change.
func (p *ProviderPackage) callAction(ctx context.Context, action Action, fn func(context.Context) (string, error)) (*Result, error) {
	output, err := fn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", action, p.Spec.Name, err)
	}
	if err := p.Provider.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flushing %s: %w", p.Spec.Name, err)
	}

	result, err := p.Status(ctx)
	if err != nil {
		return nil, err
	}
	result.Output = output
	return result, nil
}

// EnsureOf returns the "ensure" property as a string, or "".
func EnsureOf(props map[string]any) string {
	switch v := props["ensure"].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func isAbsent(ensure string) bool {
	return ensure == EnsureAbsent || ensure == EnsurePurged
}
