package provider

import (
	"context"
	"strings"

	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	pa "github.com/steelcutops/steelpkg/steelpkg/packageaction"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
)

// PkgProvider manages a package with FreeBSD pkg(8).
type PkgProvider struct {
	base
}

var _ pa.Provider = (*PkgProvider)(nil)

func (p *PkgProvider) Properties(ctx context.Context) (map[string]any, error) {
	return p.properties(ctx, p.ensure, "pkg")
}

func (p *PkgProvider) ensure(ctx context.Context) (string, error) {
	result, err := p.query(ctx, cm.CommandConfig{
		Command: pm.PkgPath,
		Args:    []string{"query", "%v", p.Spec.Name},
	})
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(result.STDOUT)
	if result.ExitCode != 0 || version == "" {
		return pa.EnsurePurged, nil
	}
	return version, nil
}

// target is pkg's name-version form when a version was requested.
func (p *PkgProvider) target() string {
	if v, ok := p.version(); ok {
		return p.Spec.Name + "-" + v
	}
	return p.Spec.Name
}

func (p *PkgProvider) Install(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.PkgPath,
		Args:    []string{"install", "-y", p.target()},
	})
}

func (p *PkgProvider) Update(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.PkgPath,
		Args:    []string{"upgrade", "-y", p.Spec.Name},
	})
}

func (p *PkgProvider) Uninstall(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.PkgPath,
		Args:    []string{"delete", "-y", p.Spec.Name},
	})
}

func (p *PkgProvider) Purge(ctx context.Context) (string, error) {
	return p.Uninstall(ctx)
}
