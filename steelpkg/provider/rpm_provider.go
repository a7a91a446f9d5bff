package provider

import (
	"context"
	"strings"

	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	pa "github.com/steelcutops/steelpkg/steelpkg/packageaction"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
)

// rpmEnsure reads the installed version from the rpm database. rpm keeps
// no state for removed packages, so a missing package is purged.
func rpmEnsure(ctx context.Context, b *base) (string, error) {
	result, err := b.query(ctx, cm.CommandConfig{
		Command: pm.RPMPath,
		Args:    []string{"-q", "--queryformat", "%{VERSION}-%{RELEASE}", b.Spec.Name},
	})
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(result.STDOUT)
	if result.ExitCode != 0 || version == "" || strings.Contains(version, "is not installed") {
		return pa.EnsurePurged, nil
	}
	return version, nil
}

// YumProvider manages a package with rpm and yum.
type YumProvider struct {
	base
}

var _ pa.Provider = (*YumProvider)(nil)

func (p *YumProvider) Properties(ctx context.Context) (map[string]any, error) {
	return p.properties(ctx, func(ctx context.Context) (string, error) { return rpmEnsure(ctx, &p.base) }, "yum")
}

func (p *YumProvider) target() string {
	if v, ok := p.version(); ok {
		return p.Spec.Name + "-" + v
	}
	return p.Spec.Name
}

func (p *YumProvider) Install(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.YumPath,
		Args:    []string{"install", "-y", p.target()},
	})
}

func (p *YumProvider) Update(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.YumPath,
		Args:    []string{"update", "-y", p.target()},
	})
}

func (p *YumProvider) Uninstall(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.YumPath,
		Args:    []string{"remove", "-y", p.Spec.Name},
	})
}

// Purge is the same as Uninstall.
func (p *YumProvider) Purge(ctx context.Context) (string, error) {
	return p.Uninstall(ctx)
}

// ZypperProvider manages a package with rpm and zypper.
type ZypperProvider struct {
	base
}

var _ pa.Provider = (*ZypperProvider)(nil)

func (p *ZypperProvider) Properties(ctx context.Context) (map[string]any, error) {
	return p.properties(ctx, func(ctx context.Context) (string, error) { return rpmEnsure(ctx, &p.base) }, "zypper")
}

func (p *ZypperProvider) target() string {
	if v, ok := p.version(); ok {
		return p.Spec.Name + "=" + v
	}
	return p.Spec.Name
}

func (p *ZypperProvider) Install(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.ZypperPath,
		Args:    []string{"--non-interactive", "install", p.target()},
	})
}

func (p *ZypperProvider) Update(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.ZypperPath,
		Args:    []string{"--non-interactive", "update", p.target()},
	})
}

func (p *ZypperProvider) Uninstall(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.ZypperPath,
		Args:    []string{"--non-interactive", "remove", p.Spec.Name},
	})
}

func (p *ZypperProvider) Purge(ctx context.Context) (string, error) {
	return p.Uninstall(ctx)
}
