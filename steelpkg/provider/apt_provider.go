package provider

import (
	"context"
	"strings"

	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	pa "github.com/steelcutops/steelpkg/steelpkg/packageaction"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
)

const DpkgQueryPath = "/usr/bin/dpkg-query"

var dpkgConfOptions = []string{"-o", "Dpkg::Options::=--force-confdef", "-o", "Dpkg::Options::=--force-confold"}

// AptProvider manages a package with dpkg-query and apt-get.
type AptProvider struct {
	base
}

var _ pa.Provider = (*AptProvider)(nil)

func (p *AptProvider) Properties(ctx context.Context) (map[string]any, error) {
	return p.properties(ctx, p.ensure, "apt")
}

func (p *AptProvider) ensure(ctx context.Context) (string, error) {
	result, err := p.query(ctx, cm.CommandConfig{
		Command: DpkgQueryPath,
		Args:    []string{"-W", "-f", `${Status}\t${Version}`, p.Spec.Name},
	})
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return pa.EnsurePurged, nil
	}
	return dpkgEnsure(result.STDOUT), nil
}

// dpkgEnsure maps "<want> <flag> <status>\t<version>" to an ensure value.
// A package removed with its configuration left behind is absent; one
// dpkg has no record of is purged.
func dpkgEnsure(output string) string {
	line := strings.SplitN(strings.TrimSpace(output), "\n", 2)[0]
	status, version, _ := strings.Cut(line, "\t")

	fields := strings.Fields(status)
	if len(fields) != 3 {
		return pa.EnsurePurged
	}
	switch fields[2] {
	case "installed":
		return version
	case "config-files":
		return pa.EnsureAbsent
	}
	return pa.EnsurePurged
}

func (p *AptProvider) target() string {
	if v, ok := p.version(); ok {
		return p.Spec.Name + "=" + v
	}
	return p.Spec.Name
}

func (p *AptProvider) Install(ctx context.Context) (string, error) {
	args := append([]string{"install", "-y"}, dpkgConfOptions...)
	return p.action(ctx, cm.CommandConfig{
		Command: pm.AptGetPath,
		Args:    append(args, p.target()),
		Env:     []string{"DEBIAN_FRONTEND=noninteractive"},
	})
}

func (p *AptProvider) Update(ctx context.Context) (string, error) {
	args := append([]string{"install", "--only-upgrade", "-y"}, dpkgConfOptions...)
	return p.action(ctx, cm.CommandConfig{
		Command: pm.AptGetPath,
		Args:    append(args, p.target()),
		Env:     []string{"DEBIAN_FRONTEND=noninteractive"},
	})
}

func (p *AptProvider) Uninstall(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.AptGetPath,
		Args:    []string{"remove", "-y", p.Spec.Name},
		Env:     []string{"DEBIAN_FRONTEND=noninteractive"},
	})
}

func (p *AptProvider) Purge(ctx context.Context) (string, error) {
	return p.action(ctx, cm.CommandConfig{
		Command: pm.AptGetPath,
		Args:    []string{"purge", "-y", p.Spec.Name},
		Env:     []string{"DEBIAN_FRONTEND=noninteractive"},
	})
}
