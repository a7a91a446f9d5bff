package host

import (
	"context"
	"fmt"
	"io"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
	pa "github.com/steelcutops/steelpkg/steelpkg/packageaction"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
	"github.com/steelcutops/steelpkg/steelpkg/provider"
)

// Host is one target machine: how to run commands on it, how to probe its
// filesystem and the package helpers bound to both.
type Host struct {
	Hostname string
	cm.Credentials
	SSHClient cm.SSHDialer
	Logger    logger.Logger
	// YumHelper, when set, routes single-package actions on rpm hosts to
	// the helper program instead of the yum provider.
	YumHelper string

	CommandManager cm.CommandManager
	Files          fm.FileChecker
	Packages       *pm.Helpers
}

// Package returns the single-package operator for spec on this host.
func (h *Host) Package(ctx context.Context, spec pa.Spec) (pa.Operator, error) {
	backend := h.Packages.PackageManager(ctx)
	if backend == pm.BackendRPM && h.YumHelper != "" {
		return &pa.YumPackage{
			Spec:           spec,
			Helper:         h.YumHelper,
			CommandManager: h.CommandManager,
			Files:          h.Files,
			Logger:         h.Logger,
		}, nil
	}

	p, err := provider.New(backend, spec, h.CommandManager, h.Logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.Hostname, err)
	}
	return pa.NewProviderPackage(spec, p), nil
}

// Close releases the connections held by the command manager.
func (h *Host) Close() error {
	if c, ok := h.CommandManager.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
