package packagemanager

import (
	"context"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// Helpers routes the uniform package operations to whichever backend is
// detected on the host. Detection runs on every call; nothing is cached.
type Helpers struct {
	CommandManager cm.CommandManager
	Files          fm.FileChecker
	Logger         logger.Logger
}

// managers maps every backend to its implementation. BackendNone has none.
var managers = [...]func(h *Helpers) PackageManager{
	BackendNone:   nil,
	BackendRPM:    func(h *Helpers) PackageManager { return h.Yum() },
	BackendDPKG:   func(h *Helpers) PackageManager { return h.Apt() },
	BackendZypper: func(h *Helpers) PackageManager { return h.Zypper() },
	BackendPkg:    func(h *Helpers) PackageManager { return h.Pkg() },
}

// Fails to compile when a backend is added without an implementation slot.
var _ = [1]struct{}{}[len(managers)-int(backendCount)]

// PackageManager detects the backend present on the host.
func (h *Helpers) PackageManager(ctx context.Context) Backend {
	backend := Detect(ctx, h.Files)
	logger.OrNop(h.Logger).Debug("Detected package manager", "backend", backend.String())
	return backend
}

// For returns the implementation for backend, or false for BackendNone.
func (h *Helpers) For(backend Backend) (PackageManager, bool) {
	if backend < 0 || backend >= backendCount || managers[backend] == nil {
		return nil, false
	}
	return managers[backend](h), true
}

func (h *Helpers) detected(ctx context.Context, operation string) (PackageManager, error) {
	pm, ok := h.For(h.PackageManager(ctx))
	if !ok {
		return nil, &NoCompatibleBackendError{Operation: operation}
	}
	return pm, nil
}

// Count returns the number of installed packages.
func (h *Helpers) Count(ctx context.Context) (*CommandOutput, error) {
	pm, err := h.detected(ctx, opCount)
	if err != nil {
		return nil, err
	}
	return pm.Count(ctx)
}

// MD5 returns a digest of the installed package list.
func (h *Helpers) MD5(ctx context.Context) (*CommandOutput, error) {
	pm, err := h.detected(ctx, opMD5)
	if err != nil {
		return nil, err
	}
	return pm.MD5(ctx)
}

// Refresh updates the package index of the detected backend.
func (h *Helpers) Refresh(ctx context.Context) (*OperationResult, error) {
	pm, err := h.detected(ctx, opRefresh)
	if err != nil {
		return nil, err
	}
	return pm.Refresh(ctx)
}

// CheckUpdates lists the packages with a newer version available.
func (h *Helpers) CheckUpdates(ctx context.Context) (*OperationResult, error) {
	pm, err := h.detected(ctx, opCheckUpdates)
	if err != nil {
		return nil, err
	}
	return pm.CheckUpdates(ctx)
}

// YumClean runs `yum clean <mode>` regardless of the detected backend.
func (h *Helpers) YumClean(ctx context.Context, mode string) (*CommandOutput, error) {
	return h.Yum().Clean(ctx, mode)
}

func (h *Helpers) Yum() *YumPackageManager {
	return &YumPackageManager{CommandManager: h.CommandManager, Files: h.Files, Logger: h.Logger}
}

func (h *Helpers) Apt() *AptPackageManager {
	return &AptPackageManager{CommandManager: h.CommandManager, Files: h.Files, Logger: h.Logger}
}

func (h *Helpers) Zypper() *ZypperPackageManager {
	return &ZypperPackageManager{CommandManager: h.CommandManager, Files: h.Files, Logger: h.Logger}
}

func (h *Helpers) Pkg() *PkgPackageManager {
	return &PkgPackageManager{CommandManager: h.CommandManager, Files: h.Files, Logger: h.Logger}
}
