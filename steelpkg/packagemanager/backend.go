package packagemanager

import (
	"context"

	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
)

// Backend identifies the package manager family present on a host.
type Backend int

const (
	BackendNone Backend = iota
	BackendRPM
	BackendDPKG
	BackendZypper
	BackendPkg

	backendCount
)

// Binaries the detector and the backends depend on. They are probed at
// these exact locations, never looked up on PATH.
const (
	YumPath    = "/usr/bin/yum"
	AptGetPath = "/usr/bin/apt-get"
	ZypperPath = "/usr/bin/zypper"
	PkgPath    = "/usr/sbin/pkg"
	RPMPath    = "/bin/rpm"
	DpkgPath   = "/usr/bin/dpkg"
)

var backendNames = [...]string{
	BackendNone:   "none",
	BackendRPM:    "rpm",
	BackendDPKG:   "dpkg",
	BackendZypper: "zypper",
	BackendPkg:    "pkg",
}

// Fails to compile when a backend is added without a name.
var _ = [1]struct{}{}[len(backendNames)-int(backendCount)]

func (b Backend) String() string {
	if b < 0 || b >= backendCount {
		return "unknown"
	}
	return backendNames[b]
}

// detectionOrder is the fixed probe priority. The first binary found wins.
var detectionOrder = []struct {
	path    string
	backend Backend
}{
	{YumPath, BackendRPM},
	{AptGetPath, BackendDPKG},
	{ZypperPath, BackendZypper},
	{PkgPath, BackendPkg},
}

// Detect probes for the known package manager binaries and returns the
// first match, or BackendNone. It keeps no state and is safe to call
// concurrently.
func Detect(ctx context.Context, files fm.FileChecker) Backend {
	for _, probe := range detectionOrder {
		if files.Exists(ctx, probe.path) {
			return probe.backend
		}
	}
	return BackendNone
}
