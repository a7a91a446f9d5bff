package host

import (
	"errors"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	fm "github.com/steelcutops/steelpkg/steelpkg/filemanager"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
)

func NewHost(hostname string, options ...HostOption) (*Host, error) {
	if hostname == "" {
		return nil, errors.New("hostname is required")
	}
	ch := &Host{Hostname: hostname}

	// Apply each HostOption
	for _, option := range options {
		option(ch)
	}
	ch.Logger = logger.OrNop(ch.Logger).With("host", hostname)

	if ch.CommandManager == nil {
		ch.CommandManager = &cm.UnixCommandManager{
			Hostname:    hostname,
			SSHClient:   ch.SSHClient,
			Logger:      ch.Logger,
			Credentials: ch.Credentials,
		}
	}

	if isLocal(hostname) {
		configureLocalHost(ch)
	} else {
		configureRemoteHost(ch)
	}

	return ch, nil
}

func isLocal(hostname string) bool {
	return (&cm.UnixCommandManager{Hostname: hostname}).IsLocal()
}

func configureLocalHost(ch *Host) {
	ch.Files = fm.LocalFileManager{}
	ch.Packages = &pm.Helpers{CommandManager: ch.CommandManager, Files: ch.Files, Logger: ch.Logger}
}

// Remote paths are probed over the same connection the commands use.
func configureRemoteHost(ch *Host) {
	ch.Files = &fm.UnixFileManager{CommandManager: ch.CommandManager}
	ch.Packages = &pm.Helpers{CommandManager: ch.CommandManager, Files: ch.Files, Logger: ch.Logger}
}
