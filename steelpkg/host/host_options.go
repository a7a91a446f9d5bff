package host

import (
	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
)

type HostOption func(*Host)

// WithUser returns a HostOption that sets the user for a Host.
func WithUser(user string) HostOption {
	return func(host *Host) {
		host.User = user
	}
}

// WithPassword returns a HostOption that sets the password for a Host.
func WithPassword(password string) HostOption {
	return func(host *Host) {
		host.Password = password
	}
}

// WithKeyPassphrase returns a HostOption that sets the key passphrase for a Host.
func WithKeyPassphrase(keyPassphrase string) HostOption {
	return func(host *Host) {
		host.KeyPassphrase = keyPassphrase
	}
}

// WithSudoPassword returns a HostOption that sets the sudo password for a Host.
func WithSudoPassword(password string) HostOption {
	return func(host *Host) {
		host.SudoPassword = password
	}
}

func WithSSHClient(client cm.SSHDialer) HostOption {
	return func(host *Host) {
		host.SSHClient = client
	}
}

func WithLogger(l logger.Logger) HostOption {
	return func(host *Host) {
		host.Logger = l
	}
}

// WithYumHelper routes single-package actions on rpm hosts to the helper
// program at path.
func WithYumHelper(path string) HostOption {
	return func(host *Host) {
		host.YumHelper = path
	}
}

// WithCommandManager replaces the command runner NewHost would build.
func WithCommandManager(manager cm.CommandManager) HostOption {
	return func(host *Host) {
		host.CommandManager = manager
	}
}
