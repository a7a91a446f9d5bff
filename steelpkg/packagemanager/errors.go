package packagemanager

import (
	"errors"
	"fmt"
)

// ErrNoCompatibleBackend matches every NoCompatibleBackendError.
var ErrNoCompatibleBackend = errors.New("no compatible package system")

// BinaryNotFoundError is returned before any command runs when the binary
// an operation needs is missing.
type BinaryNotFoundError struct {
	Name string
	Path string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("cannot find %s at %s", e.Name, e.Path)
}

// UnsupportedModeError rejects an unknown yum clean mode.
type UnsupportedModeError struct {
	Mode string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported yum clean mode: %s", e.Mode)
}

// CommandFailedError reports a command that ran and exited nonzero.
type CommandFailedError struct {
	Command  string
	ExitCode int
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("%s failed, exit code was %d", e.Command, e.ExitCode)
}

// NoCompatibleBackendError is returned when detection finds no backend
// that implements the requested operation.
type NoCompatibleBackendError struct {
	Operation string
}

func (e *NoCompatibleBackendError) Error() string {
	return fmt.Sprintf("cannot find a compatible package system to %s", e.Operation)
}

func (e *NoCompatibleBackendError) Is(target error) bool {
	return target == ErrNoCompatibleBackend
}

const (
	opCount        = "count packages"
	opMD5          = "get a md5 of the package list"
	opRefresh      = "update packages"
	opCheckUpdates = "check updates"
)
