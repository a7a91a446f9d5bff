package packageaction

import (
	"context"
	"errors"
	"fmt"
)

// Action names one single-package operation.
type Action string

const (
	ActionInstall   Action = "install"
	ActionUpdate    Action = "update"
	ActionUninstall Action = "uninstall"
	ActionPurge     Action = "purge"
	ActionStatus    Action = "status"
	ActionSearch    Action = "search"
)

// Actions lists every Action in the order the CLI registers them.
var Actions = []Action{ActionInstall, ActionUpdate, ActionUninstall, ActionPurge, ActionStatus, ActionSearch}

// Ensure values reported by providers.
const (
	EnsureAbsent = "absent"
	EnsurePurged = "purged"
)

// Spec names the package an operator acts on. Options carries extra
// provider attributes; "ensure" requests a specific version.
type Spec struct {
	Name    string
	Options map[string]string
}

// Result is returned by every action. Provider backed operators fill
// Output, Message and Status; helper backed operators fill Data.
type Result struct {
	Output  string         `json:"output,omitempty"`
	Message string         `json:"msg,omitempty"`
	Status  map[string]any `json:"status,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

type Installer interface {
	Install(ctx context.Context) (*Result, error)
}

type Updater interface {
	Update(ctx context.Context) (*Result, error)
}

type Uninstaller interface {
	Uninstall(ctx context.Context) (*Result, error)
}

type Purger interface {
	Purge(ctx context.Context) (*Result, error)
}

type StatusReader interface {
	Status(ctx context.Context) (*Result, error)
}

type Searcher interface {
	Search(ctx context.Context) (*Result, error)
}

// Operator is implemented by every single-package operator. The other
// capabilities are optional and dispatched by Do.
type Operator interface {
	StatusReader
}

// ErrUnsupportedAction is returned by Do when the operator does not
// implement the requested action.
var ErrUnsupportedAction = errors.New("action not supported by this package operator")

// HelperNotFoundError means the external helper program is missing.
type HelperNotFoundError struct {
	Path string
}

func (e *HelperNotFoundError) Error() string {
	return fmt.Sprintf("cannot find package helper at %s", e.Path)
}

// HelperFailedError means the helper ran and exited nonzero.
type HelperFailedError struct {
	Action   string
	ExitCode int
	Stderr   string
}

func (e *HelperFailedError) Error() string {
	msg := fmt.Sprintf("package helper action %s failed, exit code was %d", e.Action, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// InvalidNameError rejects a malformed package name.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%s is not a valid package name", e.Name)
}
