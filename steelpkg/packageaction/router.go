package packageaction

import (
	"context"
	"fmt"

	"github.com/asaskevich/govalidator"

	"github.com/steelcutops/steelpkg/logger"
)

// Do runs action against pkg. It returns ErrUnsupportedAction when pkg
// does not implement it.
func Do(ctx context.Context, pkg any, action Action) (*Result, error) {
	switch action {
	case ActionInstall:
		if p, ok := pkg.(Installer); ok {
			return p.Install(ctx)
		}
	case ActionUpdate:
		if p, ok := pkg.(Updater); ok {
			return p.Update(ctx)
		}
	case ActionUninstall:
		if p, ok := pkg.(Uninstaller); ok {
			return p.Uninstall(ctx)
		}
	case ActionPurge:
		if p, ok := pkg.(Purger); ok {
			return p.Purge(ctx)
		}
	case ActionStatus:
		if p, ok := pkg.(StatusReader); ok {
			return p.Status(ctx)
		}
	case ActionSearch:
		if p, ok := pkg.(Searcher); ok {
			return p.Search(ctx)
		}
	default:
		return nil, fmt.Errorf("unknown package action: %s", action)
	}
	return nil, fmt.Errorf("%s: %w", action, ErrUnsupportedAction)
}

// StatusData is the summary returned by QueryStatus.
type StatusData struct {
	Status    string `json:"status,omitempty"`
	Installed bool   `json:"installed"`
}

// QueryStatus reads the status of a package. Failures are logged as a
// warning and yield the zero StatusData.
func QueryStatus(ctx context.Context, name string, reader StatusReader, log logger.Logger) StatusData {
	result, err := reader.Status(ctx)
	if err != nil {
		logger.OrNop(log).Warn(fmt.Sprintf("could not get status for package %s", name), "error", err)
		return StatusData{}
	}

	props := result.Status
	if props == nil {
		props = result.Data
	}
	ensure := EnsureOf(props)
	return StatusData{Status: ensure, Installed: !isAbsent(ensure)}
}

const packageNamePattern = `^[A-Za-z0-9._+-]+$`

// ValidateName rejects names that cannot be a package name.
func ValidateName(name string) error {
	if !govalidator.Matches(name, packageNamePattern) {
		return &InvalidNameError{Name: name}
	}
	return nil
}
