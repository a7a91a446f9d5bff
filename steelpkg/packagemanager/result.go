package packagemanager

// CommandOutput is the result of count, md5 and the single step refresh
// actions.
type CommandOutput struct {
	ExitCode int    `json:"exitcode"`
	Output   string `json:"output"`
}

// OutdatedPackage is a package with a newer version available. Version is
// the available version, not the installed one.
type OutdatedPackage struct {
	Package string `json:"package"`
	Version string `json:"version"`
	Repo    string `json:"repo"`
}

// OperationResult is the normalized result of refresh and checkupdates.
// ExitCode is the exit code of the last command issued.
type OperationResult struct {
	ExitCode         int               `json:"exitcode"`
	Output           string            `json:"output"`
	OutdatedPackages []OutdatedPackage `json:"outdated_packages"`
	PackageManager   string            `json:"package_manager,omitempty"`
}
