package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steelcutops/steelpkg/steelpkg/host"
	pa "github.com/steelcutops/steelpkg/steelpkg/packageaction"
	pm "github.com/steelcutops/steelpkg/steelpkg/packagemanager"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "steelpkg",
		Short: "Query and manage packages across yum, apt, zypper and pkg hosts",
		Long: `steelpkg detects the package manager of each host and runs the same
operations everywhere: package count, inventory digest, index refresh,
outdated package listing and single package actions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags().Changed)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	f := root.PersistentFlags()
	f.StringArrayVar(&a.flags.Hostnames, "hostname", nil, "Hostname to connect to (repeatable)")
	f.StringVar(&a.flags.IniFilePath, "ini", "", "Path to INI file with settings and host groups")
	f.StringVar(&a.flags.Username, "username", "", "Username to use for SSH connection")
	f.BoolVar(&a.flags.PasswordPrompt, "password", false, "Prompt for the SSH password")
	f.BoolVar(&a.flags.KeyPassPrompt, "keypass", false, "Prompt for the SSH key passphrase")
	f.BoolVar(&a.flags.SudoPasswordPrompt, "sudo-password", false, "Prompt for the sudo password")
	f.IntVar(&a.flags.Concurrency, "concurrency", 10, "Maximum number of concurrent host connections")
	f.BoolVar(&a.flags.Debug, "debug", false, "Enable debug log level")
	f.StringVar(&a.flags.LogFormat, "log-format", "text", "Log format: text or json")
	f.StringVar(&a.flags.YumHelper, "yum-helper", "", "Helper program for single package actions on rpm hosts")

	root.AddCommand(
		hostCmd(a, "backend", "Show the detected package manager", func(ctx context.Context, h *host.Host) (any, error) {
			return map[string]string{"backend": h.Packages.PackageManager(ctx).String()}, nil
		}),
		hostCmd(a, "count", "Count the installed packages", func(ctx context.Context, h *host.Host) (any, error) {
			return h.Packages.Count(ctx)
		}),
		hostCmd(a, "md5", "Digest of the installed package list", func(ctx context.Context, h *host.Host) (any, error) {
			return h.Packages.MD5(ctx)
		}),
		hostCmd(a, "refresh", "Refresh the package index", func(ctx context.Context, h *host.Host) (any, error) {
			return h.Packages.Refresh(ctx)
		}),
		hostCmd(a, "checkupdates", "List packages with a newer version available", func(ctx context.Context, h *host.Host) (any, error) {
			return h.Packages.CheckUpdates(ctx)
		}),
		yumCleanCmd(a),
		dataCmd(a),
	)
	for _, action := range pa.Actions {
		root.AddCommand(packageCmd(a, action))
	}

	return root
}

func hostCmd(a *app, use, short string, fn func(ctx context.Context, h *host.Host) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.each(cmd.Context(), fn)
		},
	}
}

func yumCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "yum-clean <mode>",
		Short:     "Run yum clean with the given mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: pm.YumCleanModes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.each(cmd.Context(), func(ctx context.Context, h *host.Host) (any, error) {
				return h.Packages.YumClean(ctx, args[0])
			})
		},
	}
}

func packageCmd(a *app, action pa.Action) *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <package>", action),
		Short: fmt.Sprintf("Run %s for one package", action),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := packageSpec(args[0], version)
			if err != nil {
				return err
			}
			return a.each(cmd.Context(), func(ctx context.Context, h *host.Host) (any, error) {
				op, err := h.Package(ctx, spec)
				if err != nil {
					return nil, err
				}
				return pa.Do(ctx, op, action)
			})
		},
	}
	if action == pa.ActionInstall || action == pa.ActionUpdate {
		cmd.Flags().StringVar(&version, "version", "", "Version to ensure")
	}
	return cmd
}

func dataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "data <package>",
		Short: "Report whether a package is installed and its version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := packageSpec(args[0], "")
			if err != nil {
				return err
			}
			return a.each(cmd.Context(), func(ctx context.Context, h *host.Host) (any, error) {
				op, err := h.Package(ctx, spec)
				if err != nil {
					return nil, err
				}
				return pa.QueryStatus(ctx, spec.Name, op, h.Logger), nil
			})
		},
	}
}

func packageSpec(name, version string) (pa.Spec, error) {
	if err := pa.ValidateName(name); err != nil {
		return pa.Spec{}, err
	}
	spec := pa.Spec{Name: name, Options: map[string]string{}}
	if version != "" {
		spec.Options["ensure"] = version
	}
	return spec, nil
}
