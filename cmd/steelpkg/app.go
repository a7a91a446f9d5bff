package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/steelcutops/steelpkg/logger"
	cm "github.com/steelcutops/steelpkg/steelpkg/commandmanager"
	"github.com/steelcutops/steelpkg/steelpkg/config"
	"github.com/steelcutops/steelpkg/steelpkg/host"
	"github.com/steelcutops/steelpkg/steelpkg/hostgroup"
)

type flags struct {
	Concurrency        int
	Debug              bool
	Hostnames          []string
	IniFilePath        string
	KeyPassPrompt      bool
	LogFormat          string
	PasswordPrompt     bool
	SudoPasswordPrompt bool
	Username           string
	YumHelper          string
}

// app carries the parsed flags and everything built from them for one
// invocation.
type app struct {
	flags flags

	out    io.Writer
	errOut io.Writer
	// prompt reads a secret from the terminal.
	prompt func(label string) (string, error)
	// hostOptions are appended to the options of every host.
	hostOptions []host.HostOption

	cfg   *config.Config
	log   logger.Logger
	group *hostgroup.HostGroup
}

func newApp(out, errOut io.Writer) *app {
	a := &app{out: out, errOut: errOut}
	a.prompt = a.readPassword
	return a
}

func (a *app) readPassword(label string) (string, error) {
	fmt.Fprintf(a.errOut, "Enter the %s: ", label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.errOut)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", label, err)
	}
	return string(b), nil
}

// setup loads the configuration, applies flag overrides and builds the
// logger and the host group.
func (a *app) setup(changed func(name string) bool) error {
	cfg := config.Default()
	if a.flags.IniFilePath != "" {
		loaded, err := config.Load(a.flags.IniFilePath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if changed("username") {
		cfg.Settings.User = a.flags.Username
	}
	if changed("concurrency") {
		cfg.Settings.Concurrency = a.flags.Concurrency
	}
	if changed("log-format") {
		cfg.Settings.LogFormat = a.flags.LogFormat
	}
	if changed("yum-helper") {
		cfg.Settings.YumHelper = a.flags.YumHelper
	}
	if a.flags.Debug {
		cfg.Settings.LogLevel = "debug"
	}
	a.cfg = cfg

	log, err := logger.New(logger.Options{
		Level:  cfg.Settings.LogLevel,
		Output: a.errOut,
		JSON:   cfg.Settings.LogFormat == "json",
	})
	if err != nil {
		return err
	}
	a.log = log
	a.log.Debug("Debug mode enabled")

	options, err := a.buildHostOptions()
	if err != nil {
		return err
	}
	return a.initializeHosts(options)
}

func (a *app) buildHostOptions() ([]host.HostOption, error) {
	options := []host.HostOption{
		host.WithLogger(a.log),
		host.WithSSHClient(&cm.RealSSHClient{}),
	}
	if a.cfg.Settings.User != "" {
		options = append(options, host.WithUser(a.cfg.Settings.User))
	}
	if a.cfg.Settings.YumHelper != "" {
		options = append(options, host.WithYumHelper(a.cfg.Settings.YumHelper))
	}

	prompts := []struct {
		enabled bool
		label   string
		option  func(string) host.HostOption
	}{
		{a.flags.PasswordPrompt, "password", host.WithPassword},
		{a.flags.KeyPassPrompt, "key passphrase", host.WithKeyPassphrase},
		{a.flags.SudoPasswordPrompt, "sudo password", host.WithSudoPassword},
	}
	for _, p := range prompts {
		if !p.enabled {
			continue
		}
		secret, err := a.prompt(p.label)
		if err != nil {
			return nil, err
		}
		if secret != "" {
			options = append(options, p.option(secret))
		}
	}

	return append(options, a.hostOptions...), nil
}

func (a *app) initializeHosts(options []host.HostOption) error {
	hostnames := append([]string{}, a.flags.Hostnames...)
	hostnames = append(hostnames, a.cfg.Hostnames()...)
	if len(hostnames) == 0 {
		hostnames = append(hostnames, "localhost")
	}

	a.group = hostgroup.NewHostGroup()
	for _, hostname := range hostnames {
		if a.group.HasHost(hostname) {
			continue
		}
		a.log.Debug("Adding host", "host", hostname)
		h, err := host.NewHost(hostname, options...)
		if err != nil {
			return fmt.Errorf("creating host %s: %w", hostname, err)
		}
		a.group.AddHost(h)
	}
	return nil
}

// each runs fn on every host and prints the successful results as one
// JSON object keyed by hostname. Host connections are closed afterwards.
func (a *app) each(ctx context.Context, fn func(ctx context.Context, h *host.Host) (any, error)) error {
	defer func() {
		if err := a.group.Close(); err != nil {
			a.log.Warn("Failed to close host connections", "error", err)
		}
	}()

	var mu sync.Mutex
	results := map[string]any{}

	err := a.group.Each(ctx, a.cfg.Settings.Concurrency, func(ctx context.Context, h *host.Host) error {
		result, err := fn(ctx, h)
		if err != nil {
			h.Logger.Error("Host processing error", "error", err)
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		results[h.Hostname] = result
		return nil
	})

	if len(results) > 0 {
		b, merr := json.MarshalIndent(results, "", "  ")
		if merr != nil {
			return merr
		}
		fmt.Fprintln(a.out, string(b))
	}
	return err
}
