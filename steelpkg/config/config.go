package config

import (
	"fmt"
	"sort"

	"gopkg.in/ini.v1"
)

// SettingsSection holds the defaults; every other section is a host group.
const SettingsSection = "settings"

// Settings are the defaults applied to every host. An empty YumHelper
// keeps rpm hosts on the yum provider.
type Settings struct {
	User        string
	Concurrency int
	LogLevel    string
	LogFormat   string
	YumHelper   string
}

type Config struct {
	Settings Settings
	// Groups maps a group name to its hostnames, in file order.
	Groups map[string][]string
}

func Default() *Config {
	return &Config{
		Settings: Settings{
			Concurrency: 10,
			LogLevel:    "info",
			LogFormat:   "text",
		},
		Groups: map[string][]string{},
	}
}

// Load reads an ini file on top of the defaults.
func Load(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	cfg := Default()
	for _, section := range file.Sections() {
		name := section.Name()
		switch name {
		case ini.DefaultSection:
			continue
		case SettingsSection:
			if err := cfg.loadSettings(section); err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
		default:
			for _, key := range section.Keys() {
				cfg.Groups[name] = append(cfg.Groups[name], key.String())
			}
		}
	}
	return cfg, nil
}

func (c *Config) loadSettings(section *ini.Section) error {
	s := &c.Settings
	s.User = section.Key("user").MustString(s.User)
	s.LogLevel = section.Key("log_level").MustString(s.LogLevel)
	s.LogFormat = section.Key("log_format").MustString(s.LogFormat)
	s.YumHelper = section.Key("yum_helper").MustString(s.YumHelper)

	if section.HasKey("concurrency") {
		n, err := section.Key("concurrency").Int()
		if err != nil {
			return fmt.Errorf("invalid concurrency: %w", err)
		}
		if n < 1 {
			return fmt.Errorf("invalid concurrency: %d", n)
		}
		s.Concurrency = n
	}

	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s", s.LogFormat)
	}
	return nil
}

// Hostnames returns every host of every group, deduplicated, groups in
// name order.
func (c *Config) Hostnames() []string {
	groups := make([]string, 0, len(c.Groups))
	for name := range c.Groups {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	seen := map[string]bool{}
	var hosts []string
	for _, g := range groups {
		for _, h := range c.Groups[g] {
			if !seen[h] {
				seen[h] = true
				hosts = append(hosts, h)
			}
		}
	}
	return hosts
}
