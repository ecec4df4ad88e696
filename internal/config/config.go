package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"bunman/internal/svcmgr"
)

const (
	// DefaultPrefix is prepended to service names for systemd unit names
	DefaultPrefix = "bunman"

	// DefaultLabelDomain is the reverse-DNS domain for launchd labels
	DefaultLabelDomain = "com.bunman"
)

// service names become unit names and launchd labels, so keep them tame
var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// rawService mirrors one service entry in bunman.yaml.
type rawService struct {
	Dir          string            `yaml:"dir"`
	Command      string            `yaml:"command"`
	Description  string            `yaml:"description"`
	Env          map[string]string `yaml:"env"`
	EnvFile      string            `yaml:"env_file"`
	User         string            `yaml:"user"`
	Group        string            `yaml:"group"`
	Restart      string            `yaml:"restart"`
	RestartDelay int               `yaml:"restart_delay"`
	After        []string          `yaml:"after"`
	Requires     []string          `yaml:"requires"`
	Limits       *rawLimits        `yaml:"limits"`
}

type rawLimits struct {
	MemoryMB   int64 `yaml:"memory_mb"`
	CPUPercent int   `yaml:"cpu_percent"`
	OpenFiles  int   `yaml:"open_files"`
	Processes  int   `yaml:"processes"`
}

type rawConfig struct {
	Prefix      string                `yaml:"prefix"`
	LabelDomain string                `yaml:"label_domain"`
	Services    map[string]rawService `yaml:"services"`
}

// Config is the loaded, validated descriptor set. Descriptors are
// immutable once loaded; the core only ever reads them.
type Config struct {
	// Prefix for systemd unit naming
	Prefix string
	// LabelDomain for launchd label naming
	LabelDomain string

	services map[string]svcmgr.Descriptor
}

// Load reads and validates the config file. An explicit path wins;
// otherwise the working directory and ~/.config/bunman are searched for
// bunman.yaml.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("bunman")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/bunman")
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// viper lowercases map keys; env variable names are case-sensitive,
	// so the discovered file is decoded with yaml directly.
	file := v.ConfigFileUsed()
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", file, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", file, err)
	}

	return build(raw)
}

// build validates the raw config into immutable descriptors.
func build(raw rawConfig) (*Config, error) {
	cfg := &Config{
		Prefix:      raw.Prefix,
		LabelDomain: raw.LabelDomain,
		services:    make(map[string]svcmgr.Descriptor, len(raw.Services)),
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.LabelDomain == "" {
		cfg.LabelDomain = DefaultLabelDomain
	}

	if len(raw.Services) == 0 {
		return nil, &svcmgr.ValidationError{Service: "", Field: "services", Reason: "no services defined"}
	}

	for name, rs := range raw.Services {
		d, err := buildDescriptor(name, rs)
		if err != nil {
			return nil, err
		}
		cfg.services[name] = d
	}

	return cfg, nil
}

func buildDescriptor(name string, rs rawService) (svcmgr.Descriptor, error) {
	var d svcmgr.Descriptor

	if !nameRe.MatchString(name) {
		return d, &svcmgr.ValidationError{Service: name, Field: "name",
			Reason: "must start with a letter or digit and contain only letters, digits, - and _"}
	}
	if rs.Command == "" {
		return d, &svcmgr.ValidationError{Service: name, Field: "command", Reason: "must not be empty"}
	}
	if rs.Dir == "" || !filepath.IsAbs(rs.Dir) {
		return d, &svcmgr.ValidationError{Service: name, Field: "dir", Reason: "must be an absolute path"}
	}
	if rs.RestartDelay < 0 {
		return d, &svcmgr.ValidationError{Service: name, Field: "restart_delay", Reason: "must not be negative"}
	}

	policy, ok := svcmgr.ParseRestartPolicy(rs.Restart)
	if !ok {
		return d, &svcmgr.ValidationError{Service: name, Field: "restart",
			Reason: fmt.Sprintf("unknown policy %q (valid: always, on-failure, on-abnormal, never)", rs.Restart)}
	}

	d = svcmgr.Descriptor{
		Name:         name,
		Directory:    rs.Dir,
		Command:      rs.Command,
		Description:  rs.Description,
		Env:          rs.Env,
		EnvFile:      rs.EnvFile,
		User:         rs.User,
		Group:        rs.Group,
		Restart:      policy,
		RestartDelay: rs.RestartDelay,
		After:        rs.After,
		Requires:     rs.Requires,
	}

	if rs.Limits != nil {
		l := svcmgr.ResourceLimits(*rs.Limits)
		if l.MemoryMB < 0 || l.CPUPercent < 0 || l.OpenFiles < 0 || l.Processes < 0 {
			return d, &svcmgr.ValidationError{Service: name, Field: "limits", Reason: "limits must not be negative"}
		}
		d.Limits = &l
	}

	return d, nil
}

// Names returns all configured service names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the descriptor for one service, or a *NotFoundError that
// carries the valid names for user guidance.
func (c *Config) Get(name string) (svcmgr.Descriptor, error) {
	d, ok := c.services[name]
	if !ok {
		return svcmgr.Descriptor{}, &svcmgr.NotFoundError{Name: name, Valid: c.Names()}
	}
	return d, nil
}

// Refs resolves names into batch service refs. With no names, all
// configured services are returned in sorted order.
func (c *Config) Refs(names []string) ([]svcmgr.ServiceRef, error) {
	if len(names) == 0 {
		names = c.Names()
	}

	refs := make([]svcmgr.ServiceRef, 0, len(names))
	for _, name := range names {
		d, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		refs = append(refs, svcmgr.ServiceRef{Name: name, Descriptor: d})
	}
	return refs, nil
}
