// Package config resolves the engine's process-level configuration
// (spec.md §6.6): API connection settings, the auth-helper subprocess,
// logging, and manifest layer paths, bound from flags and environment
// variables the way the donor repo's `cmd/*/app/options` packages do.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Smarty-Pants-Inc/letta-sync/internal/log"
)

// Options is the full process configuration surface (spec.md §6.6).
type Options struct {
	APIKey           string `mapstructure:"api-key"`
	APIURL           string `mapstructure:"api-url"`
	ServerPassword   string `mapstructure:"server-password"`
	DefaultModel     string `mapstructure:"default-model"`
	AuthHelper       string `mapstructure:"auth-helper"`
	AuthHelperArgs   []string `mapstructure:"auth-helper-args"`
	Project          string `mapstructure:"project"`
	Org              string `mapstructure:"org"`

	BasePath    string `mapstructure:"base-path"`
	OrgPath     string `mapstructure:"org-path"`
	ProjectPath string `mapstructure:"project-path"`

	DryRun       bool     `mapstructure:"dry-run"`
	AllowDelete  bool     `mapstructure:"allow-delete"`
	Force        bool     `mapstructure:"force"`
	Concurrency  int      `mapstructure:"concurrency"`
	TargetLayers []string `mapstructure:"target-layers"`

	LogOptions *log.Options `mapstructure:"-"`
}

// NewOptions returns Options with the same style of sane defaults
// internal/log.NewOptions uses.
func NewOptions() *Options {
	return &Options{
		APIURL:      "https://api.letta.com",
		Concurrency: 1,
		LogOptions:  log.NewOptions(),
	}
}

// AddFlags registers every flag, mirroring internal/log.Options.AddFlags'
// one-flag-per-field convention.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.APIKey, "api-key", o.APIKey, "API key for the remote platform (LETTA_API_KEY).")
	fs.StringVar(&o.APIURL, "api-url", o.APIURL, "Base URL of the remote platform (LETTA_API_URL).")
	fs.StringVar(&o.ServerPassword, "server-password", o.ServerPassword, "Self-hosted server password (LETTA_SERVER_PASSWORD).")
	fs.StringVar(&o.DefaultModel, "default-model", o.DefaultModel, "Default model identifier (LETTA_DEFAULT_MODEL).")
	fs.StringVar(&o.AuthHelper, "auth-helper", o.AuthHelper, "Path to a credential-helper executable (LETTA_AUTH_HELPER).")
	fs.StringSliceVar(&o.AuthHelperArgs, "auth-helper-args", o.AuthHelperArgs, "Arguments passed to the auth helper (LETTA_AUTH_HELPER_ARGS).")
	fs.StringVar(&o.Project, "project", o.Project, "Project scope for manifest loading and tagging (LETTA_PROJECT).")
	fs.StringVar(&o.Org, "org", o.Org, "Org scope for manifest loading and tagging.")

	fs.StringVar(&o.BasePath, "base-path", o.BasePath, "Path to the base-layer manifest directory or file.")
	fs.StringVar(&o.OrgPath, "org-path", o.OrgPath, "Path to the org-layer manifest directory or file.")
	fs.StringVar(&o.ProjectPath, "project-path", o.ProjectPath, "Path to the project-layer manifest directory or file.")

	fs.BoolVar(&o.DryRun, "dry-run", o.DryRun, "Compute and report a plan without making remote changes.")
	fs.BoolVar(&o.AllowDelete, "allow-delete", o.AllowDelete, "Permit delete actions for orphaned managed resources.")
	fs.BoolVar(&o.Force, "force", o.Force, "Permit breaking upgrade actions and pinned-channel upgrades.")
	fs.IntVar(&o.Concurrency, "concurrency", o.Concurrency, "Maximum number of agents upgraded in parallel.")
	fs.StringSliceVar(&o.TargetLayers, "target-version", o.TargetLayers, "layer=sha pairs to record as the applied version (repeatable).")

	o.LogOptions.AddFlags(fs)
}

// Validate checks field-level constraints AddFlags/env binding can't
// enforce by construction.
func (o *Options) Validate() []error {
	var errs []error
	if o.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be >= 1, got %d", o.Concurrency))
	}
	if o.APIURL == "" {
		errs = append(errs, fmt.Errorf("api-url must not be empty"))
	}
	return errs
}

// Complete fills in LETTA_* environment-variable overrides, read directly
// with os.Getenv (slice-valued and helper-args fields bind awkwardly
// through viper's env-var prefixing). It does not compute the settings
// path; SettingsPath does that.
func (o *Options) Complete() error {
	if v := os.Getenv("LETTA_API_KEY"); v != "" && o.APIKey == "" {
		o.APIKey = v
	}
	if v := os.Getenv("LETTA_API_URL"); v != "" {
		o.APIURL = v
	}
	if v := os.Getenv("LETTA_SERVER_PASSWORD"); v != "" && o.ServerPassword == "" {
		o.ServerPassword = v
	}
	if v := os.Getenv("LETTA_DEFAULT_MODEL"); v != "" && o.DefaultModel == "" {
		o.DefaultModel = v
	}
	if v := os.Getenv("LETTA_AUTH_HELPER"); v != "" && o.AuthHelper == "" {
		o.AuthHelper = v
	}
	if v := os.Getenv("LETTA_AUTH_HELPER_ARGS"); v != "" && len(o.AuthHelperArgs) == 0 {
		o.AuthHelperArgs = strings.Fields(v)
	}
	if v := os.Getenv("LETTA_PROJECT"); v != "" && o.Project == "" {
		o.Project = v
	}
	if v := os.Getenv("LETTA_LOG_LEVEL"); v != "" {
		o.LogOptions.Level = v
	}
	if v := os.Getenv("LETTA_LOG_JSON"); v == "true" || v == "1" {
		o.LogOptions.Format = "json"
	}
	return nil
}

// SettingsPath returns the user settings file internal/credentials'
// settings-file provider reads (spec.md §6.4), rooted at XDG_CONFIG_HOME
// when set.
func SettingsPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "letta", "settings.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "letta", "settings.json")
}

// LoadViper binds the flags in fs into v and turns on viper's automatic
// LETTA_-prefixed environment lookup for them. It does not write into an
// Options struct; environment overrides for Options are read by Complete
// (TargetLayers has no environment override and comes from its flag only).
func LoadViper(v *viper.Viper, fs *pflag.FlagSet) error {
	v.SetEnvPrefix("LETTA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return v.BindPFlags(fs)
}
