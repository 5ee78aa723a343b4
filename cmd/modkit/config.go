package main

import (
	"fmt"

	"github.com/kbukum/modkit/config"
	"github.com/kbukum/modkit/inspect"
	"github.com/kbukum/modkit/observability"
	"github.com/kbukum/modkit/validation"
	"github.com/kbukum/modkit/version"
)

const serviceName = "modkit"

// AppConfig is the modkit command configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// Modules are catalog names of the root modules, loaded in order.
	Modules       []string             `yaml:"modules" mapstructure:"modules" validate:"dive,module_name"`
	Greeting      string               `yaml:"greeting" mapstructure:"greeting"`
	Inspect       inspect.Config       `yaml:"inspect" mapstructure:"inspect"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Inspect.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the whole configuration.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func loadAppConfig(opts *rootOptions) (*AppConfig, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, loaderOpts...); err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.Debug = true
		cfg.Logging.Level = "debug"
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
