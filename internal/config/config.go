// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/gagliardetto/solana-go"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "kelpie.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultDatabasePath    = ".kelpie"
	DefaultMetricsPort     = 12799
)

var ErrInvalidConfig = errors.New("invalid config")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config *Config `yaml:"config,omitempty"`
}

type Config struct {
	DatabasePath    string `yaml:"databasePath"    split_words:"true"`
	ProgramID       string `yaml:"programId"       envconfig:"PROGRAM_ID"`
	BindAddr        string `yaml:"bindAddr"        split_words:"true"`
	MetricsPort     uint   `yaml:"metricsPort"     split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
	Debug           bool   `yaml:"debug"`
	// Tracing exports spans over OTLP/HTTP, or to stdout when TracingStdout
	// is set. The OTLP endpoint follows the OTEL_EXPORTER_OTLP_* variables
	TracingEnabled bool `yaml:"tracingEnabled" split_words:"true"`
	TracingStdout  bool `yaml:"tracingStdout"  split_words:"true"`
	// Badger cache sizes in bytes
	BadgerBlockCacheSize uint64 `yaml:"badgerBlockCacheSize" split_words:"true"`
	BadgerIndexCacheSize uint64 `yaml:"badgerIndexCacheSize" split_words:"true"`
}

// DefaultConfig returns a config holding the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:         DefaultDatabasePath,
		ProgramID:            address.DefaultProgramID,
		BindAddr:             "0.0.0.0",
		MetricsPort:          DefaultMetricsPort,
		ShutdownTimeout:      DefaultShutdownTimeout,
		BadgerBlockCacheSize: 256 << 20,
		BadgerIndexCacheSize: 128 << 20,
	}
}

var globalConfig = DefaultConfig()

// LoadConfig builds the config from defaults, the YAML file at configFile
// and KELPIE_* environment variables, in that order of precedence
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		// Check for config file in this path: ~/.kelpie/kelpie.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".kelpie", "kelpie.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/kelpie/kelpie.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		if tempCfg.Config != nil {
			// Overlay the config section onto the defaults
			configBytes, err := yaml.Marshal(tempCfg.Config)
			if err != nil {
				return nil, fmt.Errorf("error re-marshalling config: %w", err)
			}
			if err := yaml.Unmarshal(configBytes, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process("kelpie", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// Validate checks the fields that are parsed lazily by their consumers
func (c *Config) Validate() error {
	if _, err := c.ProgramPublicKey(); err != nil {
		return err
	}
	if _, err := c.ShutdownDuration(); err != nil {
		return err
	}
	if c.MetricsPort > 65535 {
		return fmt.Errorf("%w: metrics port %d", ErrInvalidConfig, c.MetricsPort)
	}
	return nil
}

func (c *Config) ProgramPublicKey() (solana.PublicKey, error) {
	id, err := address.ParseAddress(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: programId: %w", ErrInvalidConfig, err)
	}
	return id, nil
}

func (c *Config) ShutdownDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: shutdownTimeout: %w", ErrInvalidConfig, err)
	}
	return d, nil
}

// MetricsAddr returns the listen address of the metrics endpoint
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.MetricsPort)
}

func GetConfig() *Config {
	return globalConfig
}
