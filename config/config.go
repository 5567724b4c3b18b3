// Package config enables config file parsing.
package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/rs/zerolog"

	"go.dedis.ch/mixnet/types"
)

// EnvPrefix prefixes the environment variables overriding the config file.
const EnvPrefix = "MIXNET_"

// Config contains the configuration of an authority.
type Config struct {
	Group    *GroupConfig    `koanf:"group"`
	Security *SecurityConfig `koanf:"security"`

	// Authorities is the number s of authorities of the election.
	Authorities int `koanf:"authorities"`

	// Workers bounds the goroutines used by a single verification. 0 selects
	// GOMAXPROCS.
	Workers int `koanf:"workers"`

	Log     *LogConfig     `koanf:"log"`
	Metrics *MetricsConfig `koanf:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Group == nil {
		return fmt.Errorf("group: not configured")
	}
	if err := cfg.Group.Validate(); err != nil {
		return fmt.Errorf("group: %w", err)
	}
	if cfg.Security == nil {
		return fmt.Errorf("security: not configured")
	}
	if err := cfg.Security.Validate(); err != nil {
		return fmt.Errorf("security: %w", err)
	}
	if cfg.Authorities < 1 {
		return fmt.Errorf("authorities: must be at least 1, got %d", cfg.Authorities)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers: must not be negative, got %d", cfg.Workers)
	}
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}

	return nil
}

// PublicParameters returns the election parameters described by a valid
// configuration.
func (cfg *Config) PublicParameters() (*types.PublicParameters, error) {
	eg, err := cfg.Group.EncryptionGroup()
	if err != nil {
		return nil, err
	}

	return &types.PublicParameters{
		Group:       eg,
		Security:    types.SecurityParameters{Tau: cfg.Security.Tau},
		Authorities: cfg.Authorities,
	}, nil
}

// GroupConfig is the encryption group, every parameter as a quoted
// hexadecimal string.
type GroupConfig struct {
	P string `koanf:"p"`
	Q string `koanf:"q"`
	G string `koanf:"g"`
	H string `koanf:"h"`
}

// EncryptionGroup parses the group parameters.
func (cfg *GroupConfig) EncryptionGroup() (*types.EncryptionGroup, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"p", cfg.P}, {"q", cfg.Q}, {"g", cfg.G}, {"h", cfg.H},
	}

	values := make([]*big.Int, len(fields))
	for i, f := range fields {
		x, ok := new(big.Int).SetString(strings.TrimPrefix(f.value, "0x"), 16)
		if !ok {
			return nil, fmt.Errorf("%s: invalid hexadecimal integer %q", f.name, f.value)
		}
		values[i] = x
	}

	return types.NewEncryptionGroup(values[0], values[1], values[2], values[3]), nil
}

// Validate checks that q is a prime divisor of p-1, p is prime, and g and
// h generate the order-q subgroup.
func (cfg *GroupConfig) Validate() error {
	eg, err := cfg.EncryptionGroup()
	if err != nil {
		return err
	}

	if !eg.P.ProbablyPrime(20) {
		return fmt.Errorf("p is not prime")
	}
	if !eg.Q.ProbablyPrime(20) {
		return fmt.Errorf("q is not prime")
	}

	pMinusOne := new(big.Int).Sub(eg.P, big.NewInt(1))
	if new(big.Int).Mod(pMinusOne, eg.Q).Sign() != 0 {
		return fmt.Errorf("q does not divide p-1")
	}

	one := big.NewInt(1)
	for name, x := range map[string]*big.Int{"g": eg.G, "h": eg.H} {
		if x.Cmp(one) <= 0 || x.Cmp(eg.P) >= 0 || new(big.Int).Exp(x, eg.Q, eg.P).Cmp(one) != 0 {
			return fmt.Errorf("%s is not a generator of the order-q subgroup", name)
		}
	}

	return nil
}

// SecurityConfig holds the security parameters.
type SecurityConfig struct {
	// Tau is the bit length of the Fiat-Shamir challenges.
	Tau int `koanf:"tau"`
}

// Validate validates the security configuration.
func (cfg *SecurityConfig) Validate() error {
	if cfg.Tau < 1 {
		return fmt.Errorf("tau: must be positive, got %d", cfg.Tau)
	}
	return nil
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	_, err := zerolog.ParseLevel(cfg.Level)
	return err
}

// ZerologLevel returns the configured level, info by default.
func (cfg *LogConfig) ZerologLevel() zerolog.Level {
	if cfg == nil || cfg.Level == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// MetricsConfig contains the metrics configuration.
type MetricsConfig struct {
	// TextFile, when set, receives the metrics of a run in the Prometheus
	// text format.
	TextFile string `koanf:"textfile"`
}

// InitConfig initializes configuration from file.
func InitConfig(f string) (*Config, error) {
	return load(file.Provider(f))
}

func load(provider koanf.Provider) (*Config, error) {
	var config Config
	k := koanf.New(".")

	// Load configuration from the yaml config.
	if err := k.Load(provider, yaml.Parser()); err != nil {
		return nil, err
	}

	// Load environment variables and merge into the loaded config.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		// `__` is used as a hierarchy delimiter.
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	// Unmarshal into config.
	if err := k.Unmarshal("", &config); err != nil {
		return nil, err
	}

	// Validate config.
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
