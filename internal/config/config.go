// Package config loads regset settings from defaults, an optional YAML file,
// REGSET_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// REGSET_LOG_LEVEL=debug or REGSET_LAUNCHER_SCRIPT=C:\set.ps1.
const EnvPrefix = "REGSET"

// Config holds all regset settings.
type Config struct {
	// DefaultType is used when a command is given no --type.
	DefaultType string `mapstructure:"default_type" validate:"required"`

	Log struct {
		Enabled bool   `mapstructure:"enabled"`
		Dir     string `mapstructure:"dir"`
		Level   string `mapstructure:"level" validate:"oneof=debug info warn error"`
	} `mapstructure:"log"`

	Output struct {
		JSON    bool `mapstructure:"json"`
		NoColor bool `mapstructure:"no_color"`
	} `mapstructure:"output"`

	Launcher struct {
		Interpreter     string `mapstructure:"interpreter" validate:"required"`
		Script          string `mapstructure:"script"`
		ExecutionPolicy string `mapstructure:"execution_policy" validate:"oneof=Bypass Unrestricted RemoteSigned AllSigned Restricted Default Undefined"`
	} `mapstructure:"launcher"`

	Emit struct {
		Encoding string `mapstructure:"encoding" validate:"oneof=UTF-8 UTF-16LE"`
		BOM      bool   `mapstructure:"bom"`
	} `mapstructure:"emit"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("default_type", "String")
	v.SetDefault("log.enabled", false)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.json", false)
	v.SetDefault("output.no_color", false)
	v.SetDefault("launcher.interpreter", "powershell.exe")
	v.SetDefault("launcher.script", "")
	v.SetDefault("launcher.execution_policy", "Bypass")
	v.SetDefault("emit.encoding", "UTF-8")
	v.SetDefault("emit.bom", false)
}

// Load reads configuration into a validated Config. When file is empty,
// $HOME/.regset.yaml and ./.regset.yaml are tried and may be absent.
// Flags must already be bound to v by the caller.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".regset")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	normalize(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var (
	encodings = []string{"UTF-8", "UTF-16LE"}
	policies  = []string{"Bypass", "Unrestricted", "RemoteSigned", "AllSigned", "Restricted", "Default", "Undefined"}
)

// normalize maps case-insensitive enum values onto their canonical
// spelling. Unrecognized values are left for Validate to report.
func normalize(cfg *Config) {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Emit.Encoding = canonical(cfg.Emit.Encoding, encodings)
	cfg.Launcher.ExecutionPolicy = canonical(cfg.Launcher.ExecutionPolicy, policies)
}

func canonical(value string, allowed []string) string {
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a
		}
	}
	return value
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg and reports every invalid field by its config key.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
