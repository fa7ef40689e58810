package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/pkg/constants"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/store"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Run configuration
	ProgramPath    string
	StorePath      string
	GlobalUsername string
	GlobalPassword string
	RunProgram     bool
	Interpreter    string
	StoreFormat    string
	ProgramTimeout time.Duration
	ProgramEnv     []string
	Deduplicate    bool
	Lenient        bool
	MetricsFile    string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// explicitLogLevel is set when --log-level was given.
	explicitLogLevel bool
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (ROUTECONF_*)
// 3. .env files
// 4. Config file (configFile, or .routeconf.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("run_program", true)
	v.SetDefault("store_format", constants.DefaultStoreFormat)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", err.Error(), err)
		}
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		ProgramPath:    v.GetString("program_path"),
		StorePath:      v.GetString("store_path"),
		GlobalUsername: v.GetString("global_username"),
		GlobalPassword: v.GetString("global_password"),
		RunProgram:     v.GetBool("run_program"),
		Interpreter:    v.GetString("interpreter"),
		StoreFormat:    v.GetString("store_format"),
		ProgramTimeout: v.GetDuration("program_timeout"),
		ProgramEnv:     v.GetStringSlice("program_env"),
		Deduplicate:    v.GetBool("deduplicate"),
		Lenient:        v.GetBool("lenient"),
		MetricsFile:    v.GetString("metrics_file"),

		LogLevel:  firstNonEmpty(v.GetString("log_level"), os.Getenv("LOG_LEVEL")),
		LogFormat: firstNonEmpty(v.GetString("log_format"), os.Getenv("LOG_FORMAT"), "auto"),
		LogOutput: firstNonEmpty(v.GetString("log_output"), os.Getenv("LOG_OUTPUT"), "stderr"),
	}

	if _, err := store.ParseFormat(config.StoreFormat); err != nil {
		return nil, err
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed global flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
		c.explicitLogLevel = true
	}
}

// RunConfig converts the loaded configuration into a run configuration.
// Routers are left nil; commands supply them.
func (c *Config) RunConfig() routeconf.Config {
	cfg := routeconf.DefaultConfig()
	cfg.ProgramPath = c.ProgramPath
	cfg.StorePath = c.StorePath
	cfg.GlobalUsername = c.GlobalUsername
	cfg.GlobalPassword = c.GlobalPassword
	cfg.RunProgram = c.RunProgram
	cfg.Interpreter = c.Interpreter
	cfg.ProgramTimeout = c.ProgramTimeout
	cfg.ProgramEnv = c.ProgramEnv
	cfg.Deduplicate = c.Deduplicate
	cfg.Lenient = c.Lenient
	if format, err := store.ParseFormat(c.StoreFormat); err == nil {
		cfg.Format = format
	}
	return cfg
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are never overwritten.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
