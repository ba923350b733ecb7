package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/pickmart/pickmart-go/internal/logger"
)

const (
	defaultAPIAddr      = "http://localhost:8080"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvDevelopment
)

type Config struct {
	// Default logging level
	LogLevel string

	// Base URL of the Pickmart API to talk to
	APIAddr string

	// Path to the JSON credential file; empty means the OS config dir
	CredentialsFile string

	// Optional Redis address for the credential store (takes precedence over the file)
	RedisAddr string

	// Optional Postgres DSN for the credential store (takes precedence over Redis)
	DatabaseDSN string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		APIAddr:     defaultAPIAddr,
		Environment: defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"PICKMART_API_ADDRESS":      setString(&c.APIAddr),
		"PICKMART_CREDENTIALS_FILE": setString(&c.CredentialsFile),
		"PICKMART_REDIS_ADDRESS":    setString(&c.RedisAddr),
		"PICKMART_DATABASE_URI":     setString(&c.DatabaseDSN),
		"PICKMART_LOG_LEVEL":        setString(&c.LogLevel),
		"PICKMART_ENVIRONMENT":      setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

// ParseFlags parses the global flags and returns the remaining positional
// arguments (the subcommand and its operands).
func (c *Config) ParseFlags(args []string) ([]string, error) {
	fs := pflag.NewFlagSet("pickmart", pflag.ContinueOnError)

	fs.StringVarP(&c.APIAddr, "api", "a", c.APIAddr, "Pickmart API base URL")
	fs.StringVarP(&c.CredentialsFile, "credentials", "c", c.CredentialsFile, "Credential file path")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "Redis address for the credential store")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Postgres DSN for the credential store")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

// CredentialsPath resolves the credential file location, defaulting to
// <user config dir>/pickmart/credentials.json
func (c *Config) CredentialsPath() (string, error) {
	if c.CredentialsFile != "" {
		return c.CredentialsFile, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pickmart", "credentials.json"), nil
}
