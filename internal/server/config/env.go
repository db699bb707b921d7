package config

import (
	"bufio"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvFileVar names the .env file to read; ".env" when unset.
const EnvFileVar = "TIMESHEET_ENV_FILE"

// Environment variables read by parseEnv.
const (
	envAddr            = "TIMESHEET_ADDR"
	envBackend         = "TIMESHEET_BACKEND"
	envWorkbook        = "TIMESHEET_WORKBOOK"
	envDatabaseDSN     = "TIMESHEET_DATABASE_DSN"
	envS3AccessKey     = "TIMESHEET_S3_ACCESS_KEY"
	envS3SecretKey     = "TIMESHEET_S3_SECRET_KEY"
	envS3Region        = "TIMESHEET_S3_REGION"
	envS3BaseEndpoint  = "TIMESHEET_S3_ENDPOINT"
	envSecretKey       = "TIMESHEET_SECRET_KEY"
	envSessionLifetime = "TIMESHEET_SESSION_LIFETIME"
	envCacheTTL        = "TIMESHEET_CACHE_TTL"
	envBcryptCost      = "TIMESHEET_BCRYPT_COST"
	envLogLevel        = "TIMESHEET_LOG_LEVEL"
)

// parseEnv overlays settings from the environment after loading the .env
// file, if present. Variables already set in the environment win over the
// file. Malformed durations or numbers panic.
func parseEnv(config *Config) {
	path := os.Getenv(EnvFileVar)
	if path == "" {
		path = ".env"
	}
	if err := loadDotEnv(path); err != nil {
		panic(err)
	}

	lookupString(envAddr, &config.EndpointAddrGRPC)
	lookupString(envBackend, &config.Backend)
	lookupString(envWorkbook, &config.WorkbookLocation)
	lookupString(envDatabaseDSN, &config.DatabaseDSN)
	lookupString(envS3AccessKey, &config.S3AccessKey)
	lookupString(envS3SecretKey, &config.S3SecretKey)
	lookupString(envS3Region, &config.S3Region)
	lookupString(envS3BaseEndpoint, &config.S3BaseEndpoint)
	lookupString(envSecretKey, &config.SecretKey)
	lookupString(envLogLevel, &config.LogLevel)

	if v, ok := os.LookupEnv(envSessionLifetime); ok && v != "" {
		config.SessionLifetime = mustDuration(envSessionLifetime, v)
	}
	if v, ok := os.LookupEnv(envCacheTTL); ok && v != "" {
		config.CacheTTL = mustDuration(envCacheTTL, v)
	}
	if v, ok := os.LookupEnv(envBcryptCost); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(envBcryptCost + ": " + err.Error())
		}
		config.BcryptCost = n
	}
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func mustDuration(key, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(key + ": " + err.Error())
	}
	return d
}

// loadDotEnv sets KEY=VALUE pairs from path that are not already in the
// environment. A missing file is not an error. Blank lines and lines
// starting with # are skipped; values may be wrapped in single or double
// quotes.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
