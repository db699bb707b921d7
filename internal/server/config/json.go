package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/flagx"
	"github.com/dmitrijs2005/timesheet/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "10m" or
// integer nanoseconds. Absent fields leave the current value alone.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	Backend          string         `json:"backend"`
	WorkbookLocation string         `json:"workbook_location"`
	DatabaseDSN      string         `json:"database_dsn"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	SecretKey        string         `json:"secret_key"`
	SessionLifetime  timex.Duration `json:"session_lifetime"`
	CacheTTL         timex.Duration `json:"cache_ttl"`
	BcryptCost       int            `json:"bcrypt_cost"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays the file named by -c / -config, if any. An unreadable
// file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.Backend, c.Backend)
	setString(&config.WorkbookLocation, c.WorkbookLocation)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setDuration(&config.SessionLifetime, c.SessionLifetime.Duration)
	setDuration(&config.CacheTTL, c.CacheTTL.Duration)
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
