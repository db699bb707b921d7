package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/timesheet/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-k string   store backend: xlsx, postgres or memory
//	-w string   workbook path or s3://bucket/key
//	-d string   PostgreSQL DSN
//	-s string   session token secret key
//	-t int      session lifetime, minutes
//	-l int      cache TTL, minutes
//	-u string   S3 access key
//	-p string   S3 secret key
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-v string   log level
//
// Duration flags are whole minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-w", "-d", "-s", "-t", "-l", "-u", "-p", "-g", "-e", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.Backend, "k", config.Backend, "store backend (xlsx, postgres, memory)")
	fs.StringVar(&config.WorkbookLocation, "w", config.WorkbookLocation, "workbook path or s3://bucket/key")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionLifetime := fs.Int("t", int(config.SessionLifetime.Minutes()), "session lifetime (in minutes)")
	cacheTTL := fs.Int("l", int(config.CacheTTL.Minutes()), "cache TTL (in minutes)")

	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags given explicitly replace durations, so sub-minute values
	// from the file or environment survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionLifetime = time.Duration(*sessionLifetime) * time.Minute
		case "l":
			config.CacheTTL = time.Duration(*cacheTTL) * time.Minute
		}
	})
}
